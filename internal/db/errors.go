package db

import "errors"

// Domain-level database error sentinels. Photo moderation errors live in
// internal/moderation so both store implementations share them.
var (
	// Farm errors
	ErrFarmNotFound = errors.New("farm not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)
