// Package moderation implements the photo moderation pipeline: the FIFO review
// queue, the quota-bounded approved set per farm, and the atomic
// pending→approved/rejected transitions.
package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"farmshops/internal/models"
)

// Sentinel errors returned by the engine and its stores.
var (
	// ErrPhotoNotFound means no record exists for the given photo id.
	ErrPhotoNotFound = errors.New("photo not found")

	// ErrPhotoNotPending means the photo was already moderated. The losing
	// caller of a concurrent approve/reject race observes this error.
	ErrPhotoNotPending = errors.New("photo has already been moderated")

	// ErrInvalidReason means the rejection reason failed validation.
	ErrInvalidReason = errors.New("rejection reason must be non-empty and at most 240 characters")
)

// PhotoUpdate is a partial update applied to a photo record. Nil fields are
// left untouched.
type PhotoUpdate struct {
	Status       *string
	ApprovedAt   *time.Time
	RejectedAt   *time.Time
	RejectReason *string
	ModeratedBy  *uuid.UUID
}

// Tx is the set of store operations available inside one atomic transition.
// Implementations must guarantee that all mutations made through a Tx commit
// together or not at all, and that PhotoForUpdate serializes concurrent
// transitions on the same photo.
type Tx interface {
	// PhotoForUpdate loads a photo and locks it for the rest of the
	// transaction. Returns ErrPhotoNotFound for unknown ids.
	PhotoForUpdate(ctx context.Context, id uuid.UUID) (*models.Photo, error)

	// MergePhoto applies a partial update, preserving untouched fields.
	MergePhoto(ctx context.Context, id uuid.UUID, update PhotoUpdate) error

	// InsertPhoto stores a new photo record.
	InsertPhoto(ctx context.Context, photo *models.Photo) error

	// Enqueue appends the photo id to the tail of the review queue.
	Enqueue(ctx context.Context, id uuid.UUID) error

	// RemoveFromQueue removes the id wherever it sits in the queue.
	// Removing an absent id is a no-op.
	RemoveFromQueue(ctx context.Context, id uuid.UUID) error

	// ApprovedPhotos returns the farm's approved photos ordered oldest
	// approval first, ties broken by insertion order.
	ApprovedPhotos(ctx context.Context, farmSlug string) ([]models.Photo, error)
}

// Store runs a function inside one atomic batch. The Postgres implementation
// lives in internal/db; MemStore backs tests.
type Store interface {
	Transact(ctx context.Context, fn func(tx Tx) error) error
}
