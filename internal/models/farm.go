package models

import (
	"time"

	"github.com/google/uuid"
)

// Farm represents a farm shop listed in the directory.
type Farm struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	Region    string    `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
