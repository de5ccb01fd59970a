package models

import (
	"time"

	"github.com/google/uuid"
)

// Photo status constants. A photo is created pending, moderated to approved or
// rejected, and may later be evicted from display to archived.
const (
	PhotoPending  = "pending"
	PhotoApproved = "approved"
	PhotoRejected = "rejected"
	PhotoArchived = "archived"
)

// Photo source constants, in display priority order (highest first).
const (
	SourceOwner   = "owner"
	SourceUser    = "user"
	SourceGoogle  = "google"
	SourceRunware = "runware"
	SourceUpload  = "upload"
)

// Photo represents a farm shop photograph moving through the moderation
// pipeline. Records are never hard-deleted; terminal states are rejected and
// archived.
type Photo struct {
	ID             uuid.UUID  `json:"id"`
	FarmSlug       string     `json:"farm_slug"`
	URL            string     `json:"url"`
	Caption        string     `json:"caption,omitempty"`
	AuthorName     string     `json:"author_name,omitempty"`
	AuthorEmail    string     `json:"author_email,omitempty"`
	Source         string     `json:"source"`                    // owner, user, google, runware, upload
	PhotoReference string     `json:"photo_reference,omitempty"` // Google Places photo reference
	IsHero         bool       `json:"is_hero"`
	Status         string     `json:"status"` // pending, approved, rejected, archived
	CreatedAt      time.Time  `json:"created_at"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`
	RejectReason   string     `json:"reject_reason,omitempty"`
	ModeratedBy    *uuid.UUID `json:"moderated_by,omitempty"`
}

// IsPending returns true if the photo has not been moderated yet.
func (p *Photo) IsPending() bool {
	return p.Status == PhotoPending
}

// ValidSource returns true for a known photo source.
func ValidSource(source string) bool {
	switch source {
	case SourceOwner, SourceUser, SourceGoogle, SourceRunware, SourceUpload:
		return true
	}
	return false
}

// ValidStatus returns true for a known photo status.
func ValidStatus(status string) bool {
	switch status {
	case PhotoPending, PhotoApproved, PhotoRejected, PhotoArchived:
		return true
	}
	return false
}
