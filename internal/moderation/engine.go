package moderation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"farmshops/internal/models"
	"farmshops/internal/validation"
)

// Engine performs the pending→approved/rejected transitions. Every transition
// runs as a single atomic batch against the store: record update, queue
// removal, and approved-set maintenance commit together or not at all.
type Engine struct {
	store Store
	quota int
}

// NewEngine creates an engine with the given per-farm approved photo quota.
// A non-positive quota falls back to the default of 4.
func NewEngine(store Store, quota int) *Engine {
	if quota <= 0 {
		quota = 4
	}
	return &Engine{store: store, quota: quota}
}

// Quota returns the per-farm approved photo limit.
func (e *Engine) Quota() int {
	return e.quota
}

// Decision is the outcome of a successful transition.
type Decision struct {
	Photo   *models.Photo
	Evicted []uuid.UUID // photos archived to make room, oldest first
}

// Approve transitions a pending photo to approved. If the farm's approved set
// is already at quota, the member with the oldest approval (ties broken by
// insertion order) is archived in the same transaction. A photo that is no
// longer pending yields ErrPhotoNotPending and no mutation.
func (e *Engine) Approve(ctx context.Context, id, moderatorID uuid.UUID) (*Decision, error) {
	var dec Decision
	err := e.store.Transact(ctx, func(tx Tx) error {
		photo, err := tx.PhotoForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !photo.IsPending() {
			return ErrPhotoNotPending
		}

		approved, err := tx.ApprovedPhotos(ctx, photo.FarmSlug)
		if err != nil {
			return err
		}
		// Make room before inserting. Evicting more than one member only
		// happens after the quota was lowered between deploys.
		for len(approved) >= e.quota {
			oldest := approved[0]
			archived := models.PhotoArchived
			if err := tx.MergePhoto(ctx, oldest.ID, PhotoUpdate{Status: &archived}); err != nil {
				return err
			}
			dec.Evicted = append(dec.Evicted, oldest.ID)
			approved = approved[1:]
		}

		now := time.Now().UTC()
		status := models.PhotoApproved
		modBy := moderatorID
		if err := tx.MergePhoto(ctx, id, PhotoUpdate{
			Status:      &status,
			ApprovedAt:  &now,
			ModeratedBy: &modBy,
		}); err != nil {
			return err
		}
		if err := tx.RemoveFromQueue(ctx, id); err != nil {
			return err
		}

		photo.Status = status
		photo.ApprovedAt = &now
		photo.ModeratedBy = &modBy
		dec.Photo = photo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dec, nil
}

// Reject transitions a pending photo to rejected. The reason is required,
// trimmed non-empty, and limited to 240 characters; invalid input yields
// ErrInvalidReason before any store access.
func (e *Engine) Reject(ctx context.Context, id, moderatorID uuid.UUID, reason string) (*Decision, error) {
	reason, ok := validation.ValidateRejectReason(reason)
	if !ok {
		return nil, ErrInvalidReason
	}

	var dec Decision
	err := e.store.Transact(ctx, func(tx Tx) error {
		photo, err := tx.PhotoForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !photo.IsPending() {
			return ErrPhotoNotPending
		}

		now := time.Now().UTC()
		status := models.PhotoRejected
		modBy := moderatorID
		if err := tx.MergePhoto(ctx, id, PhotoUpdate{
			Status:       &status,
			RejectedAt:   &now,
			RejectReason: &reason,
			ModeratedBy:  &modBy,
		}); err != nil {
			return err
		}
		if err := tx.RemoveFromQueue(ctx, id); err != nil {
			return err
		}

		photo.Status = status
		photo.RejectedAt = &now
		photo.RejectReason = reason
		photo.ModeratedBy = &modBy
		dec.Photo = photo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dec, nil
}

// Submit creates a new pending photo and enqueues it for review in one atomic
// batch. The caller fills in farm slug, url/reference, source, and author
// fields; id, status, and creation time are assigned here.
func (e *Engine) Submit(ctx context.Context, photo *models.Photo) error {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	if photo.Source == "" {
		photo.Source = models.SourceUser
	}
	photo.Status = models.PhotoPending
	photo.CreatedAt = time.Now().UTC()

	return e.store.Transact(ctx, func(tx Tx) error {
		if err := tx.InsertPhoto(ctx, photo); err != nil {
			return err
		}
		return tx.Enqueue(ctx, photo.ID)
	})
}
