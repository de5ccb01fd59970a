package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"farmshops/internal/models"
	"farmshops/internal/moderation"
)

// Transact implements moderation.Store: every transition runs inside a single
// database transaction, so the record update, queue removal, and approved-set
// change commit together or not at all.
func (d *DB) Transact(ctx context.Context, fn func(tx moderation.Tx) error) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type storeTx struct {
	tx pgx.Tx
}

// PhotoForUpdate loads and row-locks a photo. Concurrent transitions on the
// same id serialize here; the loser re-reads the committed status and reports
// the conflict instead of double-applying.
func (t *storeTx) PhotoForUpdate(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	photo, err := scanPhoto(t.tx.QueryRow(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, moderation.ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// MergePhoto applies a partial update; fields not set in the update are left
// untouched.
func (t *storeTx) MergePhoto(ctx context.Context, id uuid.UUID, update moderation.PhotoUpdate) error {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Status != nil {
		set("status", *update.Status)
	}
	if update.ApprovedAt != nil {
		set("approved_at", *update.ApprovedAt)
	}
	if update.RejectedAt != nil {
		set("rejected_at", *update.RejectedAt)
	}
	if update.RejectReason != nil {
		set("reject_reason", *update.RejectReason)
	}
	if update.ModeratedBy != nil {
		set("moderated_by", *update.ModeratedBy)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE photos SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return moderation.ErrPhotoNotFound
	}
	return nil
}

// InsertPhoto stores a new photo record.
func (t *storeTx) InsertPhoto(ctx context.Context, photo *models.Photo) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO photos (id, farm_slug, url, caption, author_name, author_email,
			source, photo_reference, is_hero, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		photo.ID, photo.FarmSlug, photo.URL, photo.Caption, photo.AuthorName,
		photo.AuthorEmail, photo.Source, photo.PhotoReference, photo.IsHero,
		photo.Status, photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert photo: %w", err)
	}
	return nil
}

// Enqueue appends the photo to the tail of the review queue.
func (t *storeTx) Enqueue(ctx context.Context, id uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO moderation_queue (photo_id) VALUES ($1)`, id)
	return err
}

// RemoveFromQueue removes the photo from the review queue wherever it sits.
// Absent ids are a no-op.
func (t *storeTx) RemoveFromQueue(ctx context.Context, id uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM moderation_queue WHERE photo_id = $1`, id)
	return err
}

// ApprovedPhotos returns the farm's approved photos oldest approval first.
// The farm row lock serializes concurrent transitions on the same farm: under
// READ COMMITTED, locking only the approved photo rows is not enough, because
// a row approved by a concurrently committing transaction is invisible to the
// blocked statement's snapshot and both counts would miss each other. Blocking
// on the farm row instead means the loser's set query runs on a fresh snapshot
// that includes the winner's approval.
func (t *storeTx) ApprovedPhotos(ctx context.Context, farmSlug string) ([]models.Photo, error) {
	if _, err := t.tx.Exec(ctx,
		`SELECT slug FROM farms WHERE slug = $1 FOR UPDATE`, farmSlug); err != nil {
		return nil, err
	}

	rows, err := t.tx.Query(ctx, `
		SELECT `+photoColumns+`
		FROM photos
		WHERE farm_slug = $1 AND status = 'approved'
		ORDER BY approved_at ASC, seq ASC
	`, farmSlug)
	if err != nil {
		return nil, err
	}
	return collectPhotos(rows)
}
