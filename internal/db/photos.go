package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"farmshops/internal/models"
	"farmshops/internal/moderation"
)

const photoColumns = `id, farm_slug, url, caption, author_name, author_email,
	source, photo_reference, is_hero, status, created_at, approved_at,
	rejected_at, reject_reason, moderated_by`

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID,
		&photo.FarmSlug,
		&photo.URL,
		&photo.Caption,
		&photo.AuthorName,
		&photo.AuthorEmail,
		&photo.Source,
		&photo.PhotoReference,
		&photo.IsHero,
		&photo.Status,
		&photo.CreatedAt,
		&photo.ApprovedAt,
		&photo.RejectedAt,
		&photo.RejectReason,
		&photo.ModeratedBy,
	)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func collectPhotos(rows pgx.Rows) ([]models.Photo, error) {
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *photo)
	}
	return photos, rows.Err()
}

// GetPhotoByID retrieves a single photo record.
func (d *DB) GetPhotoByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	photo, err := scanPhoto(d.Pool.QueryRow(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, moderation.ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// PendingPhotos returns the moderation queue oldest-first.
func (d *DB) PendingPhotos(ctx context.Context) ([]models.Photo, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+photoColumns+`
		FROM photos
		JOIN moderation_queue q ON q.photo_id = photos.id
		ORDER BY q.position ASC
	`)
	if err != nil {
		return nil, err
	}
	return collectPhotos(rows)
}

// PhotosByStatus returns photos in a given status, newest first.
func (d *DB) PhotosByStatus(ctx context.Context, status string) ([]models.Photo, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+photoColumns+`
		FROM photos
		WHERE status = $1
		ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, err
	}
	return collectPhotos(rows)
}

// ApprovedPhotosByFarm returns a farm's currently displayable photos ordered
// by approval time, oldest first.
func (d *DB) ApprovedPhotosByFarm(ctx context.Context, farmSlug string) ([]models.Photo, error) {
	rows, err := d.Pool.Query(ctx, `
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

// CountPhotosByStatus returns the number of photos per status. Backs the
// Prometheus queue depth collector.
func (d *DB) CountPhotosByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := d.Pool.Query(ctx, `SELECT status, COUNT(*) FROM photos GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
