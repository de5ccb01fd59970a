package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"farmshops/internal/models"
)

// GetFarmBySlug retrieves a farm by its directory slug.
func (d *DB) GetFarmBySlug(ctx context.Context, slug string) (*models.Farm, error) {
	query := `
		SELECT id, slug, name, city, region, created_at, updated_at
		FROM farms WHERE slug = $1
	`

	var farm models.Farm
	err := d.Pool.QueryRow(ctx, query, slug).Scan(
		&farm.ID,
		&farm.Slug,
		&farm.Name,
		&farm.City,
		&farm.Region,
		&farm.CreatedAt,
		&farm.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFarmNotFound
	}
	if err != nil {
		return nil, err
	}

	return &farm, nil
}

// FarmDisplayName returns the display name for a farm slug. Satisfies the
// notification dispatcher's lookup collaborator.
func (d *DB) FarmDisplayName(ctx context.Context, slug string) (string, error) {
	var name string
	err := d.Pool.QueryRow(ctx, `SELECT name FROM farms WHERE slug = $1`, slug).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrFarmNotFound
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// FarmExists reports whether a farm slug is present in the directory.
func (d *DB) FarmExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := d.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM farms WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
