package db

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"farmshops/migrations"
)

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// SeedDevFarms inserts test farms for development. Skips farms that already exist.
func (d *DB) SeedDevFarms(ctx context.Context) error {
	farms := []struct {
		slug   string
		name   string
		city   string
		region string
	}{
		{"sonnenhof", "Sonnenhof Farm Shop", "Freiburg", "Baden-Wurttemberg"},
		{"birkenhof", "Birkenhof Organic Store", "Lindau", "Bavaria"},
		{"muehlenhof", "Muehlenhof Dairy", "Husum", "Schleswig-Holstein"},
	}

	query := `
		INSERT INTO farms (slug, name, city, region)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO NOTHING
	`

	for _, farm := range farms {
		if _, err := d.Pool.Exec(ctx, query, farm.slug, farm.name, farm.city, farm.region); err != nil {
			return fmt.Errorf("failed to seed farm %s: %w", farm.slug, err)
		}
	}

	return nil
}
