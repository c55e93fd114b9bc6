package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the route history table.
const Schema = `
	CREATE TABLE IF NOT EXISTS route_history (
		id               UUID PRIMARY KEY,
		source           TEXT NOT NULL,
		destination      TEXT NOT NULL,
		distance_km      DOUBLE PRECISION NOT NULL,
		duration_minutes INTEGER NOT NULL,
		pollution        TEXT NOT NULL,
		aqi              INTEGER NOT NULL,
		health_score     INTEGER NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS route_history_created_at_idx ON route_history (created_at DESC);
`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresRepository creates a new PostgreSQL history repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool, now: time.Now}
}

// EnsureSchema creates the table and index if they do not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating route_history: %w", err)
	}
	return nil
}

// Save inserts rec. Saving the same ID twice is a no-op so redelivered
// Pub/Sub messages do not duplicate rows.
func (r *PostgresRepository) Save(ctx context.Context, rec *Record) error {
	if err := rec.Prepare(r.now()); err != nil {
		return err
	}

	query := `
		INSERT INTO route_history (
			id, source, destination, distance_km, duration_minutes,
			pollution, aqi, health_score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Source,
		rec.Destination,
		rec.DistanceKm,
		rec.DurationMinutes,
		rec.Pollution,
		rec.AQI,
		rec.HealthScore,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting route history: %w", err)
	}
	return nil
}

// List returns the newest records first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*Record, error) {
	query := `
		SELECT
			id::text, source, destination, distance_km, duration_minutes,
			pollution, aqi, health_score, created_at
		FROM route_history
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying route history: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.ID,
			&rec.Source,
			&rec.Destination,
			&rec.DistanceKm,
			&rec.DurationMinutes,
			&rec.Pollution,
			&rec.AQI,
			&rec.HealthScore,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning route history: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
