package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Dialect selects placeholder syntax. Queries are written with $n
// placeholders; SQLite receives them as ?n.
type Dialect int

const (
	Postgres Dialect = iota
	Sqlite
)

func (d Dialect) String() string {
	if d == Sqlite {
		return "sqlite"
	}
	return "postgres"
}

func (d Dialect) rebind(q string) string {
	if d == Sqlite {
		return strings.ReplaceAll(q, "$", "?")
	}
	return q
}

// Initialize the database schema. The column types are understood by both
// Postgres and SQLite.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRoadMapsQuery := `
	CREATE TABLE IF NOT EXISTS road_maps (
		map_id TEXT PRIMARY KEY,
		warehouse_id BIGINT
	);
	`

	createIntersectionsQuery := `
	CREATE TABLE IF NOT EXISTS intersections (
		map_id TEXT NOT NULL,
		intersection_id BIGINT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (map_id, intersection_id)
	);
	`

	createSegmentsQuery := `
	CREATE TABLE IF NOT EXISTS segments (
		map_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		origin BIGINT NOT NULL,
		destination BIGINT NOT NULL,
		length_meters DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (map_id, seq)
	);
	`

	createTourRequestsQuery := `
	CREATE TABLE IF NOT EXISTS tour_requests (
		tour_id TEXT PRIMARY KEY,
		day TEXT NOT NULL
	);
	`

	createDeliveryRequestsQuery := `
	CREATE TABLE IF NOT EXISTS delivery_requests (
		delivery_id TEXT PRIMARY KEY,
		tour_id TEXT NOT NULL,
		intersection_id BIGINT NOT NULL,
		time_window INTEGER NOT NULL
	);
	`

	createPathCacheQuery := `
	CREATE TABLE IF NOT EXISTS path_cache (
        map_id TEXT NOT NULL,
        origin BIGINT NOT NULL,
        destination BIGINT NOT NULL,
        length_meters DOUBLE PRECISION NOT NULL,
        vertices TEXT NOT NULL,
        PRIMARY KEY (map_id, origin, destination)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_delivery_requests_tour
    ON delivery_requests(tour_id);
	`

	statements := []string{
		createRoadMapsQuery,
		createIntersectionsQuery,
		createSegmentsQuery,
		createTourRequestsQuery,
		createDeliveryRequestsQuery,
		createPathCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
