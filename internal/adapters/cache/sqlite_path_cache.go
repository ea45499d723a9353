package cache

import (
	"context"
	"database/sql"
	"delivery-tour-service/internal/platform/obs"
	"delivery-tour-service/internal/ports"
	"errors"
	"fmt"
	"strings"
)

// SQLite backed cache for shortest road paths, keyed by
// (map, origin, destination).
type SqlitePathCache struct {
	DB *sql.DB
}

func NewSqlitePathCache(db *sql.DB) *SqlitePathCache {
	return &SqlitePathCache{DB: db}
}

// Fetch cached paths for one origin and multiple destinations.
func (s *SqlitePathCache) GetMany(
	ctx context.Context,
	mapID string,
	origin int64,
	destinations []int64,
) (_ map[int64]ports.PathResult, err error) {
	defer obs.Time(ctx, "path.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("path cache: db is nil")
	}

	if strings.TrimSpace(mapID) == "" {
		return nil, errors.New("get path cache: map id must not be empty")
	}

	uniq := uniqueDestinations(destinations)
	if len(uniq) == 0 {
		return map[int64]ports.PathResult{}, nil
	}

	ph := make([]string, 0, len(uniq))
	args := make([]any, 0, 2+len(uniq))
	args = append(args, mapID, origin)
	for _, d := range uniq {
		ph = append(ph, "?")
		args = append(args, d)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        destination,
        length_meters,
        vertices
    FROM path_cache
    WHERE map_id = ?
        AND origin = ?
        AND destination IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get path cache: query path_cache table: %w", err)
	}
	defer rows.Close()

	return scanPaths(rows, len(uniq))
}

// Store many cached paths for a single origin.
func (s *SqlitePathCache) PutMany(
	ctx context.Context,
	mapID string,
	origin int64,
	results map[int64]ports.PathResult,
) (err error) {
	defer obs.Time(ctx, "path.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("path cache: db is nil")
	}

	if strings.TrimSpace(mapID) == "" {
		return errors.New("insert path cache: map id must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert path cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO path_cache (
        map_id,
        origin,
        destination,
        length_meters,
        vertices
    )
    VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert path cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, r := range results {
		vertices, err := encodeVertices(r.Vertices)
		if err != nil {
			return fmt.Errorf("insert path cache dest=%d: %w", dest, err)
		}

		if _, err := stmt.ExecContext(ctx, mapID, origin, dest, r.LengthMeters, vertices); err != nil {
			return fmt.Errorf("insert path cache dest=%d: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert path cache commit: %w", err)
	}

	return nil
}

// Drop every cached path of a map.
func (s *SqlitePathCache) Clear(ctx context.Context, mapID string) (err error) {
	defer obs.Time(ctx, "path.cache.Clear")(&err)

	if s.DB == nil {
		return errors.New("path cache: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM path_cache WHERE map_id = ?;`, mapID); err != nil {
		return fmt.Errorf("clear path cache %q: %w", mapID, err)
	}

	return nil
}
