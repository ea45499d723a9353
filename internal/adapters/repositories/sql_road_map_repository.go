package repositories

import (
	"context"
	"database/sql"
	"delivery-tour-service/internal/domain"
	"delivery-tour-service/internal/platform/obs"
	"delivery-tour-service/internal/ports"
	"errors"
	"fmt"
)

// SQL-backed implementation of the RoadMapProvider port.
type SQLRoadMapRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLRoadMapRepository(db *sql.DB) *SQLRoadMapRepository {
	return &SQLRoadMapRepository{DB: db, Dialect: Postgres}
}

func NewSqliteRoadMapRepository(db *sql.DB) *SQLRoadMapRepository {
	return &SQLRoadMapRepository{DB: db, Dialect: Sqlite}
}

// Load a road map with its intersections, segments and warehouse.
func (s *SQLRoadMapRepository) LoadRoadMap(ctx context.Context, mapID string) (_ *domain.RoadMap, err error) {
	defer obs.Time(ctx, "road_map.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("road map repository: DB is nil")
	}

	var warehouse sql.NullInt64
	err = s.DB.QueryRowContext(ctx, s.Dialect.rebind(`
	SELECT warehouse_id
	FROM road_maps
	WHERE map_id = $1;
	`), mapID).Scan(&warehouse)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load road map %q: %w", mapID, ports.ErrRoadMapNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load road map %q: query road_maps table: %w", mapID, err)
	}

	intersections, err := s.intersections(ctx, mapID)
	if err != nil {
		return nil, err
	}
	segments, err := s.segments(ctx, mapID)
	if err != nil {
		return nil, err
	}

	warehouseID := domain.NoIntersection
	if warehouse.Valid {
		warehouseID = warehouse.Int64
	}

	m, err := domain.NewRoadMap(mapID, intersections, segments, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("load road map %q: %w", mapID, err)
	}
	return m, nil
}

func (s *SQLRoadMapRepository) intersections(ctx context.Context, mapID string) ([]domain.Intersection, error) {
	query := `
	SELECT
		intersection_id,
		lat,
		lon
	FROM intersections
	WHERE map_id = $1
	ORDER BY intersection_id;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(query), mapID)
	if err != nil {
		return nil, fmt.Errorf("load road map %q: query intersections table: %w", mapID, err)
	}
	defer rows.Close()

	out := make([]domain.Intersection, 0, 256)
	for rows.Next() {
		var in domain.Intersection
		if err := rows.Scan(&in.ID, &in.Coordinates.Lat, &in.Coordinates.Lon); err != nil {
			return nil, fmt.Errorf("load road map %q: scan intersection: %w", mapID, err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load road map %q: intersection iteration: %w", mapID, err)
	}

	return out, nil
}

func (s *SQLRoadMapRepository) segments(ctx context.Context, mapID string) ([]domain.Segment, error) {
	query := `
	SELECT
		name,
		origin,
		destination,
		length_meters
	FROM segments
	WHERE map_id = $1
	ORDER BY seq;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(query), mapID)
	if err != nil {
		return nil, fmt.Errorf("load road map %q: query segments table: %w", mapID, err)
	}
	defer rows.Close()

	out := make([]domain.Segment, 0, 512)
	for rows.Next() {
		var seg domain.Segment
		if err := rows.Scan(&seg.Name, &seg.Origin, &seg.Destination, &seg.LengthMeters); err != nil {
			return nil, fmt.Errorf("load road map %q: scan segment: %w", mapID, err)
		}
		out = append(out, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load road map %q: segment iteration: %w", mapID, err)
	}

	return out, nil
}
