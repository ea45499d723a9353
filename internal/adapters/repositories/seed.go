package repositories

import (
	"context"
	"database/sql"
	"delivery-tour-service/internal/domain"
	"delivery-tour-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dayLayout = "2006-01-02"

type IntersectionSeed struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type SegmentSeed struct {
	Name         string  `json:"name"`
	Origin       int64   `json:"origin"`
	Destination  int64   `json:"destination"`
	LengthMeters float64 `json:"length_meters"`
}

type MapSeed struct {
	MapID         string             `json:"map_id"`
	WarehouseID   *int64             `json:"warehouse_id"`
	Intersections []IntersectionSeed `json:"intersections"`
	Segments      []SegmentSeed      `json:"segments"`
}

type DeliverySeed struct {
	ID             string `json:"id"`
	IntersectionID int64  `json:"intersection_id"`
	TimeWindow     int    `json:"time_window"`
}

type TourSeed struct {
	TourID     string         `json:"tour_id"`
	Day        string         `json:"day"`
	Deliveries []DeliverySeed `json:"deliveries"`
}

// Seed is the JSON document loaded into a fresh database: one road map and
// the tour requests to compute on it.
type Seed struct {
	Map   MapSeed    `json:"map"`
	Tours []TourSeed `json:"tours"`
}

// ReadSeed parses and validates a seed file.
func ReadSeed(jsonPath string) (*Seed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read seed: read %q: %w", jsonPath, err)
	}

	var seed Seed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return nil, fmt.Errorf("read seed: parse json: %w", err)
	}

	if _, err := seed.RoadMap(); err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	if _, err := seed.TourRequests(); err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	return &seed, nil
}

func (s *Seed) warehouse() int64 {
	if s.Map.WarehouseID == nil {
		return domain.NoIntersection
	}
	return *s.Map.WarehouseID
}

// RoadMap builds the domain road map described by the seed.
func (s *Seed) RoadMap() (*domain.RoadMap, error) {
	if strings.TrimSpace(s.Map.MapID) == "" {
		return nil, errors.New("seed map: map_id cannot be empty")
	}

	intersections := make([]domain.Intersection, 0, len(s.Map.Intersections))
	for _, in := range s.Map.Intersections {
		intersections = append(intersections, domain.Intersection{
			ID:          in.ID,
			Coordinates: domain.Coordinates{Lat: in.Lat, Lon: in.Lon},
		})
	}

	segments := make([]domain.Segment, 0, len(s.Map.Segments))
	for _, seg := range s.Map.Segments {
		segments = append(segments, domain.Segment{
			Name:         strings.TrimSpace(seg.Name),
			Origin:       seg.Origin,
			Destination:  seg.Destination,
			LengthMeters: seg.LengthMeters,
		})
	}

	m, err := domain.NewRoadMap(s.Map.MapID, intersections, segments, s.warehouse())
	if err != nil {
		return nil, fmt.Errorf("seed map %q: %w", s.Map.MapID, err)
	}
	return m, nil
}

// TourRequests builds the tour requests described by the seed.
func (s *Seed) TourRequests() ([]*domain.TourRequest, error) {
	out := make([]*domain.TourRequest, 0, len(s.Tours))
	seen := make(map[string]struct{}, len(s.Tours))

	for i, t := range s.Tours {
		id := strings.TrimSpace(t.TourID)
		if id == "" {
			return nil, fmt.Errorf("seed tour at index %d: tour_id cannot be empty", i+1)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("seed tour %q: duplicate tour_id", id)
		}
		seen[id] = struct{}{}

		day, err := time.Parse(dayLayout, t.Day)
		if err != nil {
			return nil, fmt.Errorf("seed tour %q: invalid day %q: %w", id, t.Day, err)
		}

		request := &domain.TourRequest{ID: domain.TourID(id), Day: day}
		for j, d := range t.Deliveries {
			deliveryID, err := uuid.Parse(d.ID)
			if err != nil {
				return nil, fmt.Errorf("seed tour %q: delivery at index %d: %w", id, j+1, err)
			}
			err = request.Add(domain.DeliveryRequest{
				ID:             deliveryID,
				IntersectionID: d.IntersectionID,
				TimeWindow:     d.TimeWindow,
			})
			if err != nil {
				return nil, fmt.Errorf("seed tour %q: %w", id, err)
			}
		}
		out = append(out, request)
	}

	return out, nil
}

// Populate the SQLite database from a JSON seed file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	return SeedDatabase(context.Background(), db, Sqlite, jsonPath)
}

// SeedDatabase loads a seed file into db. Rows of the seeded map and tours
// are replaced; other maps and tours are left alone. Paths cached for the
// seeded map are dropped from every cache given.
func SeedDatabase(ctx context.Context, db *sql.DB, d Dialect, jsonPath string, caches ...ports.PathCache) error {
	if db == nil {
		return errors.New("seed database: DB is nil")
	}

	seed, err := ReadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	m, err := seed.RoadMap()
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	requests, err := seed.TourRequests()
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	if err := WriteRoadMap(ctx, db, d, m); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	for _, c := range caches {
		if err := c.Clear(ctx, m.ID()); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}
	for _, r := range requests {
		if err := WriteTourRequest(ctx, db, d, r); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	return nil
}

// WriteRoadMap replaces the stored copy of m.
func WriteRoadMap(ctx context.Context, db *sql.DB, d Dialect, m *domain.RoadMap) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write road map %q: begin tx: %w", m.ID(), err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM segments WHERE map_id = $1;`,
		`DELETE FROM intersections WHERE map_id = $1;`,
		`DELETE FROM path_cache WHERE map_id = $1;`,
		`DELETE FROM road_maps WHERE map_id = $1;`,
	} {
		if _, err := tx.ExecContext(ctx, d.rebind(q), m.ID()); err != nil {
			return fmt.Errorf("write road map %q: clear: %w", m.ID(), err)
		}
	}

	var warehouse any
	if id, err := m.Warehouse(); err == nil {
		warehouse = id
	}
	if _, err := tx.ExecContext(ctx, d.rebind(`
	INSERT INTO road_maps (map_id, warehouse_id)
	VALUES ($1, $2);
	`), m.ID(), warehouse); err != nil {
		return fmt.Errorf("write road map %q: insert map: %w", m.ID(), err)
	}

	inStmt, err := tx.PrepareContext(ctx, d.rebind(`
	INSERT INTO intersections (map_id, intersection_id, lat, lon)
	VALUES ($1, $2, $3, $4);
	`))
	if err != nil {
		return fmt.Errorf("write road map %q: prepare intersections: %w", m.ID(), err)
	}
	defer inStmt.Close()

	for _, in := range m.Intersections() {
		if _, err := inStmt.ExecContext(ctx, m.ID(), in.ID, in.Coordinates.Lat, in.Coordinates.Lon); err != nil {
			return fmt.Errorf("write road map %q: insert intersection id=%d: %w", m.ID(), in.ID, err)
		}
	}

	segStmt, err := tx.PrepareContext(ctx, d.rebind(`
	INSERT INTO segments (map_id, seq, name, origin, destination, length_meters)
	VALUES ($1, $2, $3, $4, $5, $6);
	`))
	if err != nil {
		return fmt.Errorf("write road map %q: prepare segments: %w", m.ID(), err)
	}
	defer segStmt.Close()

	for i, s := range m.Segments() {
		if _, err := segStmt.ExecContext(ctx, m.ID(), i, s.Name, s.Origin, s.Destination, s.LengthMeters); err != nil {
			return fmt.Errorf("write road map %q: insert segment #%d: %w", m.ID(), i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write road map %q: commit tx: %w", m.ID(), err)
	}
	return nil
}

// WriteTourRequest replaces the stored copy of r.
func WriteTourRequest(ctx context.Context, db *sql.DB, d Dialect, r *domain.TourRequest) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write tour request %q: begin tx: %w", r.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM delivery_requests WHERE tour_id = $1;`,
		`DELETE FROM tour_requests WHERE tour_id = $1;`,
	} {
		if _, err := tx.ExecContext(ctx, d.rebind(q), string(r.ID)); err != nil {
			return fmt.Errorf("write tour request %q: clear: %w", r.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, d.rebind(`
	INSERT INTO tour_requests (tour_id, day)
	VALUES ($1, $2);
	`), string(r.ID), r.Day.Format(dayLayout)); err != nil {
		return fmt.Errorf("write tour request %q: insert tour: %w", r.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, d.rebind(`
	INSERT INTO delivery_requests (delivery_id, tour_id, intersection_id, time_window)
	VALUES ($1, $2, $3, $4);
	`))
	if err != nil {
		return fmt.Errorf("write tour request %q: prepare deliveries: %w", r.ID, err)
	}
	defer stmt.Close()

	for _, dr := range r.Deliveries {
		if _, err := stmt.ExecContext(ctx, dr.ID.String(), string(r.ID), dr.IntersectionID, dr.TimeWindow); err != nil {
			return fmt.Errorf("write tour request %q: insert delivery %s: %w", r.ID, dr.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write tour request %q: commit tx: %w", r.ID, err)
	}
	return nil
}
