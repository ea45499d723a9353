package repositories

import (
	"context"
	"database/sql"
	"delivery-tour-service/internal/domain"
	"delivery-tour-service/internal/platform/obs"
	"delivery-tour-service/internal/ports"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQL-backed implementation of the TourRequestRepository port.
type SQLTourRequestRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLTourRequestRepository(db *sql.DB) *SQLTourRequestRepository {
	return &SQLTourRequestRepository{DB: db, Dialect: Postgres}
}

func NewSqliteTourRequestRepository(db *sql.DB) *SQLTourRequestRepository {
	return &SQLTourRequestRepository{DB: db, Dialect: Sqlite}
}

const tourRequestsQuery = `
	SELECT
		t.tour_id,
		t.day,
		d.delivery_id,
		d.intersection_id,
		d.time_window
	FROM tour_requests t
	LEFT JOIN delivery_requests d ON d.tour_id = t.tour_id
	%s
	ORDER BY t.tour_id, d.delivery_id;
	`

// Return all tour requests stored in the database, ordered by tour ID.
func (s *SQLTourRequestRepository) ListTourRequests(ctx context.Context) (_ []*domain.TourRequest, err error) {
	defer obs.Time(ctx, "tour_requests.List")(&err)

	if s.DB == nil {
		return nil, errors.New("tour request repository: DB is nil")
	}

	return s.query(ctx, fmt.Sprintf(tourRequestsQuery, ""))
}

// Return a single tour request or ports.ErrTourRequestNotFound.
func (s *SQLTourRequestRepository) GetTourRequest(ctx context.Context, id domain.TourID) (_ *domain.TourRequest, err error) {
	defer obs.Time(ctx, "tour_requests.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("tour request repository: DB is nil")
	}

	requests, err := s.query(ctx, fmt.Sprintf(tourRequestsQuery, "WHERE t.tour_id = $1"), string(id))
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("get tour request %q: %w", id, ports.ErrTourRequestNotFound)
	}
	return requests[0], nil
}

func (s *SQLTourRequestRepository) query(ctx context.Context, query string, args ...any) ([]*domain.TourRequest, error) {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list tour requests: query tour_requests table: %w", err)
	}
	defer rows.Close()

	requests := make([]*domain.TourRequest, 0, 16)
	var current *domain.TourRequest
	for rows.Next() {
		var (
			tourID, day  string
			deliveryID   sql.NullString
			intersection sql.NullInt64
			window       sql.NullInt64
		)
		if err := rows.Scan(&tourID, &day, &deliveryID, &intersection, &window); err != nil {
			return nil, fmt.Errorf("list tour requests: scan row: %w", err)
		}

		if current == nil || string(current.ID) != tourID {
			d, err := time.Parse(dayLayout, day)
			if err != nil {
				return nil, fmt.Errorf("list tour requests: tour %q: invalid day %q: %w", tourID, day, err)
			}
			current = &domain.TourRequest{ID: domain.TourID(tourID), Day: d}
			requests = append(requests, current)
		}

		if !deliveryID.Valid {
			continue
		}
		id, err := uuid.Parse(deliveryID.String)
		if err != nil {
			return nil, fmt.Errorf("list tour requests: tour %q: delivery id: %w", tourID, err)
		}
		err = current.Add(domain.DeliveryRequest{
			ID:             id,
			IntersectionID: intersection.Int64,
			TimeWindow:     int(window.Int64),
		})
		if err != nil {
			return nil, fmt.Errorf("list tour requests: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tour requests: row iteration: %w", err)
	}

	return requests, nil
}
