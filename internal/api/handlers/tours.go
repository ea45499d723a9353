package handlers

import (
	"context"
	"delivery-tour-service/internal/api/dto"
	"delivery-tour-service/internal/domain"
	"delivery-tour-service/internal/ports"
	"delivery-tour-service/internal/services"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dayLayout = "2006-01-02"

type TourHandler struct {
	Maps     ports.RoadMapProvider
	Requests ports.TourRequestRepository
	Computer *services.TourComputer
	MapID    string
	// Now supplies the default day of ad-hoc requests.
	Now func() time.Time
}

// List computes every stored tour request. Tours that cannot be computed
// are reported with status no_route_found next to the others.
func (h *TourHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	m, ok := h.loadMap(w, r)
	if !ok {
		return
	}

	requests, err := h.Requests.ListTourRequests(r.Context())
	if err != nil {
		log.Printf("list tour requests failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	results, err := h.Computer.ComputeTours(r.Context(), requests, m)
	if err != nil {
		log.Printf("compute tours failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListToursResponse{Tours: make([]dto.TourResponse, 0, len(results))}
	for _, result := range results {
		if result.Err != nil && !domain.IsComputingError(result.Err) {
			log.Printf("compute tour failed: tour=%s err=%v", result.Request.ID, result.Err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		res.Tours = append(res.Tours, tourResponse(result.Request.ID, result.Tour, result.Err))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get computes one stored tour request.
func (h *TourHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := domain.TourID(strings.TrimSpace(r.PathValue("id")))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "tour id is required")
		return
	}

	request, err := h.Requests.GetTourRequest(r.Context(), id)
	if errors.Is(err, ports.ErrTourRequestNotFound) {
		writeError(w, r, http.StatusNotFound, "tour request not found")
		return
	}
	if err != nil {
		log.Printf("get tour request failed: tour=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.compute(w, r, request)
}

// Compute computes an ad-hoc tour request sent in the body.
func (h *TourHandler) Compute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.TourRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	request, err := h.tourRequest(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.compute(w, r, request)
}

func (h *TourHandler) tourRequest(req dto.TourRequest) (*domain.TourRequest, error) {
	id := strings.TrimSpace(req.TourID)
	if id == "" {
		id = "adhoc"
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	today := now()
	day := domain.StartOfDay(today)
	if s := strings.TrimSpace(req.Day); s != "" {
		d, err := time.ParseInLocation(dayLayout, s, today.Location())
		if err != nil {
			return nil, fmt.Errorf("day must use the YYYY-MM-DD format")
		}
		day = d
	}

	request := &domain.TourRequest{ID: domain.TourID(id), Day: day}
	for i, d := range req.Deliveries {
		deliveryID := uuid.New()
		if s := strings.TrimSpace(d.ID); s != "" {
			parsed, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("deliveries[%d].id must be a UUID", i)
			}
			deliveryID = parsed
		}

		err := request.Add(domain.DeliveryRequest{
			ID:             deliveryID,
			IntersectionID: d.IntersectionID,
			TimeWindow:     d.TimeWindow,
		})
		if err != nil {
			return nil, fmt.Errorf("deliveries[%d]: %w", i, err)
		}
	}

	return request, nil
}

func (h *TourHandler) compute(w http.ResponseWriter, r *http.Request, request *domain.TourRequest) {
	m, ok := h.loadMap(w, r)
	if !ok {
		return
	}

	tour, err := h.Computer.ComputeTour(r.Context(), request, m)
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, tourResponse(request.ID, tour, nil))
	case domain.IsComputingError(err):
		writeJSON(w, r, http.StatusUnprocessableEntity, tourResponse(request.ID, nil, err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "tour computation canceled")
	default:
		log.Printf("compute tour failed: tour=%s err=%v", request.ID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func (h *TourHandler) loadMap(w http.ResponseWriter, r *http.Request) (*domain.RoadMap, bool) {
	m, err := h.Maps.LoadRoadMap(r.Context(), h.MapID)
	if errors.Is(err, ports.ErrRoadMapNotFound) {
		writeError(w, r, http.StatusNotFound, "road map not found")
		return nil, false
	}
	if err != nil {
		log.Printf("load road map failed: map=%s err=%v", h.MapID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return m, true
}

func tourResponse(id domain.TourID, tour *domain.ComputedTour, err error) dto.TourResponse {
	res := dto.TourResponse{
		TourID:     string(id),
		Deliveries: []dto.DeliveryResponse{},
		Route:      []dto.SegmentResponse{},
	}
	if err != nil || tour == nil {
		res.Status = dto.TourNoRouteFound
		if err != nil {
			res.Error = err.Error()
		}
		return res
	}

	res.Status = dto.TourComputed
	res.DepartAt = &tour.DepartAt
	res.ReturnAt = &tour.ReturnAt
	res.LengthMeters = tour.LengthMeters
	res.BudgetExhausted = tour.BudgetExhausted

	for _, d := range tour.Deliveries {
		res.Deliveries = append(res.Deliveries, dto.DeliveryResponse{
			ID:             d.Request.ID.String(),
			IntersectionID: d.Request.IntersectionID,
			TimeWindow:     d.Request.TimeWindow,
			DeliverAt:      d.Time,
			RouteIndex:     d.RouteIndex,
		})
	}
	for _, s := range tour.Route {
		res.Route = append(res.Route, dto.SegmentResponse{
			Name:         s.Name,
			Origin:       s.Origin,
			Destination:  s.Destination,
			LengthMeters: s.LengthMeters,
		})
	}

	return res
}
