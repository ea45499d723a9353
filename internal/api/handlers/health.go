package handlers

import (
	"delivery-tour-service/internal/api/dto"
	"delivery-tour-service/internal/ports"
	"log"
	"net/http"
)

const serviceName = "delivery-tour-service"

// HealthHandler reports whether the configured road map can be served.
// Tours cannot be computed without it, so a missing map is a 503.
type HealthHandler struct {
	Maps  ports.RoadMapProvider
	MapID string
}

func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := dto.HealthResponse{Status: dto.HealthOK, Service: serviceName, MapID: h.MapID, MapLoaded: true}
	status := http.StatusOK

	if _, err := h.Maps.LoadRoadMap(r.Context(), h.MapID); err != nil {
		log.Printf("health: road map unavailable: map=%s err=%v", h.MapID, err)
		res.Status = dto.HealthDegraded
		res.MapLoaded = false
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, r, status, res)
}
