package handlers

import (
	"delivery-tour-service/internal/api/dto"
	"delivery-tour-service/internal/ports"
	"errors"
	"log"
	"net/http"
)

// MapHandler exposes a summary of the road map tours are computed on.
type MapHandler struct {
	Maps  ports.RoadMapProvider
	MapID string
}

func (h *MapHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	m, err := h.Maps.LoadRoadMap(r.Context(), h.MapID)
	if errors.Is(err, ports.ErrRoadMapNotFound) {
		writeError(w, r, http.StatusNotFound, "road map not found")
		return
	}
	if err != nil {
		log.Printf("load road map failed: map=%s err=%v", h.MapID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.MapResponse{
		MapID:             m.ID(),
		IntersectionCount: m.IntersectionCount(),
		SegmentCount:      len(m.Segments()),
	}
	if wh, err := m.Warehouse(); err == nil {
		res.WarehouseID = &wh
	}
	if m.IntersectionCount() > 0 {
		b := m.Bounds()
		res.BoundsMin = b.Min.CoordsToList()
		res.BoundsMax = b.Max.CoordsToList()
	}

	writeJSON(w, r, http.StatusOK, res)
}
