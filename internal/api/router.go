package api

import (
	"delivery-tour-service/internal/api/handlers"
	"delivery-tour-service/internal/ports"
	"delivery-tour-service/internal/services"
	"net/http"
	"time"
)

// Dependencies of the HTTP API. Now defaults to time.Now.
type Deps struct {
	Maps     ports.RoadMapProvider
	Requests ports.TourRequestRepository
	Computer *services.TourComputer
	MapID    string
	Now      func() time.Time
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Maps: deps.Maps, MapID: deps.MapID}
	mapHandler := &handlers.MapHandler{Maps: deps.Maps, MapID: deps.MapID}
	tourHandler := &handlers.TourHandler{
		Maps:     deps.Maps,
		Requests: deps.Requests,
		Computer: deps.Computer,
		MapID:    deps.MapID,
		Now:      deps.Now,
	}

	mux.HandleFunc("/health", healthHandler.Get)
	mux.HandleFunc("/map", mapHandler.Get)
	mux.HandleFunc("GET /tours", tourHandler.List)
	mux.HandleFunc("POST /tours", tourHandler.Compute)
	mux.HandleFunc("GET /tours/{id}", tourHandler.Get)

	return loggingMiddleware(mux)
}
