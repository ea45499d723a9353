package dto

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	MapID     string `json:"map_id"`
	MapLoaded bool   `json:"map_loaded"`
}

const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// Error body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
