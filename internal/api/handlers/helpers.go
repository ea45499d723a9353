package handlers

import (
	"delivery-tour-service/internal/api/dto"
	"delivery-tour-service/internal/platform/obs"
	"encoding/json"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: req_id=%s method=%s path=%s err=%v",
			obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
	}
}

// writeError echoes the request ID so a client report can be matched to
// the server log line.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	res := dto.ErrorResponse{Error: msg}
	if id := obs.RequestID(r.Context()); id != "-" {
		res.RequestID = id
	}
	writeJSON(w, r, status, res)
}
