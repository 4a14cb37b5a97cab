package mockaria

import (
	"encoding/json"
	"net/http"
)

// Handler serves the fake identity endpoints the service ships with so it can
// run standalone. Two credentials are recognized: an admin token and a client
// token; everything else is invalid.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /mock-aria/users/validate", h.handleValidate)
	mux.HandleFunc("GET /mock-aria/users/profile/{userId}", h.handleProfile)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	switch r.Header.Get("Authorization") {
	case "Bearer valid-admin-token":
		writeJSON(w, map[string]any{"valid": true, "userId": "admin-id"})
	case "Bearer valid-client-token":
		writeJSON(w, map[string]any{"valid": true, "userId": "client-id"})
	default:
		writeJSON(w, map[string]any{"valid": false})
	}
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	role := "client"
	if r.PathValue("userId") == "admin-id" {
		role = "admin"
	}
	writeJSON(w, map[string]any{"role": role})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}
