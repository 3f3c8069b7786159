package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes bounds JSON request bodies, request bodies being edited can be large but not unbounded
const maxBodyBytes = 8 << 20

type setFieldRequest struct {
	Value *string `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// decodeFieldValue reads {"value": "..."} from the request body
func decodeFieldValue(w http.ResponseWriter, r *http.Request) (string, error) {
	var body setFieldRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return "", fmt.Errorf("invalid json body: %w", err)
	}
	if body.Value == nil {
		return "", fmt.Errorf("value is required")
	}
	return *body.Value, nil
}

// parseEntryID reads the {id} url param as a uuid
func parseEntryID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid history id %q", raw)
	}
	return id, nil
}

// parseLimit reads ?limit=N, zero means the repository default
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return limit, nil
}
