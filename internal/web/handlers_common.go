package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/JonMunkholm/flashcards/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxJSONBody caps JSON request bodies. Bulk card payloads are the largest.
const maxJSONBody = 4 << 20

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &core.ValidationError{Field: "request body", Reason: "is not valid JSON"}
	}
	return nil
}

// pathUUID parses a UUID route parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &core.ValidationError{Field: name, Reason: "is not a valid id"}
	}
	return id, nil
}

type healthResponse struct {
	Status   string                   `json:"status"`
	Database string                   `json:"database,omitempty"`
	Imports  core.ImportLimiterStatus `json:"imports"`
}

// handleHealth reports database reachability and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Imports: s.service.ImportStatus()}
	status := http.StatusOK

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		resp.Database = "ok"
		if err := s.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}
