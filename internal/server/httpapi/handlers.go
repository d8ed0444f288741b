package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/oskolki/internal/common"
)

type readResponse struct {
	Success bool              `json:"success"`
	Data    []json.RawMessage `json:"data"`
}

type writeRequest struct {
	Sheet string          `json:"sheet"`
	Data  json.RawMessage `json:"data"`
}

type writeResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) fail(w http.ResponseWriter, req *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		r.deps.Logger.Error(req.Context(), "request failed", "path", req.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func (r *Router) read(w http.ResponseWriter, req *http.Request) {
	rows, err := r.deps.Sheets.Read(req.Context(), req.URL.Query().Get("sheet"))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, readResponse{Success: true, Data: rows})
}

// write accepts any content type; browsers post text/plain to skip the
// CORS preflight.
func (r *Router) write(w http.ResponseWriter, req *http.Request) {
	var body writeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		r.fail(w, req, fmt.Errorf("%w: %v", common.ErrParse, err))
		return
	}
	if err := r.deps.Sheets.Write(req.Context(), body.Sheet, body.Data); err != nil {
		r.fail(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, writeResponse{Success: true})
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	if r.deps.DB != nil {
		if err := r.deps.DB.PingContext(req.Context()); err != nil {
			r.deps.Logger.Warn(req.Context(), "health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
