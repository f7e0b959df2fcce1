package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"jobmate/trust-service/internal/scam"
)

// envelope is the JSON shape of every response.
type envelope struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data,omitempty"`
	Error      string           `json:"error,omitempty"`
	Pagination *scam.Pagination `json:"pagination,omitempty"`
}

func jsonOK(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Success: true, Data: data})
}

func jsonPage(w http.ResponseWriter, data any, p *scam.Pagination) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Pagination: p})
}

func jsonError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, envelope{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *scam.ValidationError
	var dup *scam.DuplicateReportError
	switch {
	case errors.As(err, &ve):
		jsonError(w, http.StatusBadRequest, ve.Msg)
	case errors.As(err, &dup):
		// business outcome, reported in the envelope rather than the status
		writeJSON(w, http.StatusOK, envelope{
			Error: dup.Error(),
			Data:  map[string]string{"existingScamId": dup.ExistingID},
		})
	case errors.Is(err, scam.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, scam.ErrAlreadyReviewed):
		jsonError(w, http.StatusConflict, "already reviewed")
	default:
		slog.Error("request failed",
			"method", r.Method, "path", r.URL.Path,
			"requestId", middleware.GetReqID(r.Context()), "err", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode reads a JSON body into dst, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
