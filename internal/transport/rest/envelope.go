package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/pkg/ctxutil"
)

// Response is the wire envelope every endpoint answers with. The shape is
// fixed by the admin frontend contract: success carries the payload under
// data, failure carries a stable errorCode plus a display hint.
type Response struct {
	Success      bool   `json:"success"`
	Data         any    `json:"data,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	ShowType     int    `json:"showType,omitempty"`
	TraceID      string `json:"traceId,omitempty"`
	Host         string `json:"host,omitempty"`
}

// Frontend display hints for failed requests.
const (
	showTypeSilent       = 0
	showTypeErrorMessage = 2
)

var hostname, _ = os.Hostname()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeData(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
		TraceID: ctxutil.RequestIDFromCtx(r.Context()),
		Host:    hostname,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
	}

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = "internal server error"
	}

	writeJSON(w, status, Response{
		Success:      false,
		ErrorCode:    domain.ErrorCode(err),
		ErrorMessage: msg,
		ShowType:     showTypeErrorMessage,
		TraceID:      ctxutil.RequestIDFromCtx(r.Context()),
		Host:         hostname,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
