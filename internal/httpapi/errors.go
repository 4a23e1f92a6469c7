package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"habitquest/internal/engine"
	"habitquest/internal/logging"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ToStatusCode maps an error code to its HTTP status.
func ToStatusCode(code string) int {
	switch code {
	case "not_found":
		return http.StatusNotFound
	case "conflict":
		return http.StatusConflict
	case "bad_request":
		return http.StatusBadRequest
	case "unavailable":
		return http.StatusServiceUnavailable
	case "timeout":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return "not_found"
	case errors.Is(err, engine.ErrInvalidState):
		return "conflict"
	case errors.Is(err, engine.ErrValidation):
		return "bad_request"
	case errors.Is(err, engine.ErrStorageUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorCode(err)
	status := ToStatusCode(code)
	payload := ErrorResponse{Code: code, Message: err.Error(), RequestID: requestID(r)}

	var ve engine.ValidationError
	if errors.As(err, &ve) {
		payload.Field = ve.Field
	}
	if status >= http.StatusInternalServerError {
		logging.WithRequestID(r.Context(), h.logger, payload.RequestID).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		if code == "internal" {
			payload.Message = "internal error"
		}
	}
	respondJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: msg, RequestID: requestID(r)})
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
