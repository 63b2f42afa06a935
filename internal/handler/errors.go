package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/middleware"
)

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the human-readable message (e.g. "trip not found")
// because the handler is the layer that knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// validationBody returns an ErrorResponse for a domain validation failure.
// The message is extracted from the wrapped domain.ErrValidation error.
func validationBody(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)}}
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: message}}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.TripService.Create: validation error: title is required" → "title is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	i := strings.Index(msg, marker)
	if i < 0 {
		return msg
	}
	// Import errors name the offending row ahead of the sentinel.
	if prefix := msg[:i]; strings.HasPrefix(prefix, "row ") {
		return prefix + msg[i+len(marker):]
	}
	return msg[i+len(marker):]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into dst. It reports whether decoding
// succeeded; on failure it has already written the error response.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorDetail{
			Code: "payload_too_large", Message: "request body too large",
		}})
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, requestBody("malformed request body: "+err.Error()))
	return false
}

// writeServiceError maps a service error onto a response. notFound is the
// message used for domain.ErrNotFound. Anything unrecognised is logged and
// answered with 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(notFound))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: ErrorDetail{Code: "unauthorized", Message: "unauthorized"}})
	default:
		s.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{
			Code: "internal_error", Message: "internal server error",
		}})
	}
}

// badParam answers a malformed path or query parameter.
func badParam(w http.ResponseWriter, name string, err error) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{
		Code: "bad_request", Message: "invalid parameter " + name + ": " + err.Error(),
	}})
}

// userID returns the authenticated caller. The auth middleware guarantees
// it on every protected route; a missing id is answered with 401.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: ErrorDetail{Code: "unauthorized", Message: "unauthorized"}})
	}
	return id, ok
}
