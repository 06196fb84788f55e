package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/security/middleware"
)

// ErrorResponse is the body of every non-2xx response written by this package
type ErrorResponse struct {
	Error  string       `json:"error"`
	Kind   domain.Kind  `json:"kind"`
	Fields []FieldError `json:"fields,omitempty"`
}

// DeletedResponse acknowledges a deletion
type DeletedResponse struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor is the single mapping from error kind to HTTP status
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var kindMessages = map[domain.Kind]string{
	domain.KindNotFound:    "not found",
	domain.KindConflict:    "request conflicts with existing data",
	domain.KindUnavailable: "database unavailable",
	domain.KindInternal:    "internal server error",
}

// writeError renders err according to its kind. Validation errors keep their
// message and field list; other kinds get a fixed message so driver detail
// never leaks to clients.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	kind := domain.KindOf(err)
	resp := ErrorResponse{Kind: kind}

	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		resp.Error = ve.Message
		resp.Fields = ve.Fields
	case domain.PublicMessage(err) != "":
		resp.Error = domain.PublicMessage(err)
	case kind == domain.KindValidation:
		resp.Error = "request rejected by database constraints"
	default:
		resp.Error = kindMessages[kind]
	}

	if kind == domain.KindInternal || kind == domain.KindUnavailable {
		log.Error("request failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, resp, statusFor(kind))
}

// pathID reads a positive integer path variable
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{
			Message: fmt.Sprintf("%s must be a positive integer", name),
			Fields:  []FieldError{{Field: "/" + name, Message: "must be a positive integer"}},
		}
	}
	return id, nil
}
