package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourorg/estatehub/internal/domain"
)

func TestWriteErrorMapsKindToStatus(t *testing.T) {
	driverErr := errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`)
	tests := []struct {
		name   string
		err    error
		status int
		kind   domain.Kind
	}{
		{"validation", &ValidationError{Message: "bad body"}, http.StatusBadRequest, domain.KindValidation},
		{"db validation", domain.E(domain.KindValidation, "listings.status", driverErr), http.StatusBadRequest, domain.KindValidation},
		{"not found", domain.E(domain.KindNotFound, "users.get", domain.ErrNotFound), http.StatusNotFound, domain.KindNotFound},
		{"conflict", domain.E(domain.KindConflict, "users.create", driverErr), http.StatusConflict, domain.KindConflict},
		{"unavailable", domain.E(domain.KindUnavailable, "users.list", driverErr), http.StatusServiceUnavailable, domain.KindUnavailable},
		{"internal", domain.E(domain.KindInternal, "users.list", driverErr), http.StatusInternalServerError, domain.KindInternal},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, domain.KindInternal},
	}

	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/users", nil), log, tt.err)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Kind != tt.kind {
				t.Errorf("expected kind %q, got %q", tt.kind, resp.Kind)
			}
			if strings.Contains(resp.Error, "pq:") {
				t.Errorf("driver detail leaked to client: %q", resp.Error)
			}
		})
	}
}

func TestValidationErrorIsValidationKind(t *testing.T) {
	err := &ValidationError{Message: "bad", Fields: []FieldError{{Field: "/price", Message: "must be >= 0"}}}
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected errors.Is(err, ErrValidation)")
	}
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation kind")
	}
	if !strings.Contains(err.Error(), "/price") {
		t.Errorf("expected first field in message, got %q", err.Error())
	}
}
