package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger writes one structured line per state-changing request
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger.With(slog.String("component", "audit"))}
}

// Entry describes a mutation as seen by the HTTP layer
type Entry struct {
	RequestID  string
	Action     string // create, update, delete
	Resource   string // route template, e.g. /listings/{id}
	ResourceID string
	ClientIP   string
	Status     int
}

func (al *Logger) LogAction(ctx context.Context, e Entry) {
	outcome := "succeeded"
	if e.Status >= 400 {
		outcome = "failed"
	}

	al.logger.InfoContext(ctx, "audit",
		slog.String("action", e.Action),
		slog.String("resource", e.Resource),
		slog.String("resource_id", e.ResourceID),
		slog.String("client_ip", e.ClientIP),
		slog.Int("status", e.Status),
		slog.String("outcome", outcome),
		slog.String("request_id", e.RequestID),
		slog.Time("timestamp", time.Now()),
	)
}

// ActionFor maps an HTTP method onto an audit action. Reads return "".
func ActionFor(method string) string {
	switch method {
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return ""
	}
}
