package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/observability/metrics"
	"github.com/yourorg/estatehub/pkg/database"
)

// postgres is embedded by every repository. It resolves the handle to run on,
// bounds the statement by the query timeout, records metrics and classifies
// driver errors into domain kinds.
type postgres struct {
	pool   *database.ConnectionPool
	logger *slog.Logger
}

func newPostgres(pool *database.ConnectionPool, logger *slog.Logger) postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return postgres{pool: pool, logger: logger}
}

func (p *postgres) run(ctx context.Context, op string, fn func(ctx context.Context, q database.Querier) error) error {
	ctx, cancel := p.pool.WithTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := classify(op, fn(ctx, p.pool.Querier(ctx)))
	p.observe(op, start, err)
	return err
}

func (p *postgres) tx(ctx context.Context, op string, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	ctx, cancel := p.pool.WithTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := classify(op, p.pool.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(ctx, tx)
	}))
	p.observe(op, start, err)
	return err
}

func (p *postgres) observe(op string, start time.Time, err error) {
	kind := domain.KindOf(err)
	result := "ok"
	if err != nil {
		result = string(kind)
	}
	metrics.ObserveQuery(op, result, time.Since(start))

	switch kind {
	case domain.KindUnavailable, domain.KindInternal:
		p.logger.Error("database operation failed",
			slog.String("op", op),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	case domain.KindConflict, domain.KindValidation:
		p.logger.Warn("database rejected statement",
			slog.String("op", op),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}
}

// classify maps a driver error onto the domain error kinds
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return domain.E(domain.KindNotFound, op, domain.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return domain.E(pqKind(pqErr), op, err)
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return domain.E(domain.KindUnavailable, op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.E(domain.KindUnavailable, op, err)
	}

	return domain.E(domain.KindInternal, op, err)
}

func pqKind(err *pq.Error) domain.Kind {
	switch err.Code {
	case "23505", // unique_violation
		"23503", // foreign_key_violation
		"23P01", // exclusion_violation
		"40001", // serialization_failure
		"40P01": // deadlock_detected
		return domain.KindConflict
	case "23514", // check_violation
		"23502", // not_null_violation
		"22P02", // invalid_text_representation
		"22001", // string_data_right_truncation
		"22003", // numeric_value_out_of_range
		"22007", // invalid_datetime_format
		"22008": // datetime_field_overflow
		return domain.KindValidation
	case "57014": // query_canceled
		return domain.KindUnavailable
	}

	switch err.Code.Class() {
	case "08", // connection_exception
		"53", // insufficient_resources
		"57": // operator_intervention
		return domain.KindUnavailable
	}
	return domain.KindInternal
}
