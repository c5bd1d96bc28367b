// Package operation wraps service logic with tracing, metrics, panic recovery and a
// database transaction.
package operation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/Black-And-White-Club/truthtable/app/shared/metrics"
	"github.com/Black-And-White-Club/truthtable/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Runner carries the telemetry dependencies of one service.
type Runner struct {
	Service string
	Logger  *slog.Logger
	Metrics metrics.OperationMetrics
	Tracer  trace.Tracer
	DB      *bun.DB
}

// NewRunner fills in defaults for a nil logger or metrics.
func NewRunner(service string, logger *slog.Logger, m metrics.OperationMetrics, tracer trace.Tracer, db *bun.DB) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Runner{Service: service, Logger: logger, Metrics: m, Tracer: tracer, DB: db}
}

// Func is the signature of a wrapped operation.
type Func[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// TxFunc is the signature of operation logic that runs against a db handle.
type TxFunc[S any, F any] func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error)

// WithTelemetry starts a span, records metrics, recovers panics and logs the
// outcome. Domain failures are logged at warn level and still count as success
// for infrastructure metrics.
func WithTelemetry[S any, F any](
	r *Runner,
	ctx context.Context,
	operationName string,
	identifier string,
	op Func[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if r.Tracer != nil {
		ctx, span = r.Tracer.Start(ctx, r.Service+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	r.Metrics.RecordOperationAttempt(ctx, operationName, r.Service)

	startTime := time.Now()
	defer func() {
		r.Metrics.RecordOperationDuration(ctx, operationName, r.Service, time.Since(startTime))
	}()

	r.Logger.DebugContext(ctx, "Operation triggered",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, rec)
			r.Logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("operation", operationName),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			r.Metrics.RecordOperationFailure(ctx, operationName, r.Service)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		r.Logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		r.Metrics.RecordOperationFailure(ctx, operationName, r.Service)
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	if result.IsFailure() {
		r.Logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	} else {
		r.Logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	r.Metrics.RecordOperationSuccess(ctx, operationName, r.Service)
	return result, nil
}

// RunInTx runs fn inside a transaction. Without a database (unit tests) fn gets a
// nil handle and repositories fall back to their own connection.
func RunInTx[S any, F any](r *Runner, ctx context.Context, fn TxFunc[S, F]) (results.OperationResult[S, F], error) {
	if r.DB == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := r.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		if txErr != nil {
			return txErr
		}
		// a domain failure must not leave partial writes behind
		if result.IsFailure() {
			return errRollback
		}
		return nil
	})
	if errors.Is(err, errRollback) {
		return result, nil
	}
	return result, err
}

var errRollback = errors.New("operation: rollback on domain failure")

// Execute is the common public-method shape: telemetry around a transaction,
// with the domain failure returned as the error.
func Execute[S any](r *Runner, ctx context.Context, operationName, identifier string, fn TxFunc[S, error]) (S, error) {
	return Unwrap(WithTelemetry(r, ctx, operationName, identifier, func(ctx context.Context) (results.OperationResult[S, error], error) {
		return RunInTx(r, ctx, fn)
	}))
}

// Unwrap flattens a result into Go's value-and-error shape.
func Unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}
