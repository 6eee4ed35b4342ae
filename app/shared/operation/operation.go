// Package operation wraps service operations with tracing, metrics, logging and
// transactions.
package operation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/clubhouse/app/shared/results"
	"github.com/Black-And-White-Club/clubhouse/internal/observability"
	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Instrument is the telemetry a service carries.
type Instrument struct {
	Service string
	Logger  *slog.Logger
	Metrics observability.OperationMetrics
	Tracer  trace.Tracer
}

// Func is the signature of a service operation body.
type Func[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// WithTelemetry wraps op with a span, attempt/success/failure/duration metrics,
// panic recovery and structured logs.
func WithTelemetry[S any, F any](
	in Instrument,
	ctx context.Context,
	operationName string,
	identifier string,
	op Func[S, F],
) (result results.OperationResult[S, F], err error) {
	logger := in.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var span trace.Span
	if in.Tracer != nil {
		ctx, span = in.Tracer.Start(ctx, in.Service+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if in.Metrics != nil {
		in.Metrics.RecordOperationAttempt(ctx, operationName, in.Service)
	}

	startTime := time.Now()
	defer func() {
		if in.Metrics != nil {
			in.Metrics.RecordOperationDuration(ctx, operationName, in.Service, time.Since(startTime))
		}
	}()

	logger.InfoContext(ctx, "Operation triggered",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if in.Metrics != nil {
				in.Metrics.RecordOperationFailure(ctx, operationName, in.Service)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if in.Metrics != nil {
			in.Metrics.RecordOperationFailure(ctx, operationName, in.Service)
		}
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	if result.IsFailure() {
		logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if in.Metrics != nil {
		in.Metrics.RecordOperationSuccess(ctx, operationName, in.Service)
	}

	return result, nil
}

// RunInTx runs fn inside a transaction on db. A nil db runs fn with a nil handle,
// which repositories resolve to their own connection.
func RunInTx[S any, F any](
	ctx context.Context,
	db *bun.DB,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// Unwrap turns an operation result into the (value, error) pair services return.
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
