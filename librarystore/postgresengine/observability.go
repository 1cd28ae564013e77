package postgresengine

import (
	"context"
	"math"
	"time"

	"github.com/librarium/library-backend-go/librarystore"
)

const (
	metricOperationDuration    = "librarystore_operation_duration_seconds"
	metricOperationErrors      = "librarystore_errors_total"
	metricPreconditionFailures = "librarystore_precondition_failures_total"

	labelOperation = "operation"
	labelStatus    = "status"
	labelErrorType = "error_type"
	labelReason    = "reason"

	statusSuccess = "success"
	statusError   = "error"

	opOpenLoan     = "open_loan"
	opCloseLoan    = "close_loan"
	opCreateBook   = "create_book"
	opGetBook      = "get_book"
	opUpdateBook   = "update_book"
	opDeleteBook   = "delete_book"
	opCreateMember = "create_member"
	opGetMember    = "get_member"
	opUpdateMember = "update_member"
	opDeleteMember = "delete_member"
	opGetLoan      = "get_loan"

	spanNamePrefix = "librarystore."
)

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (lib *Library) logQueryWithDuration(ctx context.Context, sqlQuery, action string, duration time.Duration) {
	if lib.contextualLogger != nil {
		lib.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, lib.toMilliseconds(duration), logAttrQuery, sqlQuery)
		return
	}

	if lib.logger != nil {
		lib.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, lib.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (lib *Library) logOperation(ctx context.Context, action string, args ...any) {
	if lib.contextualLogger != nil {
		lib.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if lib.logger != nil {
		lib.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level if a logger is configured.
func (lib *Library) logWarn(ctx context.Context, msg string, args ...any) {
	if lib.contextualLogger != nil {
		lib.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if lib.logger != nil {
		lib.logger.Warn(msg, args...)
	}
}

// logError logs error information at error level if a logger is configured.
func (lib *Library) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if lib.contextualLogger != nil {
		lib.contextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if lib.logger != nil {
		lib.logger.Error(msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (lib *Library) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDurationMetrics records operation duration with context if the collector supports it.
func (lib *Library) recordDurationMetrics(ctx context.Context, operation, status string, duration time.Duration) {
	if lib.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation: operation,
		labelStatus:    status,
	}

	if contextualCollector, ok := lib.metricsCollector.(librarystore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
	} else {
		lib.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
	}
}

// recordErrorMetrics counts failed operations if the collector is configured.
func (lib *Library) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	if lib.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation: operation,
		labelStatus:    statusError,
		labelErrorType: errorType,
	}

	if contextualCollector, ok := lib.metricsCollector.(librarystore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricOperationErrors, labels)
	} else {
		lib.metricsCollector.IncrementCounter(metricOperationErrors, labels)
	}
}

// recordPreconditionFailure counts rejected operations (book unavailable,
// loan not open, and similar) if the collector is configured.
func (lib *Library) recordPreconditionFailure(ctx context.Context, operation, reason string) {
	if lib.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation: operation,
		labelReason:    reason,
	}

	if contextualCollector, ok := lib.metricsCollector.(librarystore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricPreconditionFailures, labels)
	} else {
		lib.metricsCollector.IncrementCounter(metricPreconditionFailures, labels)
	}
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (lib *Library) startTraceSpan(ctx context.Context, operation string, attrs map[string]string) (context.Context, librarystore.SpanContext) {
	if lib.tracingCollector != nil {
		return lib.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (lib *Library) finishTraceSpan(spanCtx librarystore.SpanContext, status string) {
	if lib.tracingCollector != nil && spanCtx != nil {
		lib.tracingCollector.FinishSpan(spanCtx, status, nil)
	}
}
