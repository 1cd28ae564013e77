package postgresengine

import (
	"github.com/librarium/library-backend-go/librarystore"
)

// Option defines a functional option for configuring a Library.
type Option func(*Library) error

// WithBooksTableName sets the table name for book records.
func WithBooksTableName(tableName string) Option {
	return func(lib *Library) error {
		if tableName == "" {
			return librarystore.ErrEmptyTableNameSupplied
		}

		lib.booksTableName = tableName

		return nil
	}
}

// WithMembersTableName sets the table name for member records.
func WithMembersTableName(tableName string) Option {
	return func(lib *Library) error {
		if tableName == "" {
			return librarystore.ErrEmptyTableNameSupplied
		}

		lib.membersTableName = tableName

		return nil
	}
}

// WithLoansTableName sets the table name for loan records.
func WithLoansTableName(tableName string) Option {
	return func(lib *Library) error {
		if tableName == "" {
			return librarystore.ErrEmptyTableNameSupplied
		}

		lib.loansTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Library.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: operation outcomes and durations (production-safe)
// Warn level: non-critical issues like rollback or cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger librarystore.Logger) Option {
	return func(lib *Library) error {
		lib.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Library.
// When configured, it takes precedence over the plain logger so log records
// carry trace/span correlation from the request context.
func WithContextualLogger(logger librarystore.ContextualLogger) Option {
	return func(lib *Library) error {
		lib.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Library.
// The collector will receive operation durations, error counters, and
// precondition-failure counters.
func WithMetrics(collector librarystore.MetricsCollector) Option {
	return func(lib *Library) error {
		lib.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Library.
// The collector will receive span start/finish for the loan lifecycle
// operations including error status.
func WithTracing(collector librarystore.TracingCollector) Option {
	return func(lib *Library) error {
		lib.tracingCollector = collector
		return nil
	}
}
