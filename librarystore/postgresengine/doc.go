// Package postgresengine provides the PostgreSQL implementation of the library store.
//
// This package implements the record stores for books, members, and loans and
// the loan lifecycle engine on top of them, supporting multiple database
// adapters (pgx, sql.DB, sqlx) with atomic multi-entity operations.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - OpenLoan/CloseLoan as single transactions with row-level locking,
//     so no partial mutation can ever be observed or persisted
//   - Guarded deletes: a lent-out book and a borrowing member cannot be removed
//   - Configurable table names, logging, metrics, and tracing
//
// Usage examples:
//
//	// Basic usage
//	pool, _ := pgxpool.New(context.Background(), dsn)
//	library, _ := postgresengine.NewLibraryFromPGXPool(pool)
//
//	// With operational logging and metrics
//	library, _ := postgresengine.NewLibraryFromPGXPool(
//		pool,
//		postgresengine.WithContextualLogger(logger),
//		postgresengine.WithMetrics(collector),
//	)
//
//	loanID, err := library.OpenLoan(ctx, memberID, bookID, dueTimestamp)
//	ok, err := library.CloseLoan(ctx, loanID, librarystore.LoanStatusReturned)
package postgresengine
