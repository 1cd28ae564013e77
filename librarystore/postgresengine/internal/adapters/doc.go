// Package adapters provides database adapter implementations for the PostgreSQL library store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgxpool.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the store to work seamlessly with any supported
// database connection type.
//
// On top of plain query execution, every adapter can begin a scoped transaction
// (DBTransaction) so the loan lifecycle engine can read and mutate the book, member,
// and loan records as a single atomic unit of work with row-level locking.
package adapters
