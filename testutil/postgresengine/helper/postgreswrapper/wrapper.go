package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/librarium/library-backend-go/librarystore/postgresengine"
	"github.com/librarium/library-backend-go/testutil/postgresengine/config"
)

// Engine type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// Wrapper interface to abstract over different engine types
type Wrapper interface {
	GetLibrary() *postgresengine.Library
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool *pgxpool.Pool
	lib  *postgresengine.Library
}

func (w *PGXPoolWrapper) GetLibrary() *postgresengine.Library {
	return w.lib
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db  *sql.DB
	lib *postgresengine.Library
}

func (w *SQLDBWrapper) GetLibrary() *postgresengine.Library {
	return w.lib
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db  *sqlx.DB
	lib *postgresengine.Library
}

func (w *SQLXWrapper) GetLibrary() *postgresengine.Library {
	return w.lib
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the ADAPTER_TYPE
// environment variable. Additional options are passed through to the library factory,
// which lets tests wire observability spies.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	engineTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch engineTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolTestConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")

		lib, err := postgresengine.NewLibraryFromPGXPool(connPool, options...)
		assert.NoError(t, err, "error creating library store")

		return &PGXPoolWrapper{pool: connPool, lib: lib}

	case typeSQLDB:
		db := config.PostgresSQLDBTestConfig()

		lib, err := postgresengine.NewLibraryFromSQLDB(db, options...)
		assert.NoError(t, err, "error creating library store")

		return &SQLDBWrapper{db: db, lib: lib}

	case typeSQLXDB:
		db := config.PostgresSQLXTestConfig()

		lib, err := postgresengine.NewLibraryFromSQLX(db, options...)
		assert.NoError(t, err, "error creating library store")

		return &SQLXWrapper{db: db, lib: lib}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", engineTypeFromEnv))
	}
}

// TryCreateLibraryWithOptions tries to create a library store with the given options
// and returns the error (for testing error cases).
func TryCreateLibraryWithOptions(t testing.TB, options ...postgresengine.Option) error {
	engineTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch engineTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolTestConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")
		defer connPool.Close()

		_, err = postgresengine.NewLibraryFromPGXPool(connPool, options...)
		return err

	case typeSQLDB:
		db := config.PostgresSQLDBTestConfig()
		defer func(db *sql.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := postgresengine.NewLibraryFromSQLDB(db, options...)
		return err

	case typeSQLXDB:
		db := config.PostgresSQLXTestConfig()
		defer func(db *sqlx.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := postgresengine.NewLibraryFromSQLX(db, options...)
		return err

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", engineTypeFromEnv))
	}
}

// CleanUp cleans up the books, members and loans tables for the given wrapper.
func CleanUp(t testing.TB, wrapper Wrapper) {
	const query = "TRUNCATE TABLE loans, books, members"

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err := w.pool.Exec(context.Background(), query)
		assert.NoError(t, err, "error cleaning up the library tables")

	case *SQLDBWrapper:
		_, err := w.db.Exec(query)
		assert.NoError(t, err, "error cleaning up the library tables")

	case *SQLXWrapper:
		_, err := w.db.Exec(query)
		assert.NoError(t, err, "error cleaning up the library tables")

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}
}

// DeleteMemberRow removes a member row directly, bypassing the engine's
// guarded delete, so tests can arrange a dangling member reference.
func DeleteMemberRow(t testing.TB, wrapper Wrapper, memberID string) {
	query := fmt.Sprintf(`DELETE FROM members WHERE member_id = '%s'`, memberID)

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err := w.pool.Exec(context.Background(), query)
		assert.NoError(t, err, "error in arranging test data")

	case *SQLDBWrapper:
		_, err := w.db.Exec(query)
		assert.NoError(t, err, "error in arranging test data")

	case *SQLXWrapper:
		_, err := w.db.Exec(query)
		assert.NoError(t, err, "error in arranging test data")

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}
}

// CountOpenLoansForBook counts loans in the open state for the given book,
// reading the table directly so tests can verify engine writes.
func CountOpenLoansForBook(t testing.TB, wrapper Wrapper, bookID string) int {
	query := fmt.Sprintf(`SELECT count(*) FROM loans WHERE book_id = '%s' AND status = 'open'`, bookID)

	var cnt int
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		row := w.pool.QueryRow(context.Background(), query)
		err = row.Scan(&cnt)

	case *SQLDBWrapper:
		row := w.db.QueryRow(query)
		err = row.Scan(&cnt)

	case *SQLXWrapper:
		row := w.db.QueryRow(query)
		err = row.Scan(&cnt)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error counting open loans")

	return cnt
}
