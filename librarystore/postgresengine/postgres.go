package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/librarium/library-backend-go/librarystore"
	"github.com/librarium/library-backend-go/librarystore/postgresengine/internal/adapters"
)

const (
	defaultBooksTableName   = "books"
	defaultMembersTableName = "members"
	defaultLoansTableName   = "loans"

	logMsgBuildQueryFailed    = "failed to build sql query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgBeginTxFailed       = "failed to begin transaction"
	logMsgCommitTxFailed      = "failed to commit transaction"
	logMsgRollbackTxFailed    = "failed to roll back transaction"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "librarystore operation: "
	logMsgIntegrityViolation  = "loan references a member that cannot be found"
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrDurationMS         = "duration_ms"
	logAttrBookID             = "book_id"
	logAttrMemberID           = "member_id"
	logAttrLoanID             = "loan_id"
	logAttrStatus             = "status"

	colBookID          = "book_id"
	colTitle           = "title"
	colAuthor          = "author"
	colPublicationYear = "publication_year"
	colISBN            = "isbn"
	colAvailability    = "availability_status"

	colMemberID  = "member_id"
	colName      = "name"
	colEmail     = "email"
	colPrivilege = "privilege"
	colBorrowed  = "borrowed"

	colLoanID     = "loan_id"
	colLoanDate   = "loan_date"
	colDueDate    = "due_date"
	colReturnDate = "return_date"
	colFine       = "fine"
	colStatus     = "status"

	dialectPostgres = "postgres"
	castDate        = "?::date"
	dateFormat      = "2006-01-02"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

// Library is the PostgreSQL-backed record store and loan lifecycle engine.
// It persists books, members, and loans, and is the sole authority for the
// cross-entity mutations performed when loans are opened and closed.
// It leverages a database adapter and supports customizable logging,
// metrics, tracing, and table names.
type Library struct {
	db               adapters.DBAdapter
	booksTableName   string
	membersTableName string
	loansTableName   string
	logger           librarystore.Logger
	contextualLogger librarystore.ContextualLogger
	metricsCollector librarystore.MetricsCollector
	tracingCollector librarystore.TracingCollector
}

// NewLibraryFromPGXPool creates a new Library using a pgx pool with optional configuration.
func NewLibraryFromPGXPool(db *pgxpool.Pool, options ...Option) (*Library, error) {
	if db == nil {
		return nil, librarystore.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewPGXAdapter(db), options...)
}

// NewLibraryFromSQLDB creates a new Library using a sql.DB with optional configuration.
func NewLibraryFromSQLDB(db *sql.DB, options ...Option) (*Library, error) {
	if db == nil {
		return nil, librarystore.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewSQLAdapter(db), options...)
}

// NewLibraryFromSQLX creates a new Library using a sqlx.DB with optional configuration.
func NewLibraryFromSQLX(db *sqlx.DB, options ...Option) (*Library, error) {
	if db == nil {
		return nil, librarystore.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewSQLXAdapter(db), options...)
}

func newLibrary(db adapters.DBAdapter, options ...Option) (*Library, error) {
	lib := &Library{
		db:               db,
		booksTableName:   defaultBooksTableName,
		membersTableName: defaultMembersTableName,
		loansTableName:   defaultLoansTableName,
	}

	for _, option := range options {
		if err := option(lib); err != nil {
			return nil, err
		}
	}

	return lib, nil
}

func (lib *Library) dialect() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// executeQuery executes the SQL query on the given executor and returns rows
// with timing information.
func (lib *Library) executeQuery(
	ctx context.Context,
	db adapters.DBExecutor,
	sqlQuery string,
	action string,
) (adapters.DBRows, time.Duration, error) {

	start := time.Now()
	rows, queryErr := db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	lib.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		lib.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)

		return nil, duration, errors.Join(librarystore.ErrQueryingStoreFailed, queryErr)
	}

	return rows, duration, nil
}

// executeExec executes the SQL mutation on the given executor and returns the
// number of affected rows with timing information.
func (lib *Library) executeExec(
	ctx context.Context,
	db adapters.DBExecutor,
	sqlQuery string,
	action string,
) (rowsAffectedInt64, time.Duration, error) {

	start := time.Now()
	result, execErr := db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	lib.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if execErr != nil {
		lib.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)

		return 0, duration, errors.Join(librarystore.ErrExecutingStoreFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		lib.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)

		return 0, duration, errors.Join(librarystore.ErrExecutingStoreFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (lib *Library) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		lib.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// beginTx starts a scoped unit of work for a multi-entity operation.
func (lib *Library) beginTx(ctx context.Context) (adapters.DBTransaction, error) {
	tx, err := lib.db.BeginTx(ctx)
	if err != nil {
		lib.logError(ctx, logMsgBeginTxFailed, err)

		return nil, errors.Join(librarystore.ErrBeginningTxFailed, err)
	}

	return tx, nil
}

// rollbackUnlessCommitted guarantees release of the transaction on all exit
// paths; it is a no-op once the transaction was committed.
func (lib *Library) rollbackUnlessCommitted(ctx context.Context, tx adapters.DBTransaction, committed *bool) {
	if *committed {
		return
	}

	if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
		lib.logWarn(ctx, logMsgRollbackTxFailed, logAttrError, rollbackErr.Error())
	}
}

// commitTx commits the transaction and marks it as committed.
func (lib *Library) commitTx(ctx context.Context, tx adapters.DBTransaction, committed *bool) error {
	if commitErr := tx.Commit(ctx); commitErr != nil {
		lib.logError(ctx, logMsgCommitTxFailed, commitErr)

		return errors.Join(librarystore.ErrCommittingTxFailed, commitErr)
	}

	*committed = true

	return nil
}

// scanBook reads one book row into a record.
func scanBook(rows adapters.DBRows) (librarystore.Book, error) {
	var book librarystore.Book
	var idString string
	var isbn sql.NullString

	scanErr := rows.Scan(&idString, &book.Title, &book.Author, &book.PublicationYear, &isbn, &book.Available)
	if scanErr != nil {
		return librarystore.Book{}, errors.Join(librarystore.ErrScanningDBRowFailed, scanErr)
	}

	id, parseErr := uuid.Parse(idString)
	if parseErr != nil {
		return librarystore.Book{}, errors.Join(librarystore.ErrScanningDBRowFailed, parseErr)
	}

	book.ID = id

	if isbn.Valid {
		book.ISBN = &isbn.String
	}

	return book, nil
}

// scanMember reads one member row into a record.
func scanMember(rows adapters.DBRows) (librarystore.Member, error) {
	var member librarystore.Member
	var idString string

	scanErr := rows.Scan(&idString, &member.Name, &member.Email, &member.Privileged, &member.Borrowed)
	if scanErr != nil {
		return librarystore.Member{}, errors.Join(librarystore.ErrScanningDBRowFailed, scanErr)
	}

	id, parseErr := uuid.Parse(idString)
	if parseErr != nil {
		return librarystore.Member{}, errors.Join(librarystore.ErrScanningDBRowFailed, parseErr)
	}

	member.ID = id

	return member, nil
}

// scanLoan reads one loan row into a record, decoding the status string into
// the closed LoanStatus enumeration.
func scanLoan(rows adapters.DBRows) (librarystore.Loan, error) {
	var loan librarystore.Loan
	var loanIDString, memberIDString, bookIDString string
	var returnDate sql.NullTime
	var fine sql.NullInt64
	var statusString string

	scanErr := rows.Scan(
		&loanIDString, &memberIDString, &bookIDString,
		&loan.LoanDate, &loan.DueDate, &returnDate, &fine, &statusString,
	)
	if scanErr != nil {
		return librarystore.Loan{}, errors.Join(librarystore.ErrScanningDBRowFailed, scanErr)
	}

	loanID, parseErr := uuid.Parse(loanIDString)
	if parseErr != nil {
		return librarystore.Loan{}, errors.Join(librarystore.ErrScanningDBRowFailed, parseErr)
	}

	memberID, parseErr := uuid.Parse(memberIDString)
	if parseErr != nil {
		return librarystore.Loan{}, errors.Join(librarystore.ErrScanningDBRowFailed, parseErr)
	}

	bookID, parseErr := uuid.Parse(bookIDString)
	if parseErr != nil {
		return librarystore.Loan{}, errors.Join(librarystore.ErrScanningDBRowFailed, parseErr)
	}

	status, statusErr := librarystore.ParseLoanStatus(statusString)
	if statusErr != nil {
		return librarystore.Loan{}, statusErr
	}

	loan.ID = loanID
	loan.MemberID = memberID
	loan.BookID = bookID
	loan.Status = status

	if returnDate.Valid {
		t := returnDate.Time
		loan.ReturnDate = &t
	}

	if fine.Valid {
		f := int(fine.Int64)
		loan.Fine = &f
	}

	return loan, nil
}
