package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/librarium/library-backend-go/librarystore"
	"github.com/librarium/library-backend-go/librarystore/postgresengine/internal/adapters"
)

// CreateBook inserts a new book record. New books start out available.
// Returns the identity of the created book.
func (lib *Library) CreateBook(ctx context.Context, newBook librarystore.NewBook) (uuid.UUID, error) {
	id := uuid.New()

	insertStmt := lib.dialect().
		Insert(lib.booksTableName).
		Rows(goqu.Record{
			colBookID:          id.String(),
			colTitle:           newBook.Title,
			colAuthor:          newBook.Author,
			colPublicationYear: newBook.PublicationYear,
			colISBN:            nullableString(newBook.ISBN),
			colAvailability:    true,
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return uuid.Nil, errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	if _, _, execErr := lib.executeExec(ctx, lib.db, sqlQuery, opCreateBook); execErr != nil {
		return uuid.Nil, execErr
	}

	lib.logOperation(ctx, opCreateBook, logAttrBookID, id.String())

	return id, nil
}

// GetBookByID loads a single book record.
// Returns ErrBookNotFound if no record matches the identity.
func (lib *Library) GetBookByID(ctx context.Context, id uuid.UUID) (librarystore.Book, error) {
	return lib.fetchBook(ctx, lib.db, id, false, opGetBook)
}

// UpdateBook replaces the caller-writable fields of a book
// (title, author, publication year, ISBN). The availability flag is owned
// by the loan lifecycle engine and is never touched here.
// Returns true if a record matched the identity.
func (lib *Library) UpdateBook(ctx context.Context, id uuid.UUID, fields librarystore.NewBook) (bool, error) {
	updateStmt := lib.dialect().
		Update(lib.booksTableName).
		Set(goqu.Record{
			colTitle:           fields.Title,
			colAuthor:          fields.Author,
			colPublicationYear: fields.PublicationYear,
			colISBN:            nullableString(fields.ISBN),
		}).
		Where(goqu.Ex{colBookID: id.String()})

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return false, errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, _, execErr := lib.executeExec(ctx, lib.db, sqlQuery, opUpdateBook)
	if execErr != nil {
		return false, execErr
	}

	return rowsAffected > 0, nil
}

// DeleteBook removes a book record. A book with an open loan cannot be
// deleted: the check and the delete run in one transaction so a concurrent
// OpenLoan cannot slip in between.
// Returns ErrBookNotFound if no record matches, ErrBookNotAvailable if the
// book is currently lent out.
func (lib *Library) DeleteBook(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := lib.beginTx(ctx)
	if err != nil {
		return false, err
	}

	committed := false
	defer lib.rollbackUnlessCommitted(ctx, tx, &committed)

	book, fetchErr := lib.fetchBook(ctx, tx, id, true, opDeleteBook)
	if fetchErr != nil {
		return false, fetchErr
	}

	if !book.Available {
		return false, librarystore.ErrBookNotAvailable
	}

	deleteStmt := lib.dialect().
		Delete(lib.booksTableName).
		Where(goqu.Ex{colBookID: id.String()})

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return false, errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	if _, _, execErr := lib.executeExec(ctx, tx, sqlQuery, opDeleteBook); execErr != nil {
		return false, execErr
	}

	if commitErr := lib.commitTx(ctx, tx, &committed); commitErr != nil {
		return false, commitErr
	}

	lib.logOperation(ctx, opDeleteBook, logAttrBookID, id.String())

	return true, nil
}

// fetchBook loads one book through the given executor, optionally locking
// the row for the duration of the surrounding transaction.
func (lib *Library) fetchBook(
	ctx context.Context,
	db adapters.DBExecutor,
	id uuid.UUID,
	forUpdate bool,
	action string,
) (librarystore.Book, error) {

	selectStmt := lib.dialect().
		From(lib.booksTableName).
		Select(colBookID, colTitle, colAuthor, colPublicationYear, colISBN, colAvailability).
		Where(goqu.Ex{colBookID: id.String()})

	if forUpdate {
		selectStmt = selectStmt.ForUpdate(exp.Wait)
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return librarystore.Book{}, errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := lib.executeQuery(ctx, db, sqlQuery, action)
	if queryErr != nil {
		return librarystore.Book{}, queryErr
	}
	defer lib.closeRows(ctx, rows)

	if !rows.Next() {
		return librarystore.Book{}, librarystore.ErrBookNotFound
	}

	book, scanErr := scanBook(rows)
	if scanErr != nil {
		lib.logError(ctx, logMsgScanRowFailed, scanErr)

		return librarystore.Book{}, scanErr
	}

	return book, nil
}

// nullableString maps an optional field to its SQL value.
func nullableString(value *string) any {
	if value == nil {
		return nil
	}

	return *value
}
