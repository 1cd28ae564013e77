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

// GetLoanByID loads a single loan record including its status.
// Returns ErrLoanNotFound if no record matches the identity.
//
// Loans are only ever created by OpenLoan and mutated by CloseLoan; there is
// no single-entity create, update, or delete for them.
func (lib *Library) GetLoanByID(ctx context.Context, id uuid.UUID) (librarystore.Loan, error) {
	return lib.fetchLoan(ctx, lib.db, id, false, opGetLoan)
}

// fetchLoan loads one loan through the given executor, optionally locking
// the row for the duration of the surrounding transaction.
func (lib *Library) fetchLoan(
	ctx context.Context,
	db adapters.DBExecutor,
	id uuid.UUID,
	forUpdate bool,
	action string,
) (librarystore.Loan, error) {

	selectStmt := lib.dialect().
		From(lib.loansTableName).
		Select(colLoanID, colMemberID, colBookID, colLoanDate, colDueDate, colReturnDate, colFine, colStatus).
		Where(goqu.Ex{colLoanID: id.String()})

	if forUpdate {
		selectStmt = selectStmt.ForUpdate(exp.Wait)
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return librarystore.Loan{}, errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := lib.executeQuery(ctx, db, sqlQuery, action)
	if queryErr != nil {
		return librarystore.Loan{}, queryErr
	}
	defer lib.closeRows(ctx, rows)

	if !rows.Next() {
		return librarystore.Loan{}, librarystore.ErrLoanNotFound
	}

	loan, scanErr := scanLoan(rows)
	if scanErr != nil {
		lib.logError(ctx, logMsgScanRowFailed, scanErr)

		return librarystore.Loan{}, scanErr
	}

	return loan, nil
}
