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

// CreateMember inserts a new member record with a borrowed count of zero.
// Returns the identity of the created member.
func (lib *Library) CreateMember(ctx context.Context, newMember librarystore.NewMember) (uuid.UUID, error) {
	id := uuid.New()

	insertStmt := lib.dialect().
		Insert(lib.membersTableName).
		Rows(goqu.Record{
			colMemberID:  id.String(),
			colName:      newMember.Name,
			colEmail:     newMember.Email,
			colPrivilege: newMember.Privileged,
			colBorrowed:  0,
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return uuid.Nil, errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	if _, _, execErr := lib.executeExec(ctx, lib.db, sqlQuery, opCreateMember); execErr != nil {
		return uuid.Nil, execErr
	}

	lib.logOperation(ctx, opCreateMember, logAttrMemberID, id.String())

	return id, nil
}

// GetMemberByID loads a single member record.
// Returns ErrMemberNotFound if no record matches the identity.
func (lib *Library) GetMemberByID(ctx context.Context, id uuid.UUID) (librarystore.Member, error) {
	return lib.fetchMember(ctx, lib.db, id, false, opGetMember)
}

// UpdateMember replaces the caller-writable fields of a member
// (name, email, privilege). The borrowed count is owned by the loan
// lifecycle engine and is never touched here.
// Returns true if a record matched the identity.
func (lib *Library) UpdateMember(ctx context.Context, id uuid.UUID, fields librarystore.NewMember) (bool, error) {
	updateStmt := lib.dialect().
		Update(lib.membersTableName).
		Set(goqu.Record{
			colName:      fields.Name,
			colEmail:     fields.Email,
			colPrivilege: fields.Privileged,
		}).
		Where(goqu.Ex{colMemberID: id.String()})

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return false, errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, _, execErr := lib.executeExec(ctx, lib.db, sqlQuery, opUpdateMember)
	if execErr != nil {
		return false, execErr
	}

	return rowsAffected > 0, nil
}

// DeleteMember removes a member record. A member still holding borrowed
// books cannot be deleted: the check and the delete run in one transaction.
// Returns ErrMemberNotFound if no record matches, ErrMemberHasLoans if the
// member's borrowed count is above zero.
func (lib *Library) DeleteMember(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := lib.beginTx(ctx)
	if err != nil {
		return false, err
	}

	committed := false
	defer lib.rollbackUnlessCommitted(ctx, tx, &committed)

	member, fetchErr := lib.fetchMember(ctx, tx, id, true, opDeleteMember)
	if fetchErr != nil {
		return false, fetchErr
	}

	if member.Borrowed > 0 {
		return false, librarystore.ErrMemberHasLoans
	}

	deleteStmt := lib.dialect().
		Delete(lib.membersTableName).
		Where(goqu.Ex{colMemberID: id.String()})

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return false, errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	if _, _, execErr := lib.executeExec(ctx, tx, sqlQuery, opDeleteMember); execErr != nil {
		return false, execErr
	}

	if commitErr := lib.commitTx(ctx, tx, &committed); commitErr != nil {
		return false, commitErr
	}

	lib.logOperation(ctx, opDeleteMember, logAttrMemberID, id.String())

	return true, nil
}

// fetchMember loads one member through the given executor, optionally
// locking the row for the duration of the surrounding transaction.
func (lib *Library) fetchMember(
	ctx context.Context,
	db adapters.DBExecutor,
	id uuid.UUID,
	forUpdate bool,
	action string,
) (librarystore.Member, error) {

	selectStmt := lib.dialect().
		From(lib.membersTableName).
		Select(colMemberID, colName, colEmail, colPrivilege, colBorrowed).
		Where(goqu.Ex{colMemberID: id.String()})

	if forUpdate {
		selectStmt = selectStmt.ForUpdate(exp.Wait)
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return librarystore.Member{}, errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := lib.executeQuery(ctx, db, sqlQuery, action)
	if queryErr != nil {
		return librarystore.Member{}, queryErr
	}
	defer lib.closeRows(ctx, rows)

	if !rows.Next() {
		return librarystore.Member{}, librarystore.ErrMemberNotFound
	}

	member, scanErr := scanMember(rows)
	if scanErr != nil {
		lib.logError(ctx, logMsgScanRowFailed, scanErr)

		return librarystore.Member{}, scanErr
	}

	return member, nil
}
