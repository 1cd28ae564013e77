package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/librarium/library-backend-go/librarystore"
	"github.com/librarium/library-backend-go/librarystore/postgresengine/internal/adapters"
)

// OpenLoan lends a book to a member. It is the only way a loan record comes
// into existence.
//
// Preconditions, checked in order: the book must exist, the book must be
// available, the member must exist, and the due timestamp must convert to a
// calendar date. On success the book is marked unavailable, the member's
// borrowed count is incremented, and a new loan is inserted with status Open
// and loan date = today.
//
// All reads and writes run in one transaction with the book and member rows
// locked, so concurrent calls for the same book serialize: at most one
// transitions the book from available to unavailable, the others observe
// ErrBookNotAvailable.
func (lib *Library) OpenLoan(ctx context.Context, memberID, bookID uuid.UUID, dueTimestamp int64) (uuid.UUID, error) {
	start := time.Now()
	ctx, span := lib.startTraceSpan(ctx, opOpenLoan, map[string]string{
		logAttrBookID:   bookID.String(),
		logAttrMemberID: memberID.String(),
	})

	loanID, err := lib.openLoan(ctx, memberID, bookID, dueTimestamp)
	duration := time.Since(start)

	if err != nil {
		lib.finishTraceSpan(span, statusError)
		lib.recordDurationMetrics(ctx, opOpenLoan, statusError, duration)
		lib.classifyFailureMetrics(ctx, opOpenLoan, err)

		return uuid.Nil, err
	}

	lib.finishTraceSpan(span, statusSuccess)
	lib.recordDurationMetrics(ctx, opOpenLoan, statusSuccess, duration)
	lib.logOperation(ctx, opOpenLoan,
		logAttrLoanID, loanID.String(),
		logAttrBookID, bookID.String(),
		logAttrMemberID, memberID.String(),
		logAttrDurationMS, lib.toMilliseconds(duration))

	return loanID, nil
}

func (lib *Library) openLoan(ctx context.Context, memberID, bookID uuid.UUID, dueTimestamp int64) (uuid.UUID, error) {
	tx, txErr := lib.beginTx(ctx)
	if txErr != nil {
		return uuid.Nil, txErr
	}

	committed := false
	defer lib.rollbackUnlessCommitted(ctx, tx, &committed)

	book, bookErr := lib.fetchBook(ctx, tx, bookID, true, opOpenLoan)
	if bookErr != nil {
		return uuid.Nil, bookErr
	}

	if !book.Available {
		return uuid.Nil, librarystore.ErrBookNotAvailable
	}

	member, memberErr := lib.fetchMember(ctx, tx, memberID, true, opOpenLoan)
	if memberErr != nil {
		if errors.Is(memberErr, librarystore.ErrMemberNotFound) {
			return uuid.Nil, librarystore.ErrInvalidMember
		}

		return uuid.Nil, memberErr
	}

	dueDate, dueErr := librarystore.DueDateFromUnix(dueTimestamp)
	if dueErr != nil {
		return uuid.Nil, dueErr
	}

	if updateErr := lib.updateBookAvailability(ctx, tx, book.ID, false, opOpenLoan); updateErr != nil {
		return uuid.Nil, updateErr
	}

	if updateErr := lib.updateMemberBorrowed(ctx, tx, member.ID, member.Borrowed+1, opOpenLoan); updateErr != nil {
		return uuid.Nil, updateErr
	}

	loanID := uuid.New()

	if insertErr := lib.insertLoan(ctx, tx, loanID, memberID, bookID, librarystore.Today(), dueDate); insertErr != nil {
		return uuid.Nil, insertErr
	}

	if commitErr := lib.commitTx(ctx, tx, &committed); commitErr != nil {
		return uuid.Nil, commitErr
	}

	return loanID, nil
}

// CloseLoan transitions an Open loan to Returned or Overdue.
//
// Preconditions: the target status must be Returned or Overdue, the loan
// must exist, and the loan must currently be Open. Closing an already-closed
// loan is rejected with ErrLoanNotOpen; without that check a second close
// would decrement the member's borrowed count twice.
//
// On success the loan's status is updated (with return date = today when
// Returned), the book becomes available again, and the member's borrowed
// count is decremented, floored at zero. A loan whose member cannot be
// resolved is a fatal inconsistency: it is logged at error level and
// surfaced as ErrIntegrityViolation with the transaction rolled back.
//
// Returns true when a matching loan was found and closed.
func (lib *Library) CloseLoan(ctx context.Context, loanID uuid.UUID, newStatus librarystore.LoanStatus) (bool, error) {
	start := time.Now()
	ctx, span := lib.startTraceSpan(ctx, opCloseLoan, map[string]string{
		logAttrLoanID: loanID.String(),
		logAttrStatus: newStatus.String(),
	})

	err := lib.closeLoan(ctx, loanID, newStatus)
	duration := time.Since(start)

	if err != nil {
		lib.finishTraceSpan(span, statusError)
		lib.recordDurationMetrics(ctx, opCloseLoan, statusError, duration)
		lib.classifyFailureMetrics(ctx, opCloseLoan, err)

		return false, err
	}

	lib.finishTraceSpan(span, statusSuccess)
	lib.recordDurationMetrics(ctx, opCloseLoan, statusSuccess, duration)
	lib.logOperation(ctx, opCloseLoan,
		logAttrLoanID, loanID.String(),
		logAttrStatus, newStatus.String(),
		logAttrDurationMS, lib.toMilliseconds(duration))

	return true, nil
}

func (lib *Library) closeLoan(ctx context.Context, loanID uuid.UUID, newStatus librarystore.LoanStatus) error {
	if !newStatus.IsTerminal() {
		return librarystore.ErrInvalidTargetStatus
	}

	tx, txErr := lib.beginTx(ctx)
	if txErr != nil {
		return txErr
	}

	committed := false
	defer lib.rollbackUnlessCommitted(ctx, tx, &committed)

	loan, loanErr := lib.fetchLoan(ctx, tx, loanID, true, opCloseLoan)
	if loanErr != nil {
		return loanErr
	}

	if loan.Status != librarystore.LoanStatusOpen {
		return librarystore.ErrLoanNotOpen
	}

	var returnDate *time.Time
	if newStatus == librarystore.LoanStatusReturned {
		today := librarystore.Today()
		returnDate = &today
	}

	if updateErr := lib.updateLoanClosed(ctx, tx, loan.ID, newStatus, returnDate); updateErr != nil {
		return updateErr
	}

	if updateErr := lib.updateBookAvailability(ctx, tx, loan.BookID, true, opCloseLoan); updateErr != nil {
		return updateErr
	}

	member, memberErr := lib.fetchMember(ctx, tx, loan.MemberID, true, opCloseLoan)
	if memberErr != nil {
		if errors.Is(memberErr, librarystore.ErrMemberNotFound) {
			lib.logError(ctx, logMsgIntegrityViolation, librarystore.ErrIntegrityViolation,
				logAttrLoanID, loan.ID.String(),
				logAttrMemberID, loan.MemberID.String())

			return librarystore.ErrIntegrityViolation
		}

		return memberErr
	}

	borrowed := member.Borrowed
	if borrowed > 0 {
		borrowed--
	}

	if updateErr := lib.updateMemberBorrowed(ctx, tx, member.ID, borrowed, opCloseLoan); updateErr != nil {
		return updateErr
	}

	// TODO: late-fee computation for overdue returns would hook in here (fine column is reserved).

	return lib.commitTx(ctx, tx, &committed)
}

// classifyFailureMetrics separates client-fault rejections from real errors
// so precondition failures do not pollute the error rate.
func (lib *Library) classifyFailureMetrics(ctx context.Context, operation string, err error) {
	if librarystore.IsClientFault(err) || librarystore.IsNotFound(err) {
		lib.recordPreconditionFailure(ctx, operation, err.Error())
		return
	}

	lib.recordErrorMetrics(ctx, operation, errorTypeOf(err))
}

// errorTypeOf maps a storage failure to a coarse metric label.
func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, librarystore.ErrIntegrityViolation):
		return "integrity_violation"
	case errors.Is(err, librarystore.ErrBeginningTxFailed), errors.Is(err, librarystore.ErrCommittingTxFailed):
		return "transaction"
	case errors.Is(err, librarystore.ErrQueryingStoreFailed), errors.Is(err, librarystore.ErrScanningDBRowFailed):
		return "query"
	case errors.Is(err, librarystore.ErrExecutingStoreFailed):
		return "exec"
	default:
		return "other"
	}
}

// updateBookAvailability flips the availability flag for a book within the
// transaction. Only the lifecycle engine (and the guarded delete) writes it.
func (lib *Library) updateBookAvailability(
	ctx context.Context,
	tx adapters.DBTransaction,
	bookID uuid.UUID,
	available bool,
	action string,
) error {

	updateStmt := lib.dialect().
		Update(lib.booksTableName).
		Set(goqu.Record{colAvailability: available}).
		Where(goqu.Ex{colBookID: bookID.String()})

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	_, _, execErr := lib.executeExec(ctx, tx, sqlQuery, action)

	return execErr
}

// updateMemberBorrowed sets the member's borrowed count within the
// transaction. Callers are responsible for the floor-at-zero rule.
func (lib *Library) updateMemberBorrowed(
	ctx context.Context,
	tx adapters.DBTransaction,
	memberID uuid.UUID,
	borrowed int,
	action string,
) error {

	updateStmt := lib.dialect().
		Update(lib.membersTableName).
		Set(goqu.Record{colBorrowed: borrowed}).
		Where(goqu.Ex{colMemberID: memberID.String()})

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	_, _, execErr := lib.executeExec(ctx, tx, sqlQuery, action)

	return execErr
}

// insertLoan appends the new loan row within the transaction.
func (lib *Library) insertLoan(
	ctx context.Context,
	tx adapters.DBTransaction,
	loanID, memberID, bookID uuid.UUID,
	loanDate, dueDate time.Time,
) error {

	insertStmt := lib.dialect().
		Insert(lib.loansTableName).
		Rows(goqu.Record{
			colLoanID:     loanID.String(),
			colMemberID:   memberID.String(),
			colBookID:     bookID.String(),
			colLoanDate:   goqu.L(castDate, loanDate.Format(dateFormat)),
			colDueDate:    goqu.L(castDate, dueDate.Format(dateFormat)),
			colReturnDate: nil,
			colFine:       nil,
			colStatus:     librarystore.LoanStatusOpen.String(),
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	_, _, execErr := lib.executeExec(ctx, tx, sqlQuery, opOpenLoan)

	return execErr
}

// updateLoanClosed writes the terminal status, and the return date when the
// loan is closed as Returned, within the transaction.
func (lib *Library) updateLoanClosed(
	ctx context.Context,
	tx adapters.DBTransaction,
	loanID uuid.UUID,
	newStatus librarystore.LoanStatus,
	returnDate *time.Time,
) error {

	record := goqu.Record{colStatus: newStatus.String()}
	if returnDate != nil {
		record[colReturnDate] = goqu.L(castDate, returnDate.Format(dateFormat))
	}

	updateStmt := lib.dialect().
		Update(lib.loansTableName).
		Set(record).
		Where(goqu.Ex{colLoanID: loanID.String()})

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		lib.logError(ctx, logMsgBuildQueryFailed, toSQLErr)

		return errors.Join(librarystore.ErrBuildingQueryFailed, toSQLErr)
	}

	_, _, execErr := lib.executeExec(ctx, tx, sqlQuery, opCloseLoan)

	return execErr
}
