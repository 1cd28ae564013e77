package librarystore

import (
	"errors"
)

// Not-found errors: the referenced record does not exist. The API layer maps
// these to a "not found" response, distinct from precondition failures and
// internal errors.
var (
	ErrBookNotFound   = errors.New("book not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrLoanNotFound   = errors.New("loan not found")
)

// Precondition failures: the request is well-formed but the current state
// forbids the operation. Client-fault.
var (
	ErrBookNotAvailable    = errors.New("book is not available to loan")
	ErrInvalidMember       = errors.New("invalid member credentials")
	ErrLoanNotOpen         = errors.New("loan is not open")
	ErrInvalidTargetStatus = errors.New("loan can only be closed as returned or overdue")
	ErrMemberHasLoans      = errors.New("member still has borrowed books")
)

// Validation errors: malformed input. Client-fault.
var (
	ErrInvalidDueDate    = errors.New("cannot convert due timestamp to a date")
	ErrUnknownLoanStatus = errors.New("unrecognized loan status")
)

// ErrIntegrityViolation signals that a loan references a member which cannot
// be found. This is a fatal inconsistency between the loan and member
// records, not a recoverable client fault, and is logged loudly by the
// engine before the transaction is rolled back.
var ErrIntegrityViolation = errors.New("loan references a member that does not exist")

// Storage errors: any store mutation or transaction failure. Server-fault.
var (
	ErrNilDatabaseConnection  = errors.New("database connection must not be nil")
	ErrEmptyTableNameSupplied = errors.New("empty table name supplied")
	ErrBuildingQueryFailed    = errors.New("building the sql query failed")
	ErrQueryingStoreFailed    = errors.New("querying the store failed")
	ErrExecutingStoreFailed   = errors.New("executing the store mutation failed")
	ErrScanningDBRowFailed    = errors.New("scanning the database row failed")
	ErrBeginningTxFailed      = errors.New("beginning the transaction failed")
	ErrCommittingTxFailed     = errors.New("committing the transaction failed")
)

// IsNotFound reports whether err is one of the not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrLoanNotFound)
}

// IsClientFault reports whether err is a precondition or validation failure
// that the API layer should map to a "bad request" response.
func IsClientFault(err error) bool {
	return errors.Is(err, ErrBookNotAvailable) ||
		errors.Is(err, ErrInvalidMember) ||
		errors.Is(err, ErrLoanNotOpen) ||
		errors.Is(err, ErrInvalidTargetStatus) ||
		errors.Is(err, ErrMemberHasLoans) ||
		errors.Is(err, ErrInvalidDueDate) ||
		errors.Is(err, ErrUnknownLoanStatus)
}
