// Package librarystore provides the core abstractions and types for the
// library-management backend.
//
// This package defines the record types (Book, Member, Loan), the closed
// LoanStatus enumeration with its explicit string mapping, the error
// taxonomy shared by all store implementations, and the dependency-free
// observability interfaces (Logger, ContextualLogger, MetricsCollector,
// TracingCollector).
//
// The cross-entity invariants the loan lifecycle engine enforces:
//   - a book is available if and only if no Open loan references it
//   - a member's borrowed count equals their loans in {Open, Overdue}
//   - a loan's return date is set if and only if its status is Returned
//
// Key types:
//   - Book, Member, Loan: the persisted records
//   - LoanStatus: Open, Returned, Overdue with exhaustive string mapping
//   - NewBook, NewMember: input records for single-entity creation
//
// Common usage pattern:
//
//	status, err := librarystore.ParseLoanStatus("returned")
//	if err != nil {
//		// unrecognized on-disk value, surface as a decode error
//	}
//
//	due, err := librarystore.DueDateFromUnix(dueTimestamp)
//	if err != nil {
//		// not convertible to a calendar date
//	}
package librarystore
