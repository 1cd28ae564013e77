package librarystore

import (
	"time"

	"github.com/google/uuid"
)

// Book is the persisted record for a single book.
//
// Available is true if and only if no loan in the Open state references the
// book. It is mutated exclusively by the loan lifecycle engine; single-entity
// updates never touch it.
type Book struct {
	ID              uuid.UUID `json:"book_id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	PublicationYear int       `json:"publication_year"`
	ISBN            *string   `json:"isbn"`
	Available       bool      `json:"availability_status"`
}

// Member is the persisted record for a library member.
//
// Borrowed counts the member's loans currently in the Open or Overdue state.
// It is non-negative at all times and mutated exclusively by the loan
// lifecycle engine.
type Member struct {
	ID         uuid.UUID `json:"member_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Privileged bool      `json:"privilege"`
	Borrowed   int       `json:"borrowed"`
}

// Loan is the persisted record for one loan of one book to one member.
//
// Loan references Book and Member by identity only, it does not own their
// lifecycle. ReturnDate is set if and only if Status is Returned. Fine is
// reserved for late-fee computation which is deliberately not implemented.
type Loan struct {
	ID         uuid.UUID  `json:"loan_id"`
	MemberID   uuid.UUID  `json:"member_id"`
	BookID     uuid.UUID  `json:"book_id"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	Fine       *int       `json:"fine"`
	Status     LoanStatus `json:"status"`
}

// NewBook carries the caller-writable fields for creating or updating a book.
type NewBook struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	PublicationYear int     `json:"publication_year"`
	ISBN            *string `json:"isbn"`
}

// NewMember carries the caller-writable fields for creating or updating a member.
type NewMember struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Privileged bool   `json:"privilege"`
}
