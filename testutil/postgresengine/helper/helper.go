package helper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/librarium/library-backend-go/librarystore"
	"github.com/librarium/library-backend-go/librarystore/postgresengine"
)

// GivenUniqueID generates a unique UUID for testing.
func GivenUniqueID(_ testing.TB) uuid.UUID {
	return uuid.New()
}

// DueInDays returns a unix timestamp the given number of days from now.
func DueInDays(days int) int64 {
	return time.Now().AddDate(0, 0, days).Unix()
}

// GivenBook creates a book with fixture data and returns its ID.
func GivenBook(t testing.TB, ctx context.Context, lib *postgresengine.Library) uuid.UUID {
	isbn := "978-0134190440"
	bookID, err := lib.CreateBook(ctx, librarystore.NewBook{
		Title:           "The Go Programming Language",
		Author:          "Alan A. A. Donovan",
		PublicationYear: 2015,
		ISBN:            &isbn,
	})
	assert.NoError(t, err, "error in arranging test data")

	return bookID
}

// GivenMember creates a member with fixture data and returns its ID.
func GivenMember(t testing.TB, ctx context.Context, lib *postgresengine.Library) uuid.UUID {
	memberID, err := lib.CreateMember(ctx, librarystore.NewMember{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
	})
	assert.NoError(t, err, "error in arranging test data")

	return memberID
}

// GivenOpenLoan opens a loan for the given member and book and returns the loan ID.
func GivenOpenLoan(
	t testing.TB,
	ctx context.Context,
	lib *postgresengine.Library,
	memberID uuid.UUID,
	bookID uuid.UUID,
) uuid.UUID {

	loanID, err := lib.OpenLoan(ctx, memberID, bookID, DueInDays(14))
	assert.NoError(t, err, "error in arranging test data")

	return loanID
}
