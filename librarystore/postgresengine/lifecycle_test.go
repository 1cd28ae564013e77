package postgresengine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/library-backend-go/librarystore"
	"github.com/librarium/library-backend-go/testutil/postgresengine/helper"
	"github.com/librarium/library-backend-go/testutil/postgresengine/helper/postgreswrapper"
)

func Test_OpenLoan_When_BookAndMemberExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)
	memberID := helper.GivenMember(t, ctxWithTimeout, lib)

	// act
	loanID, err := lib.OpenLoan(ctxWithTimeout, memberID, bookID, helper.DueInDays(14))

	// assert
	require.NoError(t, err)

	loan, err := lib.GetLoanByID(ctxWithTimeout, loanID)
	require.NoError(t, err)
	assert.Equal(t, memberID, loan.MemberID)
	assert.Equal(t, bookID, loan.BookID)
	assert.Equal(t, librarystore.LoanStatusOpen, loan.Status)
	assert.Equal(t, librarystore.Today(), loan.LoanDate)
	assert.Nil(t, loan.ReturnDate)
	assert.Nil(t, loan.Fine)

	book, err := lib.GetBookByID(ctxWithTimeout, bookID)
	require.NoError(t, err)
	assert.False(t, book.Available)

	member, err := lib.GetMemberByID(ctxWithTimeout, memberID)
	require.NoError(t, err)
	assert.Equal(t, 1, member.Borrowed)
}

func Test_OpenLoan_When_TheBookIsAlreadyLent(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)
	firstMemberID := helper.GivenMember(t, ctxWithTimeout, lib)
	secondMemberID := helper.GivenMember(t, ctxWithTimeout, lib)
	helper.GivenOpenLoan(t, ctxWithTimeout, lib, firstMemberID, bookID)

	// act
	_, err := lib.OpenLoan(ctxWithTimeout, secondMemberID, bookID, helper.DueInDays(14))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrBookNotAvailable)

	secondMember, getErr := lib.GetMemberByID(ctxWithTimeout, secondMemberID)
	require.NoError(t, getErr)
	assert.Equal(t, 0, secondMember.Borrowed, "failed open must not mutate the member")
	assert.Equal(t, 1, postgreswrapper.CountOpenLoansForBook(t, wrapper, bookID.String()))
}

func Test_OpenLoan_When_TheBookDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	memberID := helper.GivenMember(t, ctxWithTimeout, lib)

	// act
	_, err := lib.OpenLoan(ctxWithTimeout, memberID, helper.GivenUniqueID(t), helper.DueInDays(14))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrBookNotFound)
}

func Test_OpenLoan_When_TheMemberDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)

	// act
	_, err := lib.OpenLoan(ctxWithTimeout, helper.GivenUniqueID(t), bookID, helper.DueInDays(14))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrInvalidMember)

	book, getErr := lib.GetBookByID(ctxWithTimeout, bookID)
	require.NoError(t, getErr)
	assert.True(t, book.Available, "failed open must not mutate the book")
}

func Test_OpenLoan_When_TheDueTimestampIsInvalid(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)
	memberID := helper.GivenMember(t, ctxWithTimeout, lib)

	// act
	_, err := lib.OpenLoan(ctxWithTimeout, memberID, bookID, -1)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrInvalidDueDate)

	book, getErr := lib.GetBookByID(ctxWithTimeout, bookID)
	require.NoError(t, getErr)
	assert.True(t, book.Available, "failed open must not mutate the book")

	member, getErr := lib.GetMemberByID(ctxWithTimeout, memberID)
	require.NoError(t, getErr)
	assert.Equal(t, 0, member.Borrowed, "failed open must not mutate the member")
}

func Test_CloseLoan_When_TheLoanIsOpen(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)
	memberID := helper.GivenMember(t, ctxWithTimeout, lib)
	loanID := helper.GivenOpenLoan(t, ctxWithTimeout, lib, memberID, bookID)

	// act
	closed, err := lib.CloseLoan(ctxWithTimeout, loanID, librarystore.LoanStatusReturned)

	// assert
	require.NoError(t, err)
	assert.True(t, closed)

	loan, err := lib.GetLoanByID(ctxWithTimeout, loanID)
	require.NoError(t, err)
	assert.Equal(t, librarystore.LoanStatusReturned, loan.Status)
	require.NotNil(t, loan.ReturnDate)
	assert.Equal(t, librarystore.Today(), *loan.ReturnDate)

	book, err := lib.GetBookByID(ctxWithTimeout, bookID)
	require.NoError(t, err)
	assert.True(t, book.Available)

	member, err := lib.GetMemberByID(ctxWithTimeout, memberID)
	require.NoError(t, err)
	assert.Equal(t, 0, member.Borrowed)
}

func Test_CloseLoan_When_TheLoanIsClosedAsOverdue(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)
	memberID := helper.GivenMember(t, ctxWithTimeout, lib)
	loanID := helper.GivenOpenLoan(t, ctxWithTimeout, lib, memberID, bookID)

	// act
	closed, err := lib.CloseLoan(ctxWithTimeout, loanID, librarystore.LoanStatusOverdue)

	// assert
	require.NoError(t, err)
	assert.True(t, closed)

	loan, err := lib.GetLoanByID(ctxWithTimeout, loanID)
	require.NoError(t, err)
	assert.Equal(t, librarystore.LoanStatusOverdue, loan.Status)
	assert.Nil(t, loan.ReturnDate, "only a return sets the return date")
}

func Test_CloseLoan_When_TheLoanDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)

	// act
	_, err := lib.CloseLoan(ctxWithTimeout, helper.GivenUniqueID(t), librarystore.LoanStatusReturned)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrLoanNotFound)
}

func Test_CloseLoan_When_TheLoanWasAlreadyClosed(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)
	memberID := helper.GivenMember(t, ctxWithTimeout, lib)
	loanID := helper.GivenOpenLoan(t, ctxWithTimeout, lib, memberID, bookID)

	closed, err := lib.CloseLoan(ctxWithTimeout, loanID, librarystore.LoanStatusReturned)
	require.NoError(t, err)
	require.True(t, closed)

	// act
	_, err = lib.CloseLoan(ctxWithTimeout, loanID, librarystore.LoanStatusReturned)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrLoanNotOpen)

	member, getErr := lib.GetMemberByID(ctxWithTimeout, memberID)
	require.NoError(t, getErr)
	assert.Equal(t, 0, member.Borrowed, "a second close must not decrement the borrowed count again")
}

func Test_CloseLoan_When_TheTargetStatusIsOpen(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)
	memberID := helper.GivenMember(t, ctxWithTimeout, lib)
	loanID := helper.GivenOpenLoan(t, ctxWithTimeout, lib, memberID, bookID)

	// act
	_, err := lib.CloseLoan(ctxWithTimeout, loanID, librarystore.LoanStatusOpen)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrInvalidTargetStatus)
}

func Test_OpenLoan_When_ConcurrentCallsCompeteForTheSameBook(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)

	const numCompetingMembers = 10

	var wg sync.WaitGroup
	results := make(chan error, numCompetingMembers)

	for i := 0; i < numCompetingMembers; i++ {
		memberID := helper.GivenMember(t, ctxWithTimeout, lib)

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, openErr := lib.OpenLoan(ctxWithTimeout, memberID, bookID, helper.DueInDays(14))
			results <- openErr
		}()
	}

	// act
	wg.Wait()
	close(results)

	// assert
	succeeded := 0
	rejected := 0
	for openErr := range results {
		switch {
		case openErr == nil:
			succeeded++
		default:
			assert.ErrorIs(t, openErr, librarystore.ErrBookNotAvailable)
			rejected++
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one competing open must succeed")
	assert.Equal(t, numCompetingMembers-1, rejected)
	assert.Equal(t, 1, postgreswrapper.CountOpenLoansForBook(t, wrapper, bookID.String()))
}
