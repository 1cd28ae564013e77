package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/library-backend-go/librarystore"
	"github.com/librarium/library-backend-go/testutil/postgresengine/helper"
	"github.com/librarium/library-backend-go/testutil/postgresengine/helper/postgreswrapper"
)

func Test_CreateBook_And_GetBookByID(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	isbn := "978-0132350884"

	// act
	bookID, err := lib.CreateBook(ctxWithTimeout, librarystore.NewBook{
		Title:           "Clean Code",
		Author:          "Robert C. Martin",
		PublicationYear: 2008,
		ISBN:            &isbn,
	})

	// assert
	require.NoError(t, err)

	book, err := lib.GetBookByID(ctxWithTimeout, bookID)
	require.NoError(t, err)
	assert.Equal(t, bookID, book.ID)
	assert.Equal(t, "Clean Code", book.Title)
	assert.Equal(t, "Robert C. Martin", book.Author)
	assert.Equal(t, 2008, book.PublicationYear)
	require.NotNil(t, book.ISBN)
	assert.Equal(t, isbn, *book.ISBN)
	assert.True(t, book.Available, "new books start out available")
}

func Test_CreateBook_When_TheISBNIsOmitted(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)

	// act
	bookID, err := lib.CreateBook(ctxWithTimeout, librarystore.NewBook{
		Title:           "The Mythical Man-Month",
		Author:          "Frederick P. Brooks Jr.",
		PublicationYear: 1975,
	})

	// assert
	require.NoError(t, err)

	book, err := lib.GetBookByID(ctxWithTimeout, bookID)
	require.NoError(t, err)
	assert.Nil(t, book.ISBN)
}

func Test_GetBookByID_When_TheBookDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)

	// act
	_, err := lib.GetBookByID(ctxWithTimeout, helper.GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrBookNotFound)
}

func Test_UpdateBook_DoesNotTouchAvailability(t *testing.T) {
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
	helper.GivenOpenLoan(t, ctxWithTimeout, lib, memberID, bookID)

	// act
	updated, err := lib.UpdateBook(ctxWithTimeout, bookID, librarystore.NewBook{
		Title:           "The Go Programming Language, 2nd Edition",
		Author:          "Alan A. A. Donovan",
		PublicationYear: 2025,
	})

	// assert
	require.NoError(t, err)
	assert.True(t, updated)

	book, err := lib.GetBookByID(ctxWithTimeout, bookID)
	require.NoError(t, err)
	assert.Equal(t, "The Go Programming Language, 2nd Edition", book.Title)
	assert.False(t, book.Available, "single-entity updates must not touch the availability flag")
}

func Test_UpdateBook_When_TheBookDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)

	// act
	updated, err := lib.UpdateBook(ctxWithTimeout, helper.GivenUniqueID(t), librarystore.NewBook{
		Title:           "Nonexistent",
		Author:          "Nobody",
		PublicationYear: 2000,
	})

	// assert
	assert.NoError(t, err)
	assert.False(t, updated)
}

func Test_DeleteBook_When_TheBookIsAvailable(t *testing.T) {
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
	deleted, err := lib.DeleteBook(ctxWithTimeout, bookID)

	// assert
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = lib.GetBookByID(ctxWithTimeout, bookID)
	assert.ErrorIs(t, err, librarystore.ErrBookNotFound)
}

func Test_DeleteBook_When_TheBookIsLentOut(t *testing.T) {
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
	helper.GivenOpenLoan(t, ctxWithTimeout, lib, memberID, bookID)

	// act
	_, err := lib.DeleteBook(ctxWithTimeout, bookID)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrBookNotAvailable)

	_, err = lib.GetBookByID(ctxWithTimeout, bookID)
	assert.NoError(t, err, "the lent book must survive the delete attempt")
}

func Test_CreateMember_And_GetMemberByID(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)

	// act
	memberID, err := lib.CreateMember(ctxWithTimeout, librarystore.NewMember{
		Name:       "Grace Hopper",
		Email:      "grace@example.com",
		Privileged: true,
	})

	// assert
	require.NoError(t, err)

	member, err := lib.GetMemberByID(ctxWithTimeout, memberID)
	require.NoError(t, err)
	assert.Equal(t, memberID, member.ID)
	assert.Equal(t, "Grace Hopper", member.Name)
	assert.Equal(t, "grace@example.com", member.Email)
	assert.True(t, member.Privileged)
	assert.Equal(t, 0, member.Borrowed, "new members start with no borrowed books")
}

func Test_GetMemberByID_When_TheMemberDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)

	// act
	_, err := lib.GetMemberByID(ctxWithTimeout, helper.GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrMemberNotFound)
}

func Test_UpdateMember_DoesNotTouchTheBorrowedCount(t *testing.T) {
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
	helper.GivenOpenLoan(t, ctxWithTimeout, lib, memberID, bookID)

	// act
	updated, err := lib.UpdateMember(ctxWithTimeout, memberID, librarystore.NewMember{
		Name:       "Ada King, Countess of Lovelace",
		Email:      "ada@example.com",
		Privileged: true,
	})

	// assert
	require.NoError(t, err)
	assert.True(t, updated)

	member, err := lib.GetMemberByID(ctxWithTimeout, memberID)
	require.NoError(t, err)
	assert.Equal(t, "Ada King, Countess of Lovelace", member.Name)
	assert.True(t, member.Privileged)
	assert.Equal(t, 1, member.Borrowed, "single-entity updates must not touch the borrowed count")
}

func Test_DeleteMember_When_TheMemberHasNoOpenLoans(t *testing.T) {
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
	deleted, err := lib.DeleteMember(ctxWithTimeout, memberID)

	// assert
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = lib.GetMemberByID(ctxWithTimeout, memberID)
	assert.ErrorIs(t, err, librarystore.ErrMemberNotFound)
}

func Test_DeleteMember_When_TheMemberStillHasAnOpenLoan(t *testing.T) {
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
	helper.GivenOpenLoan(t, ctxWithTimeout, lib, memberID, bookID)

	// act
	_, err := lib.DeleteMember(ctxWithTimeout, memberID)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrMemberHasLoans)

	_, err = lib.GetMemberByID(ctxWithTimeout, memberID)
	assert.NoError(t, err, "the borrowing member must survive the delete attempt")
}

func Test_GetLoanByID_When_TheLoanDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)

	// act
	_, err := lib.GetLoanByID(ctxWithTimeout, helper.GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrLoanNotFound)
}
