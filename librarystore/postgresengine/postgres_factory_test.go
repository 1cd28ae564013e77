package postgresengine_test

import (
	"os"
	"testing"

	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/assert"

	"github.com/librarium/library-backend-go/librarystore"
	"github.com/librarium/library-backend-go/librarystore/postgresengine"
	"github.com/librarium/library-backend-go/testutil/postgresengine/helper/postgreswrapper"
)

func Test_FactoryFunctions_ShouldFail_WithNilDatabaseConnection(t *testing.T) {
	testCases := []struct {
		name        string
		factoryFunc func() (*postgresengine.Library, error)
	}{
		{
			name: "NewLibraryFromPGXPool with nil",
			factoryFunc: func() (*postgresengine.Library, error) {
				return postgresengine.NewLibraryFromPGXPool(nil)
			},
		},
		{
			name: "NewLibraryFromSQLDB with nil",
			factoryFunc: func() (*postgresengine.Library, error) {
				return postgresengine.NewLibraryFromSQLDB(nil)
			},
		},
		{
			name: "NewLibraryFromSQLX with nil",
			factoryFunc: func() (*postgresengine.Library, error) {
				return postgresengine.NewLibraryFromSQLX(nil)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			lib, err := tc.factoryFunc()

			// assert
			assert.Nil(t, lib)
			assert.ErrorIs(t, err, librarystore.ErrNilDatabaseConnection)
		})
	}
}

func Test_FactoryFunctions_ShouldFail_WithEmptyTableName(t *testing.T) {
	testCases := []struct {
		name   string
		option postgresengine.Option
	}{
		{"empty books table name", postgresengine.WithBooksTableName("")},
		{"empty members table name", postgresengine.WithMembersTableName("")},
		{"empty loans table name", postgresengine.WithLoansTableName("")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := postgreswrapper.TryCreateLibraryWithOptions(t, tc.option)

			// assert
			assert.ErrorIs(t, err, librarystore.ErrEmptyTableNameSupplied)
		})
	}
}

func Test_FactoryFunctions_ShouldPanic_WithUnsupportedAdapterType(t *testing.T) {
	// Save the original env var
	originalAdapterType := os.Getenv("ADAPTER_TYPE")
	defer func() {
		if originalAdapterType == "" {
			err := os.Unsetenv("ADAPTER_TYPE")
			assert.NoError(t, err)
		} else {
			err := os.Setenv("ADAPTER_TYPE", originalAdapterType)
			assert.NoError(t, err)
		}
	}()

	// Set an unsupported adapter type
	err := os.Setenv("ADAPTER_TYPE", "unsupported")
	assert.NoError(t, err)

	assert.Panics(t, func() {
		createErr := postgreswrapper.TryCreateLibraryWithOptions(t)
		assert.NoError(t, createErr)
	})
}
