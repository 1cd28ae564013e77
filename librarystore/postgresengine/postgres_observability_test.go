package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/library-backend-go/librarystore"
	"github.com/librarium/library-backend-go/librarystore/oteladapters"
	"github.com/librarium/library-backend-go/librarystore/postgresengine"
	"github.com/librarium/library-backend-go/testutil/postgresengine/helper"
	"github.com/librarium/library-backend-go/testutil/postgresengine/helper/postgreswrapper"
)

func Test_OpenLoan_RecordsObservabilitySignals(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logSpy := helper.NewLogHandlerSpy(false)
	metricsSpy := helper.NewMetricsCollectorSpy(true)
	tracingSpy := helper.NewTracingCollectorSpy(true)

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t,
		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLoggerWithHandler("test", logSpy)),
		postgresengine.WithMetrics(metricsSpy),
		postgresengine.WithTracing(tracingSpy),
	)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)
	memberID := helper.GivenMember(t, ctxWithTimeout, lib)

	// act
	_, err := lib.OpenLoan(ctxWithTimeout, memberID, bookID, helper.DueInDays(14))

	// assert
	require.NoError(t, err)

	assert.True(t,
		metricsSpy.HasDurationRecordForMetric("librarystore_operation_duration_seconds").
			WithOperation("open_loan").
			WithStatus("success").
			Assert(),
		"a successful open must record its duration")

	assert.True(t,
		tracingSpy.HasSpanRecordForName("librarystore.open_loan").
			WithStatus("success").
			Assert(),
		"a successful open must finish its span with success")

	assert.True(t,
		logSpy.HasInfoLogWithMessage("librarystore operation: open_loan").
			WithDurationMS().
			Assert(),
		"a successful open must log the operation with its duration")
}

func Test_OpenLoan_When_Rejected_CountsAPreconditionFailure(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metricsSpy := helper.NewMetricsCollectorSpy(true)

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t,
		postgresengine.WithMetrics(metricsSpy),
	)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)
	firstMemberID := helper.GivenMember(t, ctxWithTimeout, lib)
	secondMemberID := helper.GivenMember(t, ctxWithTimeout, lib)
	helper.GivenOpenLoan(t, ctxWithTimeout, lib, firstMemberID, bookID)
	metricsSpy.Reset()

	// act
	_, err := lib.OpenLoan(ctxWithTimeout, secondMemberID, bookID, helper.DueInDays(14))

	// assert
	require.ErrorIs(t, err, librarystore.ErrBookNotAvailable)

	assert.True(t,
		metricsSpy.HasCounterRecordForMetric("librarystore_precondition_failures_total").
			WithOperation("open_loan").
			WithLabel("reason", librarystore.ErrBookNotAvailable.Error()).
			Assert(),
		"a rejected open must count as a precondition failure, not an error")

	assert.Equal(t, 0, metricsSpy.CountCounterRecordsForMetric("librarystore_errors_total"),
		"a rejected open must not pollute the error rate")
}

func Test_CloseLoan_When_TheMemberIsMissing_LogsTheIntegrityViolation(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logSpy := helper.NewLogHandlerSpy(false)

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t,
		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLoggerWithHandler("test", logSpy)),
	)
	defer wrapper.Close()
	lib := wrapper.GetLibrary()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	bookID := helper.GivenBook(t, ctxWithTimeout, lib)
	memberID := helper.GivenMember(t, ctxWithTimeout, lib)
	loanID := helper.GivenOpenLoan(t, ctxWithTimeout, lib, memberID, bookID)
	postgreswrapper.DeleteMemberRow(t, wrapper, memberID.String())

	// act
	_, err := lib.CloseLoan(ctxWithTimeout, loanID, librarystore.LoanStatusReturned)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrIntegrityViolation)

	assert.True(t,
		logSpy.HasErrorLogWithMessage("loan references a member that cannot be found").
			WithAttr("loan_id", loanID.String()).
			Assert(),
		"a dangling member reference must be logged loudly")

	loan, getErr := lib.GetLoanByID(ctxWithTimeout, loanID)
	require.NoError(t, getErr)
	assert.Equal(t, librarystore.LoanStatusOpen, loan.Status, "the failed close must be rolled back")
}
