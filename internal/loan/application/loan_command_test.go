package application

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/loanflow/internal/loan/domain"
)

var (
	verifier = Actor{ID: "7", Role: domain.RoleVerifier}
	admin    = Actor{ID: "9", Role: domain.RoleAdmin}
)

func newCommandFixture() (*LoanCommandService, *memoryRepo, *recordingPublisher) {
	repo := newMemoryRepo()
	directory := &memoryDirectory{users: map[string]string{"7": "ama.verifier", "9": "kojo.admin"}}
	publisher := &recordingPublisher{}
	return NewLoanCommandService(repo, directory, publisher), repo, publisher
}

func submitCmd(email string) SubmitLoanCommand {
	return SubmitLoanCommand{
		FullName:         "Jordan Mensah",
		Email:            email,
		PhoneNumber:      "+233201234567",
		Address:          "12 Ring Road, Accra",
		LoanAmount:       decimal.NewFromInt(50_000),
		LoanPurpose:      "business",
		EmploymentStatus: "self-employed",
		MonthlyIncome:    decimal.NewFromInt(8_000),
	}
}

func TestSubmit(t *testing.T) {
	svc, _, publisher := newCommandFixture()
	ctx := context.Background()

	dto, err := svc.Submit(ctx, submitCmd("jordan@example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, "50000", dto.LoanAmount)
	assert.Nil(t, dto.VerifiedBy)
	assert.Equal(t, []string{domain.LoanSubmittedEventType}, publisher.topics)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	svc, repo, _ := newCommandFixture()
	ctx := context.Background()

	cmd := submitCmd("jordan@example.com")
	cmd.LoanAmount = decimal.NewFromInt(500)
	_, err := svc.Submit(ctx, cmd)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "loanAmount", verr.Field)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestDecideFullLifecycle(t *testing.T) {
	svc, _, publisher := newCommandFixture()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, submitCmd("jordan@example.com"))
	require.NoError(t, err)

	verified, err := svc.Decide(ctx, DecideCommand{
		ApplicationID: submitted.ID,
		Action:        domain.ActionVerify,
		Actor:         verifier,
		Stage:         domain.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, "verified", verified.Status)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, "ama.verifier", verified.VerifiedBy.Username)
	assert.NotNil(t, verified.VerificationDate)
	assert.Nil(t, verified.ApprovedBy)

	approved, err := svc.Decide(ctx, DecideCommand{
		ApplicationID: submitted.ID,
		Action:        domain.ActionApprove,
		Actor:         admin,
		Stage:         domain.StatusVerified,
	})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "kojo.admin", approved.ApprovedBy.Username)
	assert.NotNil(t, approved.ApprovalDate)

	assert.Equal(t, []string{
		domain.LoanSubmittedEventType,
		domain.LoanVerifiedEventType,
		domain.LoanApprovedEventType,
	}, publisher.topics)
}

func TestDecideRejectAtApprovalStage(t *testing.T) {
	svc, _, _ := newCommandFixture()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, submitCmd("jordan@example.com"))
	require.NoError(t, err)
	_, err = svc.Decide(ctx, DecideCommand{
		ApplicationID: submitted.ID,
		Action:        domain.ActionVerify,
		Actor:         verifier,
		Stage:         domain.StatusPending,
	})
	require.NoError(t, err)

	rejected, err := svc.Decide(ctx, DecideCommand{
		ApplicationID: submitted.ID,
		Action:        domain.ActionReject,
		Reason:        "insufficient income",
		Actor:         admin,
		Stage:         domain.StatusVerified,
	})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "insufficient income", rejected.RejectionReason)
	require.NotNil(t, rejected.VerifiedBy)
	assert.Equal(t, "ama.verifier", rejected.VerifiedBy.Username)
	require.NotNil(t, rejected.ApprovedBy)
	assert.Equal(t, "kojo.admin", rejected.ApprovedBy.Username)
}

func TestDecideFailureTaxonomy(t *testing.T) {
	svc, _, _ := newCommandFixture()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, submitCmd("jordan@example.com"))
	require.NoError(t, err)

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Decide(ctx, DecideCommand{
			ApplicationID: "LN-missing",
			Action:        domain.ActionVerify,
			Actor:         verifier,
			Stage:         domain.StatusPending,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("reject without reason fails before anything else", func(t *testing.T) {
		// Actor lacks approve capability too; the missing reason must win.
		_, err := svc.Decide(ctx, DecideCommand{
			ApplicationID: submitted.ID,
			Action:        domain.ActionReject,
			Reason:        " ",
			Actor:         Actor{ID: "99", Role: domain.Role("auditor")},
			Stage:         domain.StatusVerified,
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "rejectionReason", verr.Field)
	})

	t.Run("verifier cannot approve", func(t *testing.T) {
		_, err := svc.Decide(ctx, DecideCommand{
			ApplicationID: submitted.ID,
			Action:        domain.ActionApprove,
			Actor:         verifier,
			Stage:         domain.StatusVerified,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("approve on pending is a state conflict", func(t *testing.T) {
		_, err := svc.Decide(ctx, DecideCommand{
			ApplicationID: submitted.ID,
			Action:        domain.ActionApprove,
			Actor:         admin,
			Stage:         domain.StatusVerified,
		})
		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})

	t.Run("terminal status is a state conflict", func(t *testing.T) {
		_, err := svc.Decide(ctx, DecideCommand{
			ApplicationID: submitted.ID,
			Action:        domain.ActionReject,
			Reason:        "late documents",
			Actor:         admin,
			Stage:         domain.StatusPending,
		})
		require.NoError(t, err)

		_, err = svc.Decide(ctx, DecideCommand{
			ApplicationID: submitted.ID,
			Action:        domain.ActionVerify,
			Actor:         admin,
			Stage:         domain.StatusPending,
		})
		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})
}

func TestDecideConcurrentVerify(t *testing.T) {
	svc, _, _ := newCommandFixture()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, submitCmd("jordan@example.com"))
	require.NoError(t, err)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Decide(ctx, DecideCommand{
				ApplicationID: submitted.ID,
				Action:        domain.ActionVerify,
				Actor:         verifier,
				Stage:         domain.StatusPending,
			})
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		default:
			assert.ErrorIs(t, err, domain.ErrStateConflict)
			conflict++
		}
	}
	assert.Equal(t, 1, ok, "exactly one concurrent decision may win")
	assert.Equal(t, 1, conflict)

	final, err := svc.repo.Get(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, final.Status)
	assert.Equal(t, "7", final.VerifiedBy)
}
