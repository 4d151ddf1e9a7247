package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/loanflow/internal/loan/domain"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/idgen"
)

// Actor is the authenticated identity performing a command, resolved by the
// auth layer before the loan core is invoked.
type Actor struct {
	ID   string
	Role domain.Role
}

// SubmitLoanCommand files a new application.
type SubmitLoanCommand struct {
	FullName         string
	Email            string
	PhoneNumber      string
	Address          string
	LoanAmount       decimal.Decimal
	LoanPurpose      string
	EmploymentStatus string
	MonthlyIncome    decimal.Decimal
	CreditScore      *int
	Collateral       string
}

// DecideCommand requests a lifecycle transition. Stage pins the review stage
// the caller is acting on: the verify endpoint decides pending applications,
// the approve endpoint verified ones.
type DecideCommand struct {
	ApplicationID string
	Action        domain.Action
	Reason        string
	Actor         Actor
	Stage         domain.LoanStatus
}

// LoanCommandService owns every mutation of the loan workflow. No other code
// path writes workflow fields.
type LoanCommandService struct {
	repo      domain.Repository
	directory domain.UserDirectory
	publisher domain.EventPublisher
	now       func() time.Time
}

func NewLoanCommandService(repo domain.Repository, directory domain.UserDirectory, publisher domain.EventPublisher) *LoanCommandService {
	return &LoanCommandService{
		repo:      repo,
		directory: directory,
		publisher: publisher,
		now:       time.Now,
	}
}

// Submit validates and persists a new pending application.
func (s *LoanCommandService) Submit(ctx context.Context, cmd SubmitLoanCommand) (*LoanApplicationDTO, error) {
	app := domain.NewLoanApplication(
		fmt.Sprintf("LN-%d", idgen.GenID()),
		domain.ApplicantInput{
			FullName:         cmd.FullName,
			Email:            cmd.Email,
			PhoneNumber:      cmd.PhoneNumber,
			Address:          cmd.Address,
			LoanAmount:       cmd.LoanAmount,
			LoanPurpose:      domain.LoanPurpose(cmd.LoanPurpose),
			EmploymentStatus: domain.EmploymentStatus(cmd.EmploymentStatus),
			MonthlyIncome:    cmd.MonthlyIncome,
			CreditScore:      cmd.CreditScore,
			Collateral:       cmd.Collateral,
		},
	)
	if err := app.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, app); err != nil {
			return err
		}
		if s.publisher == nil {
			return nil
		}
		event := domain.LoanSubmittedEvent{
			ApplicationID: app.ApplicationID,
			Email:         app.Email,
			LoanAmount:    app.LoanAmount.String(),
			LoanPurpose:   string(app.LoanPurpose),
			OccurredOn:    s.now(),
		}
		return s.publisher.PublishInTx(ctx, contextx.GetTx(txCtx), domain.LoanSubmittedEventType, app.ApplicationID, event)
	})
	if err != nil {
		return nil, err
	}

	return toLoanApplicationDTO(app, nil), nil
}

// Decide performs one guarded lifecycle transition.
//
// Failure order: unknown id, missing rejection reason, role without the
// capability, wrong review stage or terminal status, then the gate check for
// the concrete (role, action, status) triple. The write itself is a
// conditional update keyed on the expected prior status, so two concurrent
// decisions on the same application cannot both succeed.
func (s *LoanCommandService) Decide(ctx context.Context, cmd DecideCommand) (*LoanApplicationDTO, error) {
	current, err := s.repo.Get(ctx, cmd.ApplicationID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, cmd.ApplicationID)
	}

	if cmd.Action == domain.ActionReject && strings.TrimSpace(cmd.Reason) == "" {
		return nil, domain.NewValidationError("rejectionReason", "rejection reason is required")
	}

	if !domain.HasCapability(cmd.Actor.Role, cmd.Action) {
		return nil, fmt.Errorf("%w: role %q may not %s", domain.ErrForbidden, cmd.Actor.Role, cmd.Action)
	}

	if current.Status != cmd.Stage {
		return nil, fmt.Errorf("%w: application is %q, expected %q", domain.ErrStateConflict, current.Status, cmd.Stage)
	}

	if !domain.CanPerform(cmd.Actor.Role, cmd.Action, current.Status) {
		return nil, fmt.Errorf("%w: role %q may not %s an application in status %q",
			domain.ErrForbidden, cmd.Actor.Role, cmd.Action, current.Status)
	}

	at := s.now()
	var updated *domain.LoanApplication
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var txErr error
		updated, txErr = s.repo.ConditionalUpdate(txCtx, cmd.ApplicationID, cmd.Stage, func(app *domain.LoanApplication) error {
			switch cmd.Action {
			case domain.ActionVerify:
				return app.Verify(cmd.Actor.ID, at)
			case domain.ActionApprove:
				return app.Approve(cmd.Actor.ID, at)
			case domain.ActionReject:
				return app.Reject(cmd.Actor.ID, cmd.Reason, at)
			default:
				return domain.NewValidationError("action", fmt.Sprintf("unknown action %q", cmd.Action))
			}
		})
		if txErr != nil {
			return txErr
		}
		return s.publishDecision(ctx, txCtx, cmd, updated, at)
	})
	if err != nil {
		return nil, err
	}

	refs := resolveBatch(ctx, s.directory, []*domain.LoanApplication{updated})
	return toLoanApplicationDTO(updated, refs), nil
}

func (s *LoanCommandService) publishDecision(ctx, txCtx context.Context, cmd DecideCommand, app *domain.LoanApplication, at time.Time) error {
	if s.publisher == nil {
		return nil
	}
	tx := contextx.GetTx(txCtx)
	switch cmd.Action {
	case domain.ActionVerify:
		return s.publisher.PublishInTx(ctx, tx, domain.LoanVerifiedEventType, app.ApplicationID, domain.LoanVerifiedEvent{
			ApplicationID: app.ApplicationID,
			VerifiedBy:    cmd.Actor.ID,
			OccurredOn:    at,
		})
	case domain.ActionApprove:
		return s.publisher.PublishInTx(ctx, tx, domain.LoanApprovedEventType, app.ApplicationID, domain.LoanApprovedEvent{
			ApplicationID: app.ApplicationID,
			ApprovedBy:    cmd.Actor.ID,
			LoanAmount:    app.LoanAmount.String(),
			OccurredOn:    at,
		})
	case domain.ActionReject:
		return s.publisher.PublishInTx(ctx, tx, domain.LoanRejectedEventType, app.ApplicationID, domain.LoanRejectedEvent{
			ApplicationID: app.ApplicationID,
			RejectedBy:    cmd.Actor.ID,
			Reason:        app.RejectionReason,
			FromStatus:    string(cmd.Stage),
			OccurredOn:    at,
		})
	}
	return nil
}
