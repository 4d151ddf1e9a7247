package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/loanflow/internal/loan/domain"
)

// Listing page defaults, matching the public API contract.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery is a role-scoped, paginated listing request. Status, when set,
// overrides the role's default visibility scope.
type ListQuery struct {
	Actor  Actor
	Status string
	Page   int
	Limit  int
}

// LoanQueryService answers read-only questions about applications.
type LoanQueryService struct {
	repo      domain.Repository
	directory domain.UserDirectory
}

func NewLoanQueryService(repo domain.Repository, directory domain.UserDirectory) *LoanQueryService {
	return &LoanQueryService{repo: repo, directory: directory}
}

// GetApplication returns one application with reviewer names resolved.
func (s *LoanQueryService) GetApplication(ctx context.Context, applicationID string) (*LoanApplicationDTO, error) {
	app, err := s.repo.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, applicationID)
	}
	refs := resolveBatch(ctx, s.directory, []*domain.LoanApplication{app})
	return toLoanApplicationDTO(app, refs), nil
}

// ListApplications returns a page of applications, newest first. Without an
// explicit status filter the actor's default scope applies: verifiers see the
// pending queue, admins the processed set.
func (s *LoanQueryService) ListApplications(ctx context.Context, q ListQuery) ([]*LoanApplicationDTO, *PaginationDTO, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	filter := domain.ListFilter{}
	if q.Status != "" {
		status := domain.LoanStatus(q.Status)
		switch status {
		case domain.StatusPending, domain.StatusVerified, domain.StatusApproved, domain.StatusRejected:
			filter.Statuses = []domain.LoanStatus{status}
		default:
			return nil, nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", q.Status))
		}
	} else {
		filter.Statuses = domain.DefaultListStatuses(q.Actor.Role)
	}

	apps, total, err := s.repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}

	refs := resolveBatch(ctx, s.directory, apps)
	dtos := make([]*LoanApplicationDTO, len(apps))
	for i, app := range apps {
		dtos[i] = toLoanApplicationDTO(app, refs)
	}

	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return dtos, &PaginationDTO{Current: page, Pages: pages, Total: total}, nil
}
