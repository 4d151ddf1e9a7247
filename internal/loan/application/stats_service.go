package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/loanflow/internal/loan/domain"
)

// repaymentMarkupRate is the fixed markup policy applied to disbursed
// principal when reporting expected repayment inflow.
const repaymentMarkupRate = "1.10"

var repaymentMarkup = decimal.RequireFromString(repaymentMarkupRate)

// recentApplicationLimit bounds the dashboard's recent-activity list.
const recentApplicationLimit = 5

// unimplementedMetrics names dashboard figures the stored corpus has no
// backing entities for. They are reported as unimplemented instead of being
// fabricated.
var unimplementedMetrics = []string{"savings", "repaidLoans", "otherAccounts"}

// StatsService derives operational dashboard metrics from the application
// corpus. Reads are not linearized with in-flight transitions; counts may
// trail a concurrent decision by one request.
type StatsService struct {
	repo      domain.Repository
	directory domain.UserDirectory
}

func NewStatsService(repo domain.Repository, directory domain.UserDirectory) *StatsService {
	return &StatsService{repo: repo, directory: directory}
}

// DashboardStats computes the dashboard aggregate.
func (s *StatsService) DashboardStats(ctx context.Context) (*StatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	disbursed, err := s.repo.SumAmountByStatus(ctx, domain.StatusApproved)
	if err != nil {
		return nil, err
	}
	received := disbursed.Mul(repaymentMarkup)

	borrowers, err := s.repo.CountDistinctApplicants(ctx)
	if err != nil {
		return nil, err
	}

	var reviewers int64
	if s.directory != nil {
		if reviewers, err = s.directory.Count(ctx); err != nil {
			return nil, err
		}
	}

	recent, err := s.repo.ListRecent(ctx, recentApplicationLimit)
	if err != nil {
		return nil, err
	}
	refs := resolveBatch(ctx, s.directory, recent)
	recentDTOs := make([]*LoanApplicationDTO, len(recent))
	for i, app := range recent {
		recentDTOs[i] = toLoanApplicationDTO(app, refs)
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	return &StatsDTO{
		TotalLoans:           total,
		PendingApplications:  counts[domain.StatusPending],
		VerifiedApplications: counts[domain.StatusVerified],
		ApprovedApplications: counts[domain.StatusApproved],
		RejectedApplications: counts[domain.StatusRejected],
		CashDisbursed:        disbursed.String(),
		CashReceived:         received.String(),
		ActiveUsers:          reviewers,
		Borrowers:            borrowers,
		RecentApplications:   recentDTOs,
		UnimplementedMetrics: unimplementedMetrics,
	}, nil
}
