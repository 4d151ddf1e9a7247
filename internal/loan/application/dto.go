package application

import (
	"context"
	"time"

	"github.com/wyfcoding/loanflow/internal/loan/domain"
)

// UserRefDTO is a resolved reviewer reference for display. Deleted accounts
// resolve to a placeholder username so historical records stay renderable.
type UserRefDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// unknownUsername is shown when a weak reference points at a deleted account.
const unknownUsername = "unknown user"

// LoanApplicationDTO is the wire representation of an application. Field
// names follow the public API contract of the loan intake form.
type LoanApplicationDTO struct {
	ID               string      `json:"id"`
	FullName         string      `json:"fullName"`
	Email            string      `json:"email"`
	PhoneNumber      string      `json:"phoneNumber"`
	Address          string      `json:"address"`
	LoanAmount       string      `json:"loanAmount"`
	LoanPurpose      string      `json:"loanPurpose"`
	EmploymentStatus string      `json:"employmentStatus"`
	MonthlyIncome    string      `json:"monthlyIncome"`
	CreditScore      *int        `json:"creditScore,omitempty"`
	Collateral       string      `json:"collateral,omitempty"`
	Status           string      `json:"status"`
	VerifiedBy       *UserRefDTO `json:"verifiedBy,omitempty"`
	ApprovedBy       *UserRefDTO `json:"approvedBy,omitempty"`
	RejectionReason  string      `json:"rejectionReason,omitempty"`
	VerificationDate *time.Time  `json:"verificationDate,omitempty"`
	ApprovalDate     *time.Time  `json:"approvalDate,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// PaginationDTO describes the page returned by a listing query.
type PaginationDTO struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
}

// StatsDTO is the dashboard aggregate. Metrics the corpus cannot support are
// listed in UnimplementedMetrics instead of being returned as numbers.
type StatsDTO struct {
	TotalLoans           int64                 `json:"totalLoans"`
	PendingApplications  int64                 `json:"pendingApplications"`
	VerifiedApplications int64                 `json:"verifiedApplications"`
	ApprovedApplications int64                 `json:"approvedApplications"`
	RejectedApplications int64                 `json:"rejectedApplications"`
	CashDisbursed        string                `json:"cashDisbursed"`
	CashReceived         string                `json:"cashReceived"`
	ActiveUsers          int64                 `json:"activeUsers"`
	Borrowers            int64                 `json:"borrowers"`
	RecentApplications   []*LoanApplicationDTO `json:"recentApplications"`
	UnimplementedMetrics []string              `json:"unimplementedMetrics"`
}

func toLoanApplicationDTO(app *domain.LoanApplication, refs map[string]domain.UserRef) *LoanApplicationDTO {
	dto := &LoanApplicationDTO{
		ID:               app.ApplicationID,
		FullName:         app.FullName,
		Email:            app.Email,
		PhoneNumber:      app.PhoneNumber,
		Address:          app.Address,
		LoanAmount:       app.LoanAmount.String(),
		LoanPurpose:      string(app.LoanPurpose),
		EmploymentStatus: string(app.EmploymentStatus),
		MonthlyIncome:    app.MonthlyIncome.String(),
		CreditScore:      app.CreditScore,
		Collateral:       app.Collateral,
		Status:           string(app.Status),
		RejectionReason:  app.RejectionReason,
		VerificationDate: app.VerificationDate,
		ApprovalDate:     app.ApprovalDate,
		CreatedAt:        app.CreatedAt,
		UpdatedAt:        app.UpdatedAt,
	}
	dto.VerifiedBy = resolveRef(app.VerifiedBy, refs)
	dto.ApprovedBy = resolveRef(app.ApprovedBy, refs)
	return dto
}

func resolveRef(id string, refs map[string]domain.UserRef) *UserRefDTO {
	if id == "" {
		return nil
	}
	if ref, ok := refs[id]; ok {
		return &UserRefDTO{ID: ref.ID, Username: ref.Username}
	}
	return &UserRefDTO{ID: id, Username: unknownUsername}
}

// reviewerIDs collects the weak references of a batch of applications for a
// single directory lookup.
func reviewerIDs(apps []*domain.LoanApplication) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, app := range apps {
		for _, id := range []string{app.VerifiedBy, app.ApprovedBy} {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

func resolveBatch(ctx context.Context, directory domain.UserDirectory, apps []*domain.LoanApplication) map[string]domain.UserRef {
	ids := reviewerIDs(apps)
	if len(ids) == 0 || directory == nil {
		return nil
	}
	refs, err := directory.Lookup(ctx, ids)
	if err != nil {
		// Display resolution is best effort; the records themselves are
		// authoritative.
		return nil
	}
	return refs
}
