// Package domain contains the loan application aggregate and the rules
// governing its review lifecycle.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the review state of an application.
type LoanStatus string

const (
	StatusPending  LoanStatus = "pending"
	StatusVerified LoanStatus = "verified"
	StatusApproved LoanStatus = "approved"
	StatusRejected LoanStatus = "rejected"
)

// IsTerminal reports whether no further transition is permitted.
func (s LoanStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// LoanPurpose is the declared use of the requested funds.
type LoanPurpose string

const (
	PurposePersonal  LoanPurpose = "personal"
	PurposeBusiness  LoanPurpose = "business"
	PurposeEducation LoanPurpose = "education"
	PurposeHome      LoanPurpose = "home"
	PurposeCar       LoanPurpose = "car"
	PurposeOther     LoanPurpose = "other"
)

// EmploymentStatus is the applicant's declared employment situation.
type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self-employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
	EmploymentStudent      EmploymentStatus = "student"
	EmploymentRetired      EmploymentStatus = "retired"
)

// Loan amount bounds accepted at submission.
var (
	MinLoanAmount = decimal.NewFromInt(1_000)
	MaxLoanAmount = decimal.NewFromInt(10_000_000)
)

// Credit score bounds for the optional creditScore field.
const (
	MinCreditScore = 300
	MaxCreditScore = 850
)

// LoanApplication is the aggregate root of the review workflow. Records are
// append-mostly: created once at submission and mutated only through the
// lifecycle transitions below, never deleted.
type LoanApplication struct {
	ID        uint
	CreatedAt time.Time
	UpdatedAt time.Time

	ApplicationID    string
	FullName         string
	Email            string
	PhoneNumber      string
	Address          string
	LoanAmount       decimal.Decimal
	LoanPurpose      LoanPurpose
	EmploymentStatus EmploymentStatus
	MonthlyIncome    decimal.Decimal
	CreditScore      *int
	Collateral       string

	Status LoanStatus
	// VerifiedBy and ApprovedBy hold reviewer user ids as opaque strings.
	// They are weak references: the user account may be deleted later.
	VerifiedBy       string
	ApprovedBy       string
	RejectionReason  string
	VerificationDate *time.Time
	ApprovalDate     *time.Time
}

// NewLoanApplication builds a pending application from applicant input.
func NewLoanApplication(applicationID string, input ApplicantInput) *LoanApplication {
	return &LoanApplication{
		ApplicationID:    applicationID,
		FullName:         strings.TrimSpace(input.FullName),
		Email:            strings.ToLower(strings.TrimSpace(input.Email)),
		PhoneNumber:      strings.TrimSpace(input.PhoneNumber),
		Address:          strings.TrimSpace(input.Address),
		LoanAmount:       input.LoanAmount,
		LoanPurpose:      input.LoanPurpose,
		EmploymentStatus: input.EmploymentStatus,
		MonthlyIncome:    input.MonthlyIncome,
		CreditScore:      input.CreditScore,
		Collateral:       strings.TrimSpace(input.Collateral),
		Status:           StatusPending,
	}
}

// ApplicantInput carries the fields supplied by the applicant at submission.
type ApplicantInput struct {
	FullName         string
	Email            string
	PhoneNumber      string
	Address          string
	LoanAmount       decimal.Decimal
	LoanPurpose      LoanPurpose
	EmploymentStatus EmploymentStatus
	MonthlyIncome    decimal.Decimal
	CreditScore      *int
	Collateral       string
}

// Validate checks the applicant field constraints. Workflow fields are not
// inspected here; they are owned by the lifecycle transitions.
func (a *LoanApplication) Validate() error {
	if a.FullName == "" {
		return NewValidationError("fullName", "full name is required")
	}
	if a.Email == "" {
		return NewValidationError("email", "email is required")
	}
	if a.PhoneNumber == "" {
		return NewValidationError("phoneNumber", "phone number is required")
	}
	if a.Address == "" {
		return NewValidationError("address", "address is required")
	}
	if a.LoanAmount.LessThan(MinLoanAmount) || a.LoanAmount.GreaterThan(MaxLoanAmount) {
		return NewValidationError("loanAmount",
			fmt.Sprintf("loan amount must be between %s and %s", MinLoanAmount, MaxLoanAmount))
	}
	if !a.LoanPurpose.valid() {
		return NewValidationError("loanPurpose", "unknown loan purpose")
	}
	if !a.EmploymentStatus.valid() {
		return NewValidationError("employmentStatus", "unknown employment status")
	}
	if a.MonthlyIncome.IsNegative() {
		return NewValidationError("monthlyIncome", "monthly income must not be negative")
	}
	if a.CreditScore != nil && (*a.CreditScore < MinCreditScore || *a.CreditScore > MaxCreditScore) {
		return NewValidationError("creditScore",
			fmt.Sprintf("credit score must be between %d and %d", MinCreditScore, MaxCreditScore))
	}
	return nil
}

func (p LoanPurpose) valid() bool {
	switch p {
	case PurposePersonal, PurposeBusiness, PurposeEducation, PurposeHome, PurposeCar, PurposeOther:
		return true
	}
	return false
}

func (e EmploymentStatus) valid() bool {
	switch e {
	case EmploymentEmployed, EmploymentSelfEmployed, EmploymentUnemployed, EmploymentStudent, EmploymentRetired:
		return true
	}
	return false
}

// Verify moves a pending application to verified, recording the reviewer.
func (a *LoanApplication) Verify(actorID string, at time.Time) error {
	if a.Status != StatusPending {
		return fmt.Errorf("%w: cannot verify application in status %q", ErrStateConflict, a.Status)
	}
	a.Status = StatusVerified
	a.VerifiedBy = actorID
	a.VerificationDate = &at
	return nil
}

// Approve moves a verified application to its approved terminal state.
func (a *LoanApplication) Approve(actorID string, at time.Time) error {
	if a.Status != StatusVerified {
		return fmt.Errorf("%w: cannot approve application in status %q", ErrStateConflict, a.Status)
	}
	a.Status = StatusApproved
	a.ApprovedBy = actorID
	a.ApprovalDate = &at
	return nil
}

// Reject moves the application to its rejected terminal state. From pending
// it records the verifier fields, from verified the approver fields, so the
// decision stage stays reconstructible from the record.
func (a *LoanApplication) Reject(actorID, reason string, at time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return NewValidationError("rejectionReason", "rejection reason is required")
	}
	switch a.Status {
	case StatusPending:
		a.VerifiedBy = actorID
		a.VerificationDate = &at
	case StatusVerified:
		a.ApprovedBy = actorID
		a.ApprovalDate = &at
	default:
		return fmt.Errorf("%w: cannot reject application in status %q", ErrStateConflict, a.Status)
	}
	a.Status = StatusRejected
	a.RejectionReason = strings.TrimSpace(reason)
	return nil
}
