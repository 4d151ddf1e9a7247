package domain

import "time"

const (
	LoanSubmittedEventType = "loan.application.submitted"
	LoanVerifiedEventType  = "loan.application.verified"
	LoanApprovedEventType  = "loan.application.approved"
	LoanRejectedEventType  = "loan.application.rejected"
)

// LoanSubmittedEvent is emitted when an applicant files a new application.
type LoanSubmittedEvent struct {
	ApplicationID string    `json:"application_id"`
	Email         string    `json:"email"`
	LoanAmount    string    `json:"loan_amount"`
	LoanPurpose   string    `json:"loan_purpose"`
	OccurredOn    time.Time `json:"occurred_on"`
}

// LoanVerifiedEvent is emitted when a reviewer clears the intake screen.
type LoanVerifiedEvent struct {
	ApplicationID string    `json:"application_id"`
	VerifiedBy    string    `json:"verified_by"`
	OccurredOn    time.Time `json:"occurred_on"`
}

// LoanApprovedEvent is emitted on final approval.
type LoanApprovedEvent struct {
	ApplicationID string    `json:"application_id"`
	ApprovedBy    string    `json:"approved_by"`
	LoanAmount    string    `json:"loan_amount"`
	OccurredOn    time.Time `json:"occurred_on"`
}

// LoanRejectedEvent is emitted on rejection at either review stage.
type LoanRejectedEvent struct {
	ApplicationID string    `json:"application_id"`
	RejectedBy    string    `json:"rejected_by"`
	Reason        string    `json:"reason"`
	FromStatus    string    `json:"from_status"`
	OccurredOn    time.Time `json:"occurred_on"`
}
