package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/loanflow/internal/loan/domain"
)

// LoanApplicationModel maps the loan_applications table.
type LoanApplicationModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	ApplicationID    string          `gorm:"column:application_id;type:varchar(32);uniqueIndex;not null"`
	FullName         string          `gorm:"column:full_name;type:varchar(100);not null"`
	Email            string          `gorm:"column:email;type:varchar(255);index;not null"`
	PhoneNumber      string          `gorm:"column:phone_number;type:varchar(32);not null"`
	Address          string          `gorm:"column:address;type:varchar(255);not null"`
	LoanAmount       decimal.Decimal `gorm:"column:loan_amount;type:decimal(20,2);not null"`
	LoanPurpose      string          `gorm:"column:loan_purpose;type:varchar(20);not null"`
	EmploymentStatus string          `gorm:"column:employment_status;type:varchar(20);not null"`
	MonthlyIncome    decimal.Decimal `gorm:"column:monthly_income;type:decimal(20,2);not null"`
	CreditScore      *int            `gorm:"column:credit_score"`
	Collateral       string          `gorm:"column:collateral;type:varchar(255)"`

	Status           string     `gorm:"column:status;type:varchar(20);index;not null;default:'pending'"`
	VerifiedBy       string     `gorm:"column:verified_by;type:varchar(32)"`
	ApprovedBy       string     `gorm:"column:approved_by;type:varchar(32)"`
	RejectionReason  string     `gorm:"column:rejection_reason;type:varchar(500)"`
	VerificationDate *time.Time `gorm:"column:verification_date"`
	ApprovalDate     *time.Time `gorm:"column:approval_date"`
}

func (LoanApplicationModel) TableName() string {
	return "loan_applications"
}

func toModel(app *domain.LoanApplication) *LoanApplicationModel {
	if app == nil {
		return nil
	}
	return &LoanApplicationModel{
		ID:               app.ID,
		CreatedAt:        app.CreatedAt,
		UpdatedAt:        app.UpdatedAt,
		ApplicationID:    app.ApplicationID,
		FullName:         app.FullName,
		Email:            app.Email,
		PhoneNumber:      app.PhoneNumber,
		Address:          app.Address,
		LoanAmount:       app.LoanAmount,
		LoanPurpose:      string(app.LoanPurpose),
		EmploymentStatus: string(app.EmploymentStatus),
		MonthlyIncome:    app.MonthlyIncome,
		CreditScore:      app.CreditScore,
		Collateral:       app.Collateral,
		Status:           string(app.Status),
		VerifiedBy:       app.VerifiedBy,
		ApprovedBy:       app.ApprovedBy,
		RejectionReason:  app.RejectionReason,
		VerificationDate: app.VerificationDate,
		ApprovalDate:     app.ApprovalDate,
	}
}

func toDomain(model *LoanApplicationModel) *domain.LoanApplication {
	if model == nil {
		return nil
	}
	return &domain.LoanApplication{
		ID:               model.ID,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
		ApplicationID:    model.ApplicationID,
		FullName:         model.FullName,
		Email:            model.Email,
		PhoneNumber:      model.PhoneNumber,
		Address:          model.Address,
		LoanAmount:       model.LoanAmount,
		LoanPurpose:      domain.LoanPurpose(model.LoanPurpose),
		EmploymentStatus: domain.EmploymentStatus(model.EmploymentStatus),
		MonthlyIncome:    model.MonthlyIncome,
		CreditScore:      model.CreditScore,
		Collateral:       model.Collateral,
		Status:           domain.LoanStatus(model.Status),
		VerifiedBy:       model.VerifiedBy,
		ApprovedBy:       model.ApprovedBy,
		RejectionReason:  model.RejectionReason,
		VerificationDate: model.VerificationDate,
		ApprovalDate:     model.ApprovalDate,
	}
}
