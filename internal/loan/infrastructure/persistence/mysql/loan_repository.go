// Package mysql provides the GORM implementation of the loan application
// repository.
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/loanflow/internal/loan/domain"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) domain.Repository {
	return &loanRepository{db: db}
}

func (r *loanRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(contextx.WithTx(ctx, tx))
	})
}

func (r *loanRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

func (r *loanRepository) Create(ctx context.Context, app *domain.LoanApplication) error {
	model := toModel(app)
	if err := r.getDB(ctx).WithContext(ctx).Create(model).Error; err != nil {
		logging.Error(ctx, "loan_repository.create failed", "application_id", app.ApplicationID, "error", err)
		return fmt.Errorf("failed to create loan application: %w", err)
	}
	app.ID = model.ID
	app.CreatedAt = model.CreatedAt
	app.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *loanRepository) Get(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	var model LoanApplicationModel
	err := r.getDB(ctx).WithContext(ctx).Where("application_id = ?", applicationID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logging.Error(ctx, "loan_repository.get failed", "application_id", applicationID, "error", err)
		return nil, fmt.Errorf("failed to get loan application: %w", err)
	}
	return toDomain(&model), nil
}

func (r *loanRepository) List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]*domain.LoanApplication, int64, error) {
	var models []LoanApplicationModel
	var total int64

	db := r.getDB(ctx).WithContext(ctx).Model(&LoanApplicationModel{})
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		db = db.Where("status IN ?", statuses)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count loan applications: %w", err)
	}
	if err := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		logging.Error(ctx, "loan_repository.list failed", "error", err)
		return nil, 0, fmt.Errorf("failed to list loan applications: %w", err)
	}

	apps := make([]*domain.LoanApplication, len(models))
	for i, m := range models {
		apps[i] = toDomain(&m)
	}
	return apps, total, nil
}

// ConditionalUpdate re-reads the row under a write lock, checks the expected
// status and applies the mutation, all inside one transaction. A concurrent
// transition that got there first surfaces as ErrStateConflict.
func (r *loanRepository) ConditionalUpdate(ctx context.Context, applicationID string, expected domain.LoanStatus, mutate func(*domain.LoanApplication) error) (*domain.LoanApplication, error) {
	var updated *domain.LoanApplication

	run := func(tx *gorm.DB) error {
		var model LoanApplicationModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("application_id = ?", applicationID).
			First(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, applicationID)
		}
		if err != nil {
			return fmt.Errorf("failed to lock loan application: %w", err)
		}
		if domain.LoanStatus(model.Status) != expected {
			return fmt.Errorf("%w: application is %q, expected %q",
				domain.ErrStateConflict, model.Status, expected)
		}

		app := toDomain(&model)
		if err := mutate(app); err != nil {
			return err
		}

		next := toModel(app)
		next.ID = model.ID
		next.CreatedAt = model.CreatedAt
		if err := tx.Save(next).Error; err != nil {
			logging.Error(ctx, "loan_repository.conditional_update failed", "application_id", applicationID, "error", err)
			return fmt.Errorf("failed to update loan application: %w", err)
		}
		app.UpdatedAt = next.UpdatedAt
		updated = app
		return nil
	}

	// Join an ambient transaction when one is in flight, otherwise open one.
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		if err := run(tx.WithContext(ctx)); err != nil {
			return nil, err
		}
		return updated, nil
	}
	if err := r.db.WithContext(ctx).Transaction(run); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *loanRepository) CountByStatus(ctx context.Context) (map[domain.LoanStatus]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.getDB(ctx).WithContext(ctx).
		Model(&LoanApplicationModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		logging.Error(ctx, "loan_repository.count_by_status failed", "error", err)
		return nil, fmt.Errorf("failed to count loan applications: %w", err)
	}

	counts := make(map[domain.LoanStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.LoanStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *loanRepository) SumAmountByStatus(ctx context.Context, status domain.LoanStatus) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.getDB(ctx).WithContext(ctx).
		Model(&LoanApplicationModel{}).
		Select("sum(loan_amount)").
		Where("status = ?", string(status)).
		Scan(&sum).Error
	if err != nil {
		logging.Error(ctx, "loan_repository.sum_amount_by_status failed", "status", string(status), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum loan amounts: %w", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *loanRepository) CountDistinctApplicants(ctx context.Context) (int64, error) {
	var count int64
	err := r.getDB(ctx).WithContext(ctx).
		Model(&LoanApplicationModel{}).
		Distinct("email").
		Count(&count).Error
	if err != nil {
		logging.Error(ctx, "loan_repository.count_distinct_applicants failed", "error", err)
		return 0, fmt.Errorf("failed to count applicants: %w", err)
	}
	return count, nil
}

func (r *loanRepository) ListRecent(ctx context.Context, limit int) ([]*domain.LoanApplication, error) {
	var models []LoanApplicationModel
	err := r.getDB(ctx).WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		logging.Error(ctx, "loan_repository.list_recent failed", "error", err)
		return nil, fmt.Errorf("failed to list recent applications: %w", err)
	}

	apps := make([]*domain.LoanApplication, len(models))
	for i, m := range models {
		apps[i] = toDomain(&m)
	}
	return apps, nil
}
