package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ListFilter narrows a listing query. An empty Statuses slice means no
// status restriction.
type ListFilter struct {
	Statuses []LoanStatus
}

// Repository persists loan applications.
type Repository interface {
	// WithTx runs fn inside one database transaction; the transaction
	// travels in the derived context.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Create persists a new application.
	Create(ctx context.Context, app *LoanApplication) error
	// Get returns the application or (nil, nil) when the id is unknown.
	Get(ctx context.Context, applicationID string) (*LoanApplication, error)
	// List returns a page ordered by creation time descending plus the
	// total match count.
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*LoanApplication, int64, error)
	// ConditionalUpdate applies mutate to the stored record only while its
	// status still equals expected, as one atomic operation. It returns
	// ErrStateConflict when the status moved and ErrNotFound for unknown ids.
	ConditionalUpdate(ctx context.Context, applicationID string, expected LoanStatus, mutate func(*LoanApplication) error) (*LoanApplication, error)

	// Aggregation support.
	CountByStatus(ctx context.Context) (map[LoanStatus]int64, error)
	SumAmountByStatus(ctx context.Context, status LoanStatus) (decimal.Decimal, error)
	CountDistinctApplicants(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]*LoanApplication, error)
}

// UserRef is a resolved weak reference to a reviewer account.
type UserRef struct {
	ID       string
	Username string
}

// UserDirectory resolves reviewer user ids for display. Ids referencing
// deleted accounts are simply absent from the result.
type UserDirectory interface {
	Lookup(ctx context.Context, ids []string) (map[string]UserRef, error)
	Count(ctx context.Context) (int64, error)
}
