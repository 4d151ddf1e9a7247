package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/loanflow/internal/loan/domain"
)

// memoryRepo is an in-memory, mutex-guarded stand-in for the database-backed
// repository. ConditionalUpdate holds the lock across read-check-write, which
// mirrors the row lock the real implementation takes.
type memoryRepo struct {
	mu   sync.Mutex
	apps map[string]*domain.LoanApplication
	seq  uint
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{apps: make(map[string]*domain.LoanApplication)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *memoryRepo) Create(_ context.Context, app *domain.LoanApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[app.ApplicationID]; ok {
		return fmt.Errorf("duplicate application id %s", app.ApplicationID)
	}
	r.seq++
	app.ID = r.seq
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Minute)
	}
	app.UpdatedAt = app.CreatedAt
	clone := *app
	r.apps[app.ApplicationID] = &clone
	return nil
}

func (r *memoryRepo) Get(_ context.Context, applicationID string) (*domain.LoanApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[applicationID]
	if !ok {
		return nil, nil
	}
	clone := *app
	return &clone, nil
}

func (r *memoryRepo) List(_ context.Context, filter domain.ListFilter, limit, offset int) ([]*domain.LoanApplication, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := r.sorted(filter.Statuses)
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *memoryRepo) ConditionalUpdate(_ context.Context, applicationID string, expected domain.LoanStatus, mutate func(*domain.LoanApplication) error) (*domain.LoanApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[applicationID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, applicationID)
	}
	if app.Status != expected {
		return nil, fmt.Errorf("%w: application is %q, expected %q", domain.ErrStateConflict, app.Status, expected)
	}
	clone := *app
	if err := mutate(&clone); err != nil {
		return nil, err
	}
	clone.UpdatedAt = clone.UpdatedAt.Add(time.Second)
	r.apps[applicationID] = &clone
	result := clone
	return &result, nil
}

func (r *memoryRepo) CountByStatus(_ context.Context) (map[domain.LoanStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.LoanStatus]int64)
	for _, app := range r.apps {
		counts[app.Status]++
	}
	return counts, nil
}

func (r *memoryRepo) SumAmountByStatus(_ context.Context, status domain.LoanStatus) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, app := range r.apps {
		if app.Status == status {
			sum = sum.Add(app.LoanAmount)
		}
	}
	return sum, nil
}

func (r *memoryRepo) CountDistinctApplicants(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	emails := make(map[string]struct{})
	for _, app := range r.apps {
		emails[app.Email] = struct{}{}
	}
	return int64(len(emails)), nil
}

func (r *memoryRepo) ListRecent(_ context.Context, limit int) ([]*domain.LoanApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recent := r.sorted(nil)
	if limit < len(recent) {
		recent = recent[:limit]
	}
	return recent, nil
}

// sorted returns clones matching the status filter, newest first. Callers
// must hold the lock.
func (r *memoryRepo) sorted(statuses []domain.LoanStatus) []*domain.LoanApplication {
	var out []*domain.LoanApplication
	for _, app := range r.apps {
		if len(statuses) > 0 && !containsStatus(statuses, app.Status) {
			continue
		}
		clone := *app
		out = append(out, &clone)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func containsStatus(statuses []domain.LoanStatus, s domain.LoanStatus) bool {
	for _, status := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

// memoryDirectory resolves reviewer ids from a fixed map.
type memoryDirectory struct {
	users map[string]string
}

func (d *memoryDirectory) Lookup(_ context.Context, ids []string) (map[string]domain.UserRef, error) {
	refs := make(map[string]domain.UserRef)
	for _, id := range ids {
		if name, ok := d.users[id]; ok {
			refs[id] = domain.UserRef{ID: id, Username: name}
		}
	}
	return refs, nil
}

func (d *memoryDirectory) Count(_ context.Context) (int64, error) {
	return int64(len(d.users)), nil
}

// recordingPublisher captures published event topics.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic, _ string, _ any) error {
	p.record(topic)
	return nil
}

func (p *recordingPublisher) PublishInTx(_ context.Context, _ any, topic, _ string, _ any) error {
	p.record(topic)
	return nil
}

func (p *recordingPublisher) record(topic string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
}
