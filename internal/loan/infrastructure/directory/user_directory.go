// Package directory resolves the loan service's weak reviewer references
// against the auth user store.
package directory

import (
	"context"
	"strconv"

	authdomain "github.com/wyfcoding/loanflow/internal/auth/domain"
	loandomain "github.com/wyfcoding/loanflow/internal/loan/domain"
)

type userDirectory struct {
	users authdomain.UserRepository
}

func NewUserDirectory(users authdomain.UserRepository) loandomain.UserDirectory {
	return &userDirectory{users: users}
}

// Lookup resolves reviewer ids to usernames in one batch query. Ids of
// deleted accounts are left out; callers substitute a placeholder.
func (d *userDirectory) Lookup(ctx context.Context, ids []string) (map[string]loandomain.UserRef, error) {
	numeric := make([]uint, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			// Malformed weak reference; skip rather than fail the read.
			continue
		}
		numeric = append(numeric, uint(n))
	}
	if len(numeric) == 0 {
		return map[string]loandomain.UserRef{}, nil
	}

	users, err := d.users.GetByIDs(ctx, numeric)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]loandomain.UserRef, len(users))
	for _, u := range users {
		id := strconv.FormatUint(uint64(u.ID), 10)
		refs[id] = loandomain.UserRef{ID: id, Username: u.Username}
	}
	return refs, nil
}

func (d *userDirectory) Count(ctx context.Context) (int64, error) {
	return d.users.Count(ctx)
}
