package domain

import "context"

type UserRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Save(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*User, error)
	// List returns users holding any of the given roles, newest first.
	List(ctx context.Context, roles []UserRole) ([]*User, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) error
}
