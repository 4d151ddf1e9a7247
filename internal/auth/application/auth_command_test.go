package application

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/loanflow/internal/auth/domain"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uint]*domain.User
	seq   uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]*domain.User)}
}

func (r *memoryUserRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *memoryUserRepo) Save(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		r.seq++
		user.ID = r.seq
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id uint) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (r *memoryUserRepo) GetByIDs(_ context.Context, ids []uint) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memoryUserRepo) List(_ context.Context, roles []domain.UserRole) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		for _, role := range roles {
			if u.Role == role {
				clone := *u
				out = append(out, &clone)
				break
			}
		}
	}
	return out, nil
}

func (r *memoryUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memoryUserRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
	}
	delete(r.users, id)
	return nil
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.AuthSession
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]*domain.AuthSession)}
}

func (r *memorySessionRepo) Save(_ context.Context, session *domain.AuthSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token] = session
	return nil
}

func (r *memorySessionRepo) Get(_ context.Context, token string) (*domain.AuthSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[token], nil
}

func (r *memorySessionRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *memorySessionRepo) DeleteByUserID(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, token)
		}
	}
	return nil
}

func mustParseID(t *testing.T, id string) uint {
	t.Helper()
	n, err := strconv.ParseUint(id, 10, 64)
	require.NoError(t, err)
	return uint(n)
}

func newAuthFixture() (*AuthCommandService, *memoryUserRepo, *memorySessionRepo) {
	repo := newMemoryUserRepo()
	sessions := newMemorySessionRepo()
	tokens := NewTokenService("test-secret", time.Hour)
	svc := NewAuthCommandService(repo, sessions, tokens, nil)
	return svc, repo, sessions
}

func registerCmd(username string) RegisterCommand {
	return RegisterCommand{
		Username: username,
		Email:    username + "@example.com",
		Password: "s3cret-pass",
	}
}

func TestRegister(t *testing.T) {
	svc, _, sessions := newAuthFixture()
	ctx := context.Background()

	result, err := svc.Register(ctx, registerCmd("ama"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "ama", result.User.Username)
	assert.Equal(t, "verifier", result.User.Role, "role defaults to verifier")

	session, err := sessions.Get(ctx, result.Token)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "ama", session.Username)
}

func TestRegisterAdminRole(t *testing.T) {
	svc, _, _ := newAuthFixture()
	cmd := registerCmd("kojo")
	cmd.Role = domain.RoleAdmin

	result, err := svc.Register(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "admin", result.User.Role)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerCmd("ama"))
	require.NoError(t, err)

	t.Run("same email", func(t *testing.T) {
		cmd := registerCmd("ama2")
		cmd.Email = "ama@example.com"
		_, err := svc.Register(ctx, cmd)
		assert.ErrorIs(t, err, domain.ErrDuplicateUser)
	})

	t.Run("same username", func(t *testing.T) {
		cmd := registerCmd("ama")
		cmd.Email = "other@example.com"
		_, err := svc.Register(ctx, cmd)
		assert.ErrorIs(t, err, domain.ErrDuplicateUser)
	})
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerCmd("ama"))
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		result, err := svc.Login(ctx, LoginCommand{Email: "Ama@Example.com", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, result.User.ID)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginCommand{Email: "ama@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginCommand{Email: "nobody@example.com", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestDeleteUser(t *testing.T) {
	svc, repo, sessions := newAuthFixture()
	ctx := context.Background()

	admin, err := svc.Register(ctx, RegisterCommand{Username: "kojo", Email: "kojo@example.com", Password: "pw-admin", Role: domain.RoleAdmin})
	require.NoError(t, err)
	target, err := svc.Register(ctx, registerCmd("ama"))
	require.NoError(t, err)

	adminID := mustParseID(t, admin.User.ID)
	targetID := mustParseID(t, target.User.ID)

	t.Run("self deletion refused", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteUser(ctx, adminID, adminID), domain.ErrSelfDeletion)
	})

	t.Run("unknown target", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteUser(ctx, adminID, 4242), domain.ErrUserNotFound)
	})

	t.Run("deletion revokes sessions", func(t *testing.T) {
		require.NoError(t, svc.DeleteUser(ctx, adminID, targetID))

		gone, err := repo.GetByID(ctx, targetID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		session, err := sessions.Get(ctx, target.Token)
		require.NoError(t, err)
		assert.Nil(t, session)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	user := &domain.User{ID: 7, Username: "ama", Role: domain.RoleVerifier}

	token, expiresAt, err := tokens.Issue(user)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	assert.Equal(t, "verifier", claims.Role)
	assert.Equal(t, "ama", claims.Subject)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService("other-secret", time.Hour)
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := tokens.Parse("not-a-token")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
