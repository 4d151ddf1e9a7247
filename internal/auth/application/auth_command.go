package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wyfcoding/loanflow/internal/auth/domain"
	"github.com/wyfcoding/pkg/contextx"
	"golang.org/x/crypto/bcrypt"
)

// RegisterCommand creates a reviewer account. Role defaults to verifier
// when empty.
type RegisterCommand struct {
	Username string
	Email    string
	Password string
	Role     domain.UserRole
}

type LoginCommand struct {
	Email    string
	Password string
}

// AuthCommandService handles account mutations and credential checks.
type AuthCommandService struct {
	repo        domain.UserRepository
	sessionRepo domain.SessionRepository
	tokens      *TokenService
	publisher   domain.EventPublisher
	now         func() time.Time
}

func NewAuthCommandService(
	repo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	tokens *TokenService,
	publisher domain.EventPublisher,
) *AuthCommandService {
	return &AuthCommandService{
		repo:        repo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		publisher:   publisher,
		now:         time.Now,
	}
}

// Register creates the account and logs it in, returning a fresh token.
func (s *AuthCommandService) Register(ctx context.Context, cmd RegisterCommand) (*LoginResult, error) {
	username := strings.TrimSpace(cmd.Username)
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if username == "" || email == "" || cmd.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *domain.User
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if existing, err := s.repo.GetByEmail(txCtx, email); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrDuplicateUser
		}
		if existing, err := s.repo.GetByUsername(txCtx, username); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrDuplicateUser
		}

		user = domain.NewUser(username, email, string(hash), cmd.Role)
		if err := s.repo.Save(txCtx, user); err != nil {
			return err
		}

		if s.publisher == nil {
			return nil
		}
		event := domain.UserRegisteredEvent{
			UserID:    user.ID,
			Username:  user.Username,
			Email:     user.Email,
			Role:      user.Role,
			Timestamp: s.now(),
		}
		return s.publisher.PublishInTx(ctx, contextx.GetTx(txCtx), domain.UserRegisteredEventType, user.Email, event)
	})
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

// Login checks credentials and opens a session.
func (s *AuthCommandService) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(cmd.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cmd.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if s.publisher != nil {
		event := domain.UserLoggedInEvent{
			UserID:    user.ID,
			Email:     user.Email,
			Timestamp: s.now(),
		}
		_ = s.publisher.Publish(ctx, domain.UserLoggedInEventType, user.Email, event)
	}

	return s.openSession(ctx, user)
}

// DeleteUser removes an account. Self-deletion is refused; historical loan
// records keep their dangling reviewer references.
func (s *AuthCommandService) DeleteUser(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return domain.ErrSelfDeletion
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("%w: %d", domain.ErrUserNotFound, targetID)
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, targetID); err != nil {
			return err
		}
		if s.publisher == nil {
			return nil
		}
		event := domain.UserDeletedEvent{
			UserID:    targetID,
			DeletedBy: actorID,
			Timestamp: s.now(),
		}
		return s.publisher.PublishInTx(ctx, contextx.GetTx(txCtx), domain.UserDeletedEventType, target.Email, event)
	})
	if err != nil {
		return err
	}

	if s.sessionRepo != nil {
		_ = s.sessionRepo.DeleteByUserID(ctx, targetID)
	}
	return nil
}

func (s *AuthCommandService) openSession(ctx context.Context, user *domain.User) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	if s.sessionRepo != nil {
		session := &domain.AuthSession{
			Token:     token,
			UserID:    user.ID,
			Username:  user.Username,
			Role:      user.Role,
			CreatedAt: s.now(),
			ExpiresAt: expiresAt,
		}
		if err := s.sessionRepo.Save(ctx, session); err != nil {
			return nil, err
		}
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: toUserDTO(user)}, nil
}
