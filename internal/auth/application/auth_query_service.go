package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/loanflow/internal/auth/domain"
)

// AuthQueryService answers read-only account questions.
type AuthQueryService struct {
	repo domain.UserRepository
}

func NewAuthQueryService(repo domain.UserRepository) *AuthQueryService {
	return &AuthQueryService{repo: repo}
}

func (s *AuthQueryService) Profile(ctx context.Context, userID uint) (*UserDTO, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrUserNotFound, userID)
	}
	return toUserDTO(user), nil
}

// ListUsers returns every reviewer account, newest first.
func (s *AuthQueryService) ListUsers(ctx context.Context) ([]*UserDTO, error) {
	users, err := s.repo.List(ctx, []domain.UserRole{domain.RoleAdmin, domain.RoleVerifier})
	if err != nil {
		return nil, err
	}
	dtos := make([]*UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	return dtos, nil
}
