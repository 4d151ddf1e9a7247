package application

import (
	"strconv"
	"time"

	"github.com/wyfcoding/loanflow/internal/auth/domain"
)

// UserDTO is the wire representation of a reviewer account. The password
// hash never leaves the domain.
type UserDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResult bundles a fresh token with the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *UserDTO
}

func toUserDTO(user *domain.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:        strconv.FormatUint(uint64(user.ID), 10),
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}
