// Package domain contains the reviewer account model for the loan workflow.
package domain

import (
	"errors"
	"time"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleVerifier UserRole = "verifier"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleVerifier
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user with this email or username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSelfDeletion       = errors.New("cannot delete your own account")
)

// User is a reviewer account. Loan applications reference users by id only;
// deleting a user never touches the applications it reviewed.
type User struct {
	ID           uint      `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
}

func NewUser(username, email, passwordHash string, role UserRole) *User {
	if !role.Valid() {
		role = RoleVerifier
	}
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
}
