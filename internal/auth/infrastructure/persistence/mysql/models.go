package mysql

import (
	"time"

	"github.com/wyfcoding/loanflow/internal/auth/domain"
)

// UserModel maps the users table.
type UserModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	Username     string    `gorm:"column:username;type:varchar(50);uniqueIndex;not null"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null"`
	Role         string    `gorm:"column:role;type:varchar(20);not null;default:'verifier'"`
}

func (UserModel) TableName() string {
	return "users"
}

func toUserModel(user *domain.User) *UserModel {
	if user == nil {
		return nil
	}
	return &UserModel{
		ID:           user.ID,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
	}
}

func toUser(model *UserModel) *domain.User {
	if model == nil {
		return nil
	}
	return &domain.User{
		ID:           model.ID,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
		Username:     model.Username,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		Role:         domain.UserRole(model.Role),
	}
}
