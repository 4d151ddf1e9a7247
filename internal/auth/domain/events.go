package domain

import "time"

const (
	UserRegisteredEventType = "auth.user.registered"
	UserLoggedInEventType   = "auth.user.logged_in"
	UserDeletedEventType    = "auth.user.deleted"
)

// UserRegisteredEvent is emitted when a reviewer account is created.
type UserRegisteredEvent struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLoggedInEvent is emitted on successful login.
type UserLoggedInEvent struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// UserDeletedEvent is emitted when an admin removes an account. Loan records
// referencing the user keep their weak references.
type UserDeletedEvent struct {
	UserID    uint      `json:"user_id"`
	DeletedBy uint      `json:"deleted_by"`
	Timestamp time.Time `json:"timestamp"`
}
