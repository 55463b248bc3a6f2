package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the privilege record consulted when a token is renewed.
type User struct {
	ID         string
	Identity   string
	Privileges []string
	Status     UserStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Active reports whether the account may authenticate.
func (u *User) Active() bool {
	return u.Status == UserStatusActive
}
