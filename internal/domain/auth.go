package domain

import "time"

// Privileges understood by the service itself. Other names are opaque
// strings owned by the applications that check them.
const (
	PrivilegeManageUsers = "users:manage"
)

// IssuedToken is a signed token handed to a client with its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}
