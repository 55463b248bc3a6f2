package dto

import (
	"time"

	"github.com/spec-kit/campus-auth/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

// ElevateRequest lists the privileges the caller wants confirmed.
type ElevateRequest struct {
	Privileges []string `json:"privileges"`
}

// SetPrivilegesRequest replaces a user's stored privileges.
type SetPrivilegesRequest struct {
	Privileges []string `json:"privileges"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of a privilege record.
type UserResponse struct {
	ID         string   `json:"id"`
	Identity   string   `json:"identity"`
	Privileges []string `json:"privileges"`
	Status     string   `json:"status"`
}

// SessionResponse describes the caller's verified token.
type SessionResponse struct {
	Identity   string   `json:"identity"`
	Privileges []string `json:"privileges"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	privileges := u.Privileges
	if privileges == nil {
		privileges = []string{}
	}
	return UserResponse{
		ID:         u.ID,
		Identity:   u.Identity,
		Privileges: privileges,
		Status:     string(u.Status),
	}
}

// NewAuthResponse maps an issued token.
func NewAuthResponse(t domain.IssuedToken) AuthResponse {
	return AuthResponse{Token: t.Token, ExpiresAt: t.ExpiresAt.UTC()}
}
