package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a principal.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued session and principal info.
type LoginResponse struct {
	Token     string        `json:"-"`
	ExpiresIn int64         `json:"expires_in"`
	Principal PrincipalInfo `json:"principal"`
}

// ChangePasswordRequest payload for updating a password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// PrincipalInfo describes the authenticated principal in responses.
type PrincipalInfo struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Role      Role    `json:"role"`
	FacultyID *string `json:"faculty_id,omitempty"`
	StudentID *string `json:"student_id,omitempty"`
}

// SessionClaims is the JWT payload carried by the session cookie. The
// session id must also be live in the session store for the token to
// resolve; the JWT alone is not sufficient.
type SessionClaims struct {
	SessionID   string `json:"sid"`
	PrincipalID string `json:"principal_id"`
	Role        Role   `json:"role"`
	Email       string `json:"email"`
	jwt.RegisteredClaims
}
