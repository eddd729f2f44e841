package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StudentSignupRequest registers a new student account.
type StudentSignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Roll     string `json:"roll" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Branch   string `json:"branch"`
	Year     string `json:"year"`
	CGPA     string `json:"cgpa" validate:"omitempty,cgpa"`
	Phone    string `json:"phone"`
}

// StudentLoginRequest authenticates a student by roll number.
type StudentLoginRequest struct {
	Roll     string `json:"roll" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest authenticates an admin by email or username.
type AdminLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// CreateAdminRequest creates another administrator account.
type CreateAdminRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ResetPasswordRequest replaces the password of an admin account.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Actor converts the claims into a service level actor.
func (c *JWTClaims) Actor() *Actor {
	if c == nil {
		return nil
	}
	return &Actor{ID: c.UserID, Role: c.Role, Name: c.FullName}
}
