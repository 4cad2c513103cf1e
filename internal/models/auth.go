package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// AuthUser is the dashboard user resolved from a bearer token.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// JWTClaims are the claims carried by dashboard tokens. The user id is the subject.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (c JWTClaims) User() AuthUser {
	return AuthUser{
		ID:    c.Subject,
		Email: c.Email,
		Name:  c.Name,
	}
}
