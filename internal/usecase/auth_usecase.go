package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
)

var ErrInvalidToken = models.NewError(http.StatusUnauthorized, "Invalid or expired token")

// AuthUseCase issues and validates dashboard bearer tokens.
type AuthUseCase struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthUseCase(conf *config.Config) *AuthUseCase {
	return &AuthUseCase{
		secret:   []byte(conf.Auth.JWTSecret),
		issuer:   conf.Auth.Issuer,
		tokenTTL: conf.Auth.TokenTTL,
		now:      time.Now,
	}
}

// Issue signs a token for user. ttl <= 0 uses the configured lifetime.
func (uc *AuthUseCase) Issue(user models.AuthUser, ttl time.Duration) (string, time.Time, error) {
	if user.ID == "" {
		return "", time.Time{}, errors.New("user id is required")
	}
	if ttl <= 0 {
		ttl = uc.tokenTTL
	}
	now := uc.now()
	expiresAt := now.Add(ttl)

	claims := models.JWTClaims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    uc.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse validates the signature, expiry and issuer of a token.
func (uc *AuthUseCase) Parse(tokenString string) (models.AuthUser, error) {
	var claims models.JWTClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(uc.now),
	}
	if uc.issuer != "" {
		opts = append(opts, jwt.WithIssuer(uc.issuer))
	}
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return uc.secret, nil
	}, opts...)
	if err != nil {
		return models.AuthUser{}, models.WrapError(http.StatusUnauthorized, ErrInvalidToken.Message, err)
	}
	if claims.Subject == "" {
		return models.AuthUser{}, ErrInvalidToken
	}
	return claims.User(), nil
}
