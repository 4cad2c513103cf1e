package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/usecase"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

const (
	userContextKey   = "user"
	memberContextKey = "member"
)

var (
	errMissingAuthHeader = models.NewError(http.StatusUnauthorized, "Missing authorization header")
	errInvalidAuthHeader = models.NewError(http.StatusUnauthorized, "Invalid authorization header format")
	errNotMember         = models.NewError(http.StatusForbidden, "You are not a member of this workspace")
	errInsufficientRole  = models.NewError(http.StatusForbidden, "You do not have permission to perform this action")
)

type TokenParser interface {
	Parse(tokenString string) (models.AuthUser, error)
}

// JWTAuth requires a valid bearer token and stores the user on the context.
func JWTAuth(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return errMissingAuthHeader
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader || tokenString == "" {
				return errInvalidAuthHeader
			}

			user, err := parser.Parse(tokenString)
			if err != nil {
				return err
			}

			SetUser(c, user)
			return next(c)
		}
	}
}

func SetUser(c echo.Context, user models.AuthUser) {
	c.Set(userContextKey, user)
	ctx := log.WithFields(c.Request().Context(), "user_id", user.ID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func GetUser(c echo.Context) (models.AuthUser, bool) {
	user, ok := c.Get(userContextKey).(models.AuthUser)
	return user, ok
}

func GetUserID(c echo.Context) string {
	user, _ := GetUser(c)
	return user.ID
}

type MembershipGetter interface {
	GetMembership(ctx context.Context, userID, workspaceID string) (*models.WorkspaceMember, error)
}

// WorkspaceMember requires the authenticated user to belong to the workspace
// named by the :workspaceId path parameter. It must run after JWTAuth.
func WorkspaceMember(members MembershipGetter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := GetUser(c)
			if !ok {
				return errMissingAuthHeader
			}
			workspaceID := c.Param("workspaceId")

			ctx := c.Request().Context()
			member, err := members.GetMembership(ctx, user.ID, workspaceID)
			if errors.Is(err, usecase.ErrNotMember) {
				return errNotMember
			}
			if err != nil {
				return err
			}

			c.Set(memberContextKey, member)
			ctx = log.WithFields(ctx, "workspace_id", workspaceID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func GetMember(c echo.Context) (*models.WorkspaceMember, bool) {
	member, ok := c.Get(memberContextKey).(*models.WorkspaceMember)
	return member, ok
}

// RequireRole allows the request only when the workspace member has one of roles.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			member, ok := GetMember(c)
			if !ok {
				return errNotMember
			}
			for _, role := range roles {
				if member.Role == role {
					return next(c)
				}
			}
			return errInsufficientRole
		}
	}
}
