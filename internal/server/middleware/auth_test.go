package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/usecase"
)

type tokenParserFunc func(string) (models.AuthUser, error)

func (f tokenParserFunc) Parse(token string) (models.AuthUser, error) { return f(token) }

type membershipFunc func(userID, workspaceID string) (*models.WorkspaceMember, error)

func (f membershipFunc) GetMembership(_ context.Context, userID, workspaceID string) (*models.WorkspaceMember, error) {
	return f(userID, workspaceID)
}

var olive = models.AuthUser{ID: "u1", Email: "olive@ragzy.ai", Name: "Olive"}

func newAuthEcho() *echo.Echo {
	parser := tokenParserFunc(func(token string) (models.AuthUser, error) {
		if token != "good" {
			return models.AuthUser{}, usecase.ErrInvalidToken
		}
		return olive, nil
	})
	members := membershipFunc(func(userID, workspaceID string) (*models.WorkspaceMember, error) {
		switch workspaceID {
		case "owned":
			return &models.WorkspaceMember{UserID: userID, WorkspaceID: workspaceID, Role: models.RoleOwner}, nil
		case "joined":
			return &models.WorkspaceMember{UserID: userID, WorkspaceID: workspaceID, Role: models.RoleMember}, nil
		default:
			return nil, usecase.ErrNotMember
		}
	})

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop().Sugar())
	ok := func(c echo.Context) error {
		member, _ := GetMember(c)
		return c.JSON(http.StatusOK, map[string]string{"user": GetUserID(c), "role": string(member.Role)})
	}
	g := e.Group("/workspaces/:workspaceId", JWTAuth(parser), WorkspaceMember(members))
	g.GET("", ok)
	g.DELETE("", ok, RequireRole(models.RoleOwner))
	return e
}

func TestJWTAuth(t *testing.T) {
	e := newAuthEcho()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, `{"success":false,"error":"Missing authorization header"}`},
		{"not a bearer token", "Basic abc", http.StatusUnauthorized, `{"success":false,"error":"Invalid authorization header format"}`},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, `{"success":false,"error":"Invalid or expired token"}`},
		{"valid token", "Bearer good", http.StatusOK, `{"user":"u1","role":"owner"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/workspaces/owned", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestWorkspaceMember(t *testing.T) {
	e := newAuthEcho()

	do := func(method, workspaceID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/workspaces/"+workspaceID, nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer good")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "joined")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"u1","role":"member"}`, rec.Body.String())

	rec = do(http.MethodGet, "elsewhere")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"You are not a member of this workspace"}`, rec.Body.String())

	rec = do(http.MethodDelete, "joined")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"You do not have permission to perform this action"}`, rec.Body.String())

	rec = do(http.MethodDelete, "owned")
	assert.Equal(t, http.StatusOK, rec.Code)
}
