package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/server/middleware"
)

type workspaceRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
}

type updateWorkspaceRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	models.UpdateWorkspaceParams
}

type addMemberRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	models.AddMemberParams
}

type memberRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	UserID      string `param:"userId" json:"-" validate:"required"`
}

type createInviteRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	models.CreateInviteParams
}

type listWorkspacesRequest struct {
	UserID string `auth:"id" json:"-"`
}

// currentUser returns the authenticated user. Dashboard routes always run
// behind JWTAuth so the zero value only shows up in misconfigured routes.
func currentUser(c echo.Context) models.AuthUser {
	user, _ := middleware.GetUser(c)
	return user
}

func (h *controller) ListWorkspaces(c echo.Context, req listWorkspacesRequest) ([]models.Workspace, error) {
	return h.workspaces.ListForUser(c.Request().Context(), req.UserID)
}

func (h *controller) CreateWorkspace(c echo.Context, req models.CreateWorkspaceParams) (*middleware.Response, error) {
	ws, err := h.workspaces.Create(c.Request().Context(), currentUser(c), req)
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Status: http.StatusCreated, Success: true, Data: ws}, nil
}

func (h *controller) AcceptInvite(c echo.Context, req models.AcceptInviteParams) (*models.Workspace, error) {
	return h.workspaces.AcceptInvite(c.Request().Context(), currentUser(c), req)
}

func (h *controller) GetWorkspace(c echo.Context, req workspaceRequest) (*models.Workspace, error) {
	return h.workspaces.Get(c.Request().Context(), req.WorkspaceID)
}

func (h *controller) UpdateWorkspace(c echo.Context, req updateWorkspaceRequest) (*models.Workspace, error) {
	return h.workspaces.Update(c.Request().Context(), req.WorkspaceID, req.UpdateWorkspaceParams)
}

func (h *controller) DeleteWorkspace(c echo.Context, req workspaceRequest) error {
	return h.workspaces.Delete(c.Request().Context(), req.WorkspaceID)
}

func (h *controller) ListMembers(c echo.Context, req workspaceRequest) ([]models.WorkspaceMember, error) {
	return h.workspaces.ListMembers(c.Request().Context(), req.WorkspaceID)
}

func (h *controller) AddMember(c echo.Context, req addMemberRequest) (*models.WorkspaceMember, error) {
	return h.workspaces.AddMember(c.Request().Context(), req.WorkspaceID, req.AddMemberParams)
}

func (h *controller) RemoveMember(c echo.Context, req memberRequest) error {
	return h.workspaces.RemoveMember(c.Request().Context(), req.WorkspaceID, req.UserID)
}

func (h *controller) ListInvites(c echo.Context, req workspaceRequest) ([]models.WorkspaceInvite, error) {
	return h.workspaces.ListInvites(c.Request().Context(), req.WorkspaceID)
}

func (h *controller) CreateInvite(c echo.Context, req createInviteRequest) (*models.WorkspaceInvite, error) {
	return h.workspaces.CreateInvite(c.Request().Context(), req.WorkspaceID, currentUser(c), req.CreateInviteParams)
}
