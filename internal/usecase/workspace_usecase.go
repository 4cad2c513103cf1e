package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/repo/events"
	"github.com/ragzy-ai/ragzy-api/internal/repo/mongodb"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

var (
	ErrWorkspaceNotFound = models.NewError(http.StatusNotFound, "Workspace not found")
	ErrWorkspaceURLTaken = models.NewError(http.StatusConflict, "Workspace URL is already taken")
	ErrAlreadyMember     = models.NewError(http.StatusConflict, "User is already a member of this workspace")
	ErrNotMember         = models.NewError(http.StatusNotFound, "User is not a member of this workspace")
	ErrInvalidInvite     = models.NewError(http.StatusBadRequest, "Invalid or expired invite")
	ErrInviteExpired     = models.NewError(http.StatusBadRequest, "Invite has expired")
)

// WorkspaceMailer sends the emails triggered by workspace changes.
type WorkspaceMailer interface {
	SendWorkspaceCreated(ctx context.Context, req models.WorkspaceCreatedEmail) (*models.SendEmailResult, error)
	SendInvite(ctx context.Context, req models.InviteEmail) (*models.SendEmailResult, error)
}

type WorkspaceUseCase struct {
	workspaceRepo mongodb.WorkspaceRepository
	memberRepo    mongodb.MemberRepository
	inviteRepo    mongodb.InviteRepository
	mailer        WorkspaceMailer
	publisher     events.Publisher
	now           func() time.Time
}

func NewWorkspaceUseCase(
	workspaceRepo mongodb.WorkspaceRepository,
	memberRepo mongodb.MemberRepository,
	inviteRepo mongodb.InviteRepository,
	mailer WorkspaceMailer,
	publisher events.Publisher,
) *WorkspaceUseCase {
	return &WorkspaceUseCase{
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		inviteRepo:    inviteRepo,
		mailer:        mailer,
		publisher:     publisher,
		now:           time.Now,
	}
}

func (uc *WorkspaceUseCase) Create(ctx context.Context, user models.AuthUser, params models.CreateWorkspaceParams) (*models.Workspace, error) {
	if err := uc.ensureURLAvailable(ctx, params.URL, ""); err != nil {
		return nil, err
	}

	now := uc.now()
	ws := &models.Workspace{
		ID:          models.NewID(),
		Name:        params.Name,
		URL:         params.URL,
		Description: params.Description,
		OwnerID:     user.ID,
		Settings:    models.DefaultWorkspaceSettings(),
		Subscription: models.WorkspaceSubscription{
			Plan:   "free",
			Status: "active",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	params.Settings.Apply(&ws.Settings)

	if err := uc.workspaceRepo.Create(ctx, ws); err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			return nil, ErrWorkspaceURLTaken
		}
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	owner := &models.WorkspaceMember{
		UserID:      user.ID,
		WorkspaceID: ws.ID,
		Email:       user.Email,
		DisplayName: user.Name,
		Role:        models.RoleOwner,
		Permissions: models.RoleOwner.Permissions(),
		JoinedAt:    now,
	}
	if err := uc.memberRepo.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	publishEvent(ctx, uc.publisher, models.EventWorkspaceCreated, ws.ID, ws)

	if user.Email != "" {
		_, err := uc.mailer.SendWorkspaceCreated(ctx, models.WorkspaceCreatedEmail{
			Email:         user.Email,
			UserName:      util.FirstNonEmpty(user.Name, user.Email),
			WorkspaceName: ws.Name,
			WorkspaceID:   ws.ID,
		})
		if err != nil {
			log.Warnw(ctx, "failed to send workspace created email", "workspace_id", ws.ID, "error", err)
		}
	}
	return ws, nil
}

func (uc *WorkspaceUseCase) ensureURLAvailable(ctx context.Context, url, selfID string) error {
	existing, err := uc.workspaceRepo.GetByURL(ctx, url)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check workspace url: %w", err)
	}
	if existing.ID != selfID {
		return ErrWorkspaceURLTaken
	}
	return nil
}

func (uc *WorkspaceUseCase) Get(ctx context.Context, id string) (*models.Workspace, error) {
	ws, err := uc.workspaceRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return ws, nil
}

// ListForUser returns the workspaces the user is a member of.
func (uc *WorkspaceUseCase) ListForUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	memberships, err := uc.memberRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return []models.Workspace{}, nil
	}
	ids := util.ConvertList(memberships, func(m models.WorkspaceMember) string { return m.WorkspaceID })
	workspaces, err := uc.workspaceRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

func (uc *WorkspaceUseCase) Update(ctx context.Context, id string, params models.UpdateWorkspaceParams) (*models.Workspace, error) {
	ws, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if params.Name != nil {
		set["name"] = *params.Name
	}
	if params.URL != nil && *params.URL != ws.URL {
		if err := uc.ensureURLAvailable(ctx, *params.URL, id); err != nil {
			return nil, err
		}
		set["url"] = *params.URL
	}
	if params.Description != nil {
		set["description"] = *params.Description
	}
	if params.Settings != nil {
		settings := ws.Settings
		params.Settings.Apply(&settings)
		set["settings"] = settings
	}
	if len(set) == 0 {
		return ws, nil
	}

	updated, err := uc.workspaceRepo.Update(ctx, id, set)
	if errors.Is(err, models.ErrAlreadyExists) {
		return nil, ErrWorkspaceURLTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return updated, nil
}

// Delete removes the workspace together with its members and invites.
func (uc *WorkspaceUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.Get(ctx, id); err != nil {
		return err
	}
	if _, err := uc.memberRepo.DeleteByWorkspace(ctx, id); err != nil {
		return fmt.Errorf("failed to delete members: %w", err)
	}
	if _, err := uc.inviteRepo.DeleteByWorkspace(ctx, id); err != nil {
		return fmt.Errorf("failed to delete invites: %w", err)
	}
	if err := uc.workspaceRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	publishEvent(ctx, uc.publisher, models.EventWorkspaceDeleted, id, map[string]string{"workspaceId": id})
	return nil
}

// GetMembership returns ErrNotMember when the user has no access to the workspace.
func (uc *WorkspaceUseCase) GetMembership(ctx context.Context, userID, workspaceID string) (*models.WorkspaceMember, error) {
	member, err := uc.memberRepo.Get(ctx, userID, workspaceID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return member, nil
}

func (uc *WorkspaceUseCase) ListMembers(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error) {
	members, err := uc.memberRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (uc *WorkspaceUseCase) AddMember(ctx context.Context, workspaceID string, params models.AddMemberParams) (*models.WorkspaceMember, error) {
	role := params.Role
	if role == "" {
		role = models.RoleMember
	}
	member := &models.WorkspaceMember{
		UserID:      params.UserID,
		WorkspaceID: workspaceID,
		Email:       params.Email,
		DisplayName: params.DisplayName,
		Role:        role,
		Permissions: role.Permissions(),
		JoinedAt:    uc.now(),
	}
	if err := uc.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	publishEvent(ctx, uc.publisher, models.EventMemberAdded, workspaceID, member)
	return member, nil
}

func (uc *WorkspaceUseCase) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	member, err := uc.GetMembership(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	if member.Role == models.RoleOwner {
		return models.NewError(http.StatusBadRequest, "The workspace owner cannot be removed")
	}
	if err := uc.memberRepo.Delete(ctx, userID, workspaceID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

func (uc *WorkspaceUseCase) CreateInvite(ctx context.Context, workspaceID string, inviter models.AuthUser, params models.CreateInviteParams) (*models.WorkspaceInvite, error) {
	ws, err := uc.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	role := params.Role
	if role == "" {
		role = models.RoleMember
	}
	now := uc.now()
	invite := &models.WorkspaceInvite{
		ID:          models.NewID(),
		WorkspaceID: workspaceID,
		Email:       params.Email,
		Role:        role,
		InvitedBy:   inviter.ID,
		Token:       models.NewToken(),
		Status:      models.InviteStatusPending,
		ExpiresAt:   now.Add(models.InviteTTL),
		CreatedAt:   now,
	}
	if err := uc.inviteRepo.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	publishEvent(ctx, uc.publisher, models.EventInviteCreated, workspaceID, invite)

	_, err = uc.mailer.SendInvite(ctx, models.InviteEmail{
		Email:       invite.Email,
		CompanyName: ws.Name,
		InviterName: util.FirstNonEmpty(inviter.Name, inviter.Email, "A teammate"),
		InviteToken: invite.Token,
		Role:        string(invite.Role),
	})
	if err != nil {
		log.Warnw(ctx, "failed to send invite email", "invite_id", invite.ID, "error", err)
	}
	return invite, nil
}

func (uc *WorkspaceUseCase) ListInvites(ctx context.Context, workspaceID string) ([]models.WorkspaceInvite, error) {
	invites, err := uc.inviteRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

// AcceptInvite adds the user to the invited workspace and returns it.
func (uc *WorkspaceUseCase) AcceptInvite(ctx context.Context, user models.AuthUser, params models.AcceptInviteParams) (*models.Workspace, error) {
	invite, err := uc.inviteRepo.GetByToken(ctx, params.Token)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidInvite
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	if invite.Status != models.InviteStatusPending || invite.Token != params.Token {
		return nil, ErrInvalidInvite
	}
	if uc.now().After(invite.ExpiresAt) {
		if err := uc.inviteRepo.SetStatus(ctx, invite.ID, models.InviteStatusExpired); err != nil {
			log.Warnw(ctx, "failed to expire invite", "invite_id", invite.ID, "error", err)
		}
		return nil, ErrInviteExpired
	}

	_, err = uc.AddMember(ctx, invite.WorkspaceID, models.AddMemberParams{
		UserID:      user.ID,
		Email:       util.FirstNonEmpty(user.Email, invite.Email),
		DisplayName: user.Name,
		Role:        invite.Role,
	})
	if err != nil && !errors.Is(err, ErrAlreadyMember) {
		return nil, err
	}

	if err := uc.inviteRepo.SetStatus(ctx, invite.ID, models.InviteStatusAccepted); err != nil {
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}
	return uc.Get(ctx, invite.WorkspaceID)
}
