package models

import (
	"time"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Permissions returns the default permission set stored with a membership.
func (r Role) Permissions() []string {
	switch r {
	case RoleOwner:
		return []string{"*"}
	case RoleAdmin:
		return []string{"read", "write", "manage"}
	default:
		return []string{"read", "write"}
	}
}

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusExpired  InviteStatus = "expired"
)

const InviteTTL = 7 * 24 * time.Hour

type Workspace struct {
	ID           string                `bson:"_id" json:"id"`
	Name         string                `bson:"name" json:"name"`
	URL          string                `bson:"url" json:"url"`
	Description  string                `bson:"description" json:"description"`
	OwnerID      string                `bson:"ownerId" json:"ownerId"`
	Settings     WorkspaceSettings     `bson:"settings" json:"settings"`
	Subscription WorkspaceSubscription `bson:"subscription" json:"subscription"`
	CreatedAt    time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time             `bson:"updatedAt" json:"updatedAt"`
}

func (Workspace) CollectionName() string { return "workspaces" }
func (w Workspace) GetID() string        { return w.ID }

type WorkspaceSettings struct {
	PrimaryColor string `bson:"primaryColor" json:"primaryColor"`
	Logo         string `bson:"logo,omitempty" json:"logo,omitempty"`
	Timezone     string `bson:"timezone" json:"timezone"`
	Language     string `bson:"language" json:"language"`
}

func DefaultWorkspaceSettings() WorkspaceSettings {
	return WorkspaceSettings{
		PrimaryColor: "#3b82f6",
		Timezone:     "UTC",
		Language:     "en",
	}
}

type WorkspaceSubscription struct {
	Plan        string     `bson:"plan" json:"plan"`
	Status      string     `bson:"status" json:"status"`
	TrialEndsAt *time.Time `bson:"trialEndsAt,omitempty" json:"trialEndsAt,omitempty"`
	ExpiresAt   *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
}

type WorkspaceMember struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	WorkspaceID string    `bson:"workspaceId" json:"workspaceId"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	DisplayName string    `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Role        Role      `bson:"role" json:"role"`
	Permissions []string  `bson:"permissions" json:"permissions"`
	JoinedAt    time.Time `bson:"joinedAt" json:"joinedAt"`
}

func (WorkspaceMember) CollectionName() string { return "workspace_members" }
func (m WorkspaceMember) GetID() string        { return m.ID }

func MemberID(userID, workspaceID string) string {
	return userID + "_" + workspaceID
}

type WorkspaceInvite struct {
	ID          string       `bson:"_id" json:"id"`
	WorkspaceID string       `bson:"workspaceId" json:"workspaceId"`
	Email       string       `bson:"email" json:"email"`
	Role        Role         `bson:"role" json:"role"`
	InvitedBy   string       `bson:"invitedBy" json:"invitedBy"`
	Token       string       `bson:"token" json:"token"`
	Status      InviteStatus `bson:"status" json:"status"`
	ExpiresAt   time.Time    `bson:"expiresAt" json:"expiresAt"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
}

func (WorkspaceInvite) CollectionName() string { return "workspace_invites" }
func (i WorkspaceInvite) GetID() string        { return i.ID }

type CreateWorkspaceParams struct {
	Name        string                   `json:"name" validate:"required"`
	URL         string                   `json:"url" validate:"required"`
	Description string                   `json:"description"`
	Settings    *UpdateWorkspaceSettings `json:"settings"`
}

type UpdateWorkspaceParams struct {
	Name        *string                  `json:"name"`
	URL         *string                  `json:"url"`
	Description *string                  `json:"description"`
	Settings    *UpdateWorkspaceSettings `json:"settings"`
}

type UpdateWorkspaceSettings struct {
	PrimaryColor *string `json:"primaryColor"`
	Logo         *string `json:"logo"`
	Timezone     *string `json:"timezone"`
	Language     *string `json:"language"`
}

// Apply merges the non-nil settings into s.
func (p *UpdateWorkspaceSettings) Apply(s *WorkspaceSettings) {
	if p == nil {
		return
	}
	if p.PrimaryColor != nil {
		s.PrimaryColor = *p.PrimaryColor
	}
	if p.Logo != nil {
		s.Logo = *p.Logo
	}
	if p.Timezone != nil {
		s.Timezone = *p.Timezone
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
}

type AddMemberParams struct {
	UserID      string `json:"userId" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role" validate:"omitempty,oneof=admin member"`
}

type CreateInviteParams struct {
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"omitempty,oneof=admin member"`
}

type AcceptInviteParams struct {
	Token string `json:"token" validate:"required"`
}
