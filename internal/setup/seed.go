// Package setup loads demo data into a fresh database.
package setup

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/repo/mongodb"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

//go:embed data/demo_workspaces.yaml
var demoWorkspacesData []byte

type DemoWorkspace struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	URL         string       `yaml:"url"`
	Description string       `yaml:"description"`
	Owner       DemoOwner    `yaml:"owner"`
	Widgets     []DemoWidget `yaml:"widgets"`
}

type DemoOwner struct {
	ID    string `yaml:"id"`
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

type DemoWidget struct {
	ID                string `yaml:"id"`
	Name              string `yaml:"name"`
	WelcomeMessage    string `yaml:"welcome_message"`
	PrimaryColor      string `yaml:"primary_color"`
	Position          string `yaml:"position"`
	ButtonText        string `yaml:"button_text"`
	PlaceholderText   string `yaml:"placeholder_text"`
	OfflineMessage    string `yaml:"offline_message"`
	CollectEmail      bool   `yaml:"collect_email"`
	NotificationEmail string `yaml:"notification_email"`
}

type Seeder struct {
	workspaces mongodb.WorkspaceRepository
	members    mongodb.MemberRepository
	widgets    mongodb.WidgetRepository
	now        func() time.Time
}

func NewSeeder(workspaces mongodb.WorkspaceRepository, members mongodb.MemberRepository, widgets mongodb.WidgetRepository) *Seeder {
	return &Seeder{
		workspaces: workspaces,
		members:    members,
		widgets:    widgets,
		now:        time.Now,
	}
}

// LoadDemoWorkspaces parses the embedded demo data.
func LoadDemoWorkspaces() ([]DemoWorkspace, error) {
	var demos []DemoWorkspace
	if err := yaml.Unmarshal(demoWorkspacesData, &demos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal demo workspaces: %w", err)
	}
	return demos, nil
}

// Seed creates the given workspaces with their owner and widgets. Workspaces
// whose url is already taken are skipped, so running it twice is harmless.
func (s *Seeder) Seed(ctx context.Context, demos []DemoWorkspace) (int, error) {
	created := 0
	for _, demo := range demos {
		_, err := s.workspaces.GetByURL(ctx, demo.URL)
		if err == nil {
			log.Infow(ctx, "demo workspace already exists", "url", demo.URL)
			continue
		}
		if !errors.Is(err, models.ErrNotFound) {
			return created, fmt.Errorf("failed to look up workspace %s: %w", demo.URL, err)
		}
		if err := s.seedWorkspace(ctx, demo); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Seeder) seedWorkspace(ctx context.Context, demo DemoWorkspace) error {
	now := s.now()
	ws := &models.Workspace{
		ID:          demo.ID,
		Name:        demo.Name,
		URL:         demo.URL,
		Description: demo.Description,
		OwnerID:     demo.Owner.ID,
		Settings:    models.DefaultWorkspaceSettings(),
		Subscription: models.WorkspaceSubscription{
			Plan:   "free",
			Status: "active",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ws.ID == "" {
		ws.ID = models.NewID()
	}
	if err := s.workspaces.Create(ctx, ws); err != nil {
		return fmt.Errorf("failed to create workspace %s: %w", demo.URL, err)
	}

	owner := &models.WorkspaceMember{
		UserID:      demo.Owner.ID,
		WorkspaceID: ws.ID,
		Email:       demo.Owner.Email,
		DisplayName: demo.Owner.Name,
		Role:        models.RoleOwner,
		Permissions: models.RoleOwner.Permissions(),
		JoinedAt:    now,
	}
	if err := s.members.Create(ctx, owner); err != nil && !errors.Is(err, models.ErrAlreadyExists) {
		return fmt.Errorf("failed to create owner of %s: %w", demo.URL, err)
	}

	for _, w := range demo.Widgets {
		widget := &models.ChatWidget{
			ID:                w.ID,
			BusinessID:        ws.ID,
			Name:              w.Name,
			WelcomeMessage:    w.WelcomeMessage,
			PrimaryColor:      w.PrimaryColor,
			Position:          w.Position,
			ButtonText:        w.ButtonText,
			PlaceholderText:   w.PlaceholderText,
			OfflineMessage:    w.OfflineMessage,
			CollectEmail:      w.CollectEmail,
			NotificationEmail: w.NotificationEmail,
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if widget.ID == "" {
			widget.ID = models.NewID()
		}
		if err := s.widgets.Create(ctx, widget); err != nil && !errors.Is(err, models.ErrAlreadyExists) {
			return fmt.Errorf("failed to create widget %s: %w", w.Name, err)
		}
	}

	log.Infow(ctx, "demo workspace created", "workspace_id", ws.ID, "widgets", len(demo.Widgets))
	return nil
}
