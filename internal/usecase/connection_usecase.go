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
	"github.com/ragzy-ai/ragzy-api/internal/repo/providers"
	"github.com/ragzy-ai/ragzy-api/pkg/crypto"
)

var (
	ErrUnknownProvider      = models.NewError(http.StatusNotFound, "Unknown integration provider")
	ErrConnectionNotFound   = models.NewError(http.StatusNotFound, "Integration is not connected")
	ErrAgentIDRequired      = models.NewError(http.StatusBadRequest, "agentId is required for this integration")
	ErrConnectionNoSettings = models.NewError(http.StatusBadRequest, "No settings to update")
)

type ConnectionUseCase struct {
	connectionRepo mongodb.ConnectionRepository
	registry       *providers.Registry
	cipher         crypto.Cipher
	publisher      events.Publisher
	now            func() time.Time
}

func NewConnectionUseCase(
	connectionRepo mongodb.ConnectionRepository,
	registry *providers.Registry,
	cipher crypto.Cipher,
	publisher events.Publisher,
) *ConnectionUseCase {
	return &ConnectionUseCase{
		connectionRepo: connectionRepo,
		registry:       registry,
		cipher:         cipher,
		publisher:      publisher,
		now:            time.Now,
	}
}

func (uc *ConnectionUseCase) descriptor(provider models.Provider, agentID string) (providers.Descriptor, error) {
	d, err := uc.registry.Get(provider)
	if err != nil {
		return providers.Descriptor{}, ErrUnknownProvider
	}
	if d.AgentScoped && agentID == "" {
		return providers.Descriptor{}, ErrAgentIDRequired
	}
	return d, nil
}

// Resolve parses a provider name from a route.
func (uc *ConnectionUseCase) Resolve(name string) (models.Provider, error) {
	d, err := uc.registry.GetByName(name)
	if err != nil {
		return "", ErrUnknownProvider
	}
	return d.Provider, nil
}

func (uc *ConnectionUseCase) Get(ctx context.Context, provider models.Provider, workspaceID, agentID string) (*models.Connection, error) {
	d, err := uc.descriptor(provider, agentID)
	if err != nil {
		return nil, err
	}
	conn, err := uc.connectionRepo.Get(ctx, d.Collection, d.ConnectionID(workspaceID, agentID))
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s connection: %w", provider, err)
	}
	return conn, nil
}

func (uc *ConnectionUseCase) Status(ctx context.Context, provider models.Provider, workspaceID, agentID string) (*models.ConnectionStatus, error) {
	d, err := uc.descriptor(provider, agentID)
	if err != nil {
		return nil, err
	}
	status := &models.ConnectionStatus{Provider: provider}

	conn, err := uc.Get(ctx, provider, workspaceID, agentID)
	if errors.Is(err, ErrConnectionNotFound) {
		return status, nil
	}
	if err != nil {
		return nil, err
	}
	status.Connected = true
	status.Configured = d.IsConfigured(conn)
	status.Connection = conn
	return status, nil
}

// ListStatuses reports every provider. Agent scoped providers are skipped
// when no agent is given.
func (uc *ConnectionUseCase) ListStatuses(ctx context.Context, workspaceID, agentID string) ([]models.ConnectionStatus, error) {
	statuses := make([]models.ConnectionStatus, 0)
	for _, d := range uc.registry.List() {
		if d.AgentScoped && agentID == "" {
			continue
		}
		status, err := uc.Status(ctx, d.Provider, workspaceID, agentID)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}

// Save merges conn into the stored connection. Tokens are encrypted first.
func (uc *ConnectionUseCase) Save(ctx context.Context, conn *models.Connection) (*models.Connection, error) {
	d, err := uc.descriptor(conn.Provider, conn.AgentID)
	if err != nil {
		return nil, err
	}

	toStore := *conn
	toStore.ID = d.ConnectionID(conn.WorkspaceID, conn.AgentID)
	if !d.AgentScoped {
		toStore.AgentID = ""
	}
	if toStore.AccessToken, err = uc.encrypt(conn.AccessToken); err != nil {
		return nil, err
	}
	if toStore.RefreshToken, err = uc.encrypt(conn.RefreshToken); err != nil {
		return nil, err
	}

	saved, err := uc.connectionRepo.Save(ctx, d.Collection, &toStore)
	if err != nil {
		return nil, fmt.Errorf("failed to save %s connection: %w", conn.Provider, err)
	}
	publishEvent(ctx, uc.publisher, models.EventConnectionSaved, saved.WorkspaceID, saved)
	return saved, nil
}

func (uc *ConnectionUseCase) encrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	encrypted, err := uc.cipher.Encrypt(token)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt token: %w", err)
	}
	return encrypted, nil
}

// AccessToken returns the decrypted access token of a stored connection.
func (uc *ConnectionUseCase) AccessToken(ctx context.Context, provider models.Provider, workspaceID, agentID string) (string, error) {
	conn, err := uc.Get(ctx, provider, workspaceID, agentID)
	if err != nil {
		return "", err
	}
	if conn.AccessToken == "" {
		return "", ErrConnectionNotFound
	}
	token, err := uc.cipher.Decrypt(conn.AccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s token: %w", provider, err)
	}
	return token, nil
}

func (uc *ConnectionUseCase) UpdateSettings(ctx context.Context, provider models.Provider, workspaceID, agentID string, settings models.IntegrationSettings) (*models.Connection, error) {
	d, err := uc.descriptor(provider, agentID)
	if err != nil {
		return nil, err
	}

	set := settingsUpdate(settings)
	if len(set) == 0 {
		return nil, ErrConnectionNoSettings
	}
	conn, err := uc.connectionRepo.Update(ctx, d.Collection, d.ConnectionID(workspaceID, agentID), set)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update %s settings: %w", provider, err)
	}
	return conn, nil
}

func settingsUpdate(s models.IntegrationSettings) bson.M {
	set := bson.M{}
	for field, v := range map[string]*string{
		"zendeskAgentId":    s.ZendeskAgentID,
		"zendeskAgentName":  s.ZendeskAgentName,
		"zapierAgentId":     s.ZapierAgentID,
		"zapierAgentName":   s.ZapierAgentName,
		"webhookUrl":        s.WebhookURL,
		"phoneNumberId":     s.PhoneNumberID,
		"phoneNumber":       s.PhoneNumber,
		"businessAccountId": s.BusinessAccountID,
		"baseInstructions":  s.BaseInstructions,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	if s.AutoAssignEnabled != nil {
		set["autoAssignEnabled"] = *s.AutoAssignEnabled
	}
	if s.AutoReplyEnabled != nil {
		set["autoReplyEnabled"] = *s.AutoReplyEnabled
	}
	return set
}

// Disconnect deletes the stored connection. Deleting a missing one is not an error.
func (uc *ConnectionUseCase) Disconnect(ctx context.Context, provider models.Provider, workspaceID, agentID string) error {
	d, err := uc.descriptor(provider, agentID)
	if err != nil {
		return err
	}
	id := d.ConnectionID(workspaceID, agentID)
	if err := uc.connectionRepo.Delete(ctx, d.Collection, id); err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to delete %s connection: %w", provider, err)
	}
	publishEvent(ctx, uc.publisher, models.EventConnectionDeleted, workspaceID, map[string]string{
		"provider":     string(provider),
		"connectionId": id,
	})
	return nil
}
