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
)

var ErrAgentNotFound = models.NewError(http.StatusNotFound, "Agent not found")

// KnowledgeRemover removes indexed knowledge from the backend.
type KnowledgeRemover interface {
	DeleteKnowledge(ctx context.Context, id string) error
}

type AgentUseCase struct {
	agentRepo     mongodb.AgentRepository
	knowledgeRepo mongodb.AgentKnowledgeRepository
	backend       KnowledgeRemover
	publisher     events.Publisher
	now           func() time.Time
}

func NewAgentUseCase(
	agentRepo mongodb.AgentRepository,
	knowledgeRepo mongodb.AgentKnowledgeRepository,
	backend KnowledgeRemover,
	publisher events.Publisher,
) *AgentUseCase {
	return &AgentUseCase{
		agentRepo:     agentRepo,
		knowledgeRepo: knowledgeRepo,
		backend:       backend,
		publisher:     publisher,
		now:           time.Now,
	}
}

func (uc *AgentUseCase) Create(ctx context.Context, workspaceID string, user models.AuthUser, params models.CreateAgentParams) (*models.Agent, error) {
	now := uc.now()
	agent := &models.Agent{
		ID:          models.NewID(),
		WorkspaceID: workspaceID,
		Name:        params.Name,
		Description: params.Description,
		Status:      models.AgentStatusActive,
		Settings:    models.DefaultAgentSettings(),
		CreatedBy:   user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	params.Settings.Apply(&agent.Settings)

	if err := uc.agentRepo.Create(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	publishEvent(ctx, uc.publisher, models.EventAgentCreated, workspaceID, agent)
	return agent, nil
}

func (uc *AgentUseCase) List(ctx context.Context, workspaceID string) ([]models.Agent, error) {
	agents, err := uc.agentRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

// Get returns ErrAgentNotFound when the agent belongs to another workspace.
func (uc *AgentUseCase) Get(ctx context.Context, workspaceID, id string) (*models.Agent, error) {
	agent, err := uc.agentRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	if agent.WorkspaceID != workspaceID {
		return nil, ErrAgentNotFound
	}
	return agent, nil
}

func (uc *AgentUseCase) Update(ctx context.Context, workspaceID, id string, params models.UpdateAgentParams) (*models.Agent, error) {
	agent, err := uc.Get(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if params.Name != nil {
		set["name"] = *params.Name
	}
	if params.Description != nil {
		set["description"] = *params.Description
	}
	if params.Status != nil {
		set["status"] = *params.Status
	}
	if params.Settings != nil {
		settings := agent.Settings
		params.Settings.Apply(&settings)
		set["settings"] = settings
	}
	if params.AIConfig != nil {
		set["aiConfig"] = params.AIConfig
	}
	if len(set) == 0 {
		return agent, nil
	}

	updated, err := uc.agentRepo.Update(ctx, id, set)
	if err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}
	return updated, nil
}

// Delete removes the agent and its knowledge items. Backend cleanup is best effort.
func (uc *AgentUseCase) Delete(ctx context.Context, workspaceID, id string) error {
	if _, err := uc.Get(ctx, workspaceID, id); err != nil {
		return err
	}

	items, err := uc.knowledgeRepo.ListByAgent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list agent knowledge: %w", err)
	}
	for _, item := range items {
		if err := uc.backend.DeleteKnowledge(ctx, item.ID); err != nil {
			log.Warnw(ctx, "failed to delete knowledge from backend", "knowledge_id", item.ID, "error", err)
		}
	}
	if _, err := uc.knowledgeRepo.DeleteByAgent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete agent knowledge: %w", err)
	}

	if err := uc.agentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	publishEvent(ctx, uc.publisher, models.EventAgentDeleted, workspaceID, map[string]string{"agentId": id, "workspaceId": workspaceID})
	return nil
}

// Duplicate copies the agent configuration under a new id with fresh stats.
func (uc *AgentUseCase) Duplicate(ctx context.Context, workspaceID, id string, user models.AuthUser) (*models.Agent, error) {
	src, err := uc.Get(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	clone := *src
	clone.ID = models.NewID()
	clone.Name = src.Name + " (Copy)"
	clone.Stats = models.AgentStats{}
	clone.CreatedBy = user.ID
	clone.CreatedAt = now
	clone.UpdatedAt = now

	if err := uc.agentRepo.Create(ctx, &clone); err != nil {
		return nil, fmt.Errorf("failed to duplicate agent: %w", err)
	}
	publishEvent(ctx, uc.publisher, models.EventAgentCreated, workspaceID, &clone)
	return &clone, nil
}
