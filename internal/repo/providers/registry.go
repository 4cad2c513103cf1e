// Package providers describes the third party integrations a workspace can connect.
package providers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

// Descriptor tells how connections of one provider are stored and when they
// are ready to use.
type Descriptor struct {
	Provider   models.Provider
	Collection string

	// AgentScoped providers keep one connection per agent instead of per workspace.
	AgentScoped bool

	// Configured reports whether a stored connection has the settings it needs.
	// Nil means any stored connection is configured.
	Configured func(c *models.Connection) bool
}

func (d Descriptor) ConnectionID(workspaceID, agentID string) string {
	return models.ConnectionID(d.Provider, workspaceID, agentID, d.AgentScoped)
}

func (d Descriptor) IsConfigured(c *models.Connection) bool {
	if c == nil {
		return false
	}
	if d.Configured == nil {
		return true
	}
	return d.Configured(c)
}

// Registry maps provider names to their descriptors.
type Registry struct {
	descriptors map[models.Provider]Descriptor
	mu          sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[models.Provider]Descriptor),
	}
}

// NewDefaultRegistry returns a registry with every supported provider.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range defaultDescriptors() {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

func defaultDescriptors() []Descriptor {
	return []Descriptor{
		{
			Provider:   models.ProviderNotion,
			Collection: "notionConnections",
		},
		{
			Provider:   models.ProviderGoogleSheets,
			Collection: "googleSheetsConnections",
		},
		{
			Provider:    models.ProviderZendesk,
			Collection:  "zendeskConnections",
			AgentScoped: true,
			Configured: func(c *models.Connection) bool {
				return c.ZendeskAgentID != "" && c.BaseInstructions != ""
			},
		},
		{
			Provider:    models.ProviderWhatsApp,
			Collection:  "whatsappConnections",
			AgentScoped: true,
			Configured: func(c *models.Connection) bool {
				return c.PhoneNumberID != "" && c.BaseInstructions != ""
			},
		},
		{
			Provider:    models.ProviderZapier,
			Collection:  "zapierIntegrations",
			AgentScoped: true,
			Configured: func(c *models.Connection) bool {
				return c.ZapierAgentID != "" && c.BaseInstructions != ""
			},
		},
	}
}

func (r *Registry) Register(d Descriptor) error {
	if d.Provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}
	if d.Collection == "" {
		return fmt.Errorf("provider %s has no collection", d.Provider)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[d.Provider]; exists {
		return fmt.Errorf("provider %s already registered", d.Provider)
	}
	r.descriptors[d.Provider] = d
	return nil
}

func (r *Registry) Get(provider models.Provider) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.descriptors[provider]
	if !exists {
		return Descriptor{}, fmt.Errorf("provider %s: %w", provider, models.ErrNotFound)
	}
	return d, nil
}

// GetByName looks a provider up by name, ignoring case and hyphens.
func (r *Registry) GetByName(name string) (Descriptor, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	return r.Get(models.Provider(normalized))
}

// List returns the registered descriptors sorted by provider name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Provider < list[j].Provider })
	return list
}
