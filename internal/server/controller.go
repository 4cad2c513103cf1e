package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/repo/backend"
	"github.com/ragzy-ai/ragzy-api/internal/repo/redisstore"
	"github.com/ragzy-ai/ragzy-api/internal/usecase"
)

// Params are the dependencies of the HTTP layer.
type Params struct {
	fx.In

	Config      *config.Config
	Auth        *usecase.AuthUseCase
	Workspaces  *usecase.WorkspaceUseCase
	Chat        *usecase.ChatUseCase
	Agents      *usecase.AgentUseCase
	Knowledge   *usecase.KnowledgeUseCase
	Connections *usecase.ConnectionUseCase
	Proxy       *usecase.ProxyUseCase
	OAuth       *usecase.OAuthUseCase
	Emails      *usecase.EmailUseCase
	Backend     backend.Client
	RateLimiter redisstore.RateLimiter
}

type controller struct {
	conf        *config.Config
	workspaces  *usecase.WorkspaceUseCase
	chat        *usecase.ChatUseCase
	agents      *usecase.AgentUseCase
	knowledge   *usecase.KnowledgeUseCase
	connections *usecase.ConnectionUseCase
	proxy       *usecase.ProxyUseCase
	oauth       *usecase.OAuthUseCase
	emails      *usecase.EmailUseCase
	backend     backend.Client
}

func newController(p Params) *controller {
	return &controller{
		conf:        p.Config,
		workspaces:  p.Workspaces,
		chat:        p.Chat,
		agents:      p.Agents,
		knowledge:   p.Knowledge,
		connections: p.Connections,
		proxy:       p.Proxy,
		oauth:       p.OAuth,
		emails:      p.Emails,
		backend:     p.Backend,
	}
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "ragzy-api",
	})
}
