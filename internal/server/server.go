package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	echomdw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/server/middleware"
	"github.com/ragzy-ai/ragzy-api/pkg/logger"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

const publicWidgetPrefix = "/api/widget"

// NewEcho builds the HTTP server with every route mounted.
func NewEcho(p Params) (*echo.Echo, error) {
	corsOrigins, err := regexp.Compile(p.Config.Server.CORSOrigins)
	if err != nil {
		return nil, fmt.Errorf("invalid cors origins pattern: %w", err)
	}
	h := newController(p)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = middleware.NewValidator()
	e.JSONSerializer = middleware.JSONSerializer{}
	e.HTTPErrorHandler = middleware.ErrorHandler(logger.MustNamed("http"))

	logConfig := middleware.LogRequestConfig{
		Logger: logger.MustNamed("http"),
		Enabled: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path != "/health" && path != "/metrics"
		},
		// dashboard writes are logged with their (redacted) payload
		RequestBody: func(c echo.Context) bool {
			return c.Request().Method != http.MethodGet && strings.HasPrefix(c.Request().URL.Path, "/api/v1/")
		},
	}

	e.Use(middleware.Metrics())
	e.Use(middleware.RequestID())
	e.Use(middleware.LogRequest(logConfig))
	e.Use(echomdw.RecoverWithConfig(echomdw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigin: corsOrigins,
		Public: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, publicWidgetPrefix)
		},
	}))

	e.GET("/health", h.Health)

	rateLimit := func(prefix string) []echo.MiddlewareFunc {
		conf := p.Config.RateLimit
		if !conf.Enabled {
			return nil
		}
		return []echo.MiddlewareFunc{middleware.RateLimit(middleware.RateLimitConfig{
			Limiter:   p.RateLimiter,
			Prefix:    prefix,
			Requests:  conf.Requests,
			Window:    conf.Window,
			Whitelist: conf.Whitelist,
		})}
	}

	api := e.Group("/api")

	// integration proxies
	api.POST("/zendesk/connect", middleware.WrapHandler(h.ZendeskConnect))
	api.POST("/zendesk/disconnect", middleware.WrapHandler(h.ZendeskDisconnect))
	api.POST("/zendesk/create-ticket", middleware.WrapHandler(h.ZendeskCreateTicket))
	api.POST("/calendly/connect", middleware.WrapHandler(h.CalendlyConnect))
	api.GET("/calendly/status", middleware.WrapHandler(h.CalendlyStatus))
	api.GET("/calendly/available-slots", middleware.WrapHandler(h.CalendlyAvailableSlots))

	// oauth callbacks
	api.GET("/calendly/callback", middleware.WrapHandler(h.CalendlyCallback))
	api.GET("/notion/callback", middleware.WrapHandler(h.NotionCallback))
	api.GET("/google-sheets/callback", middleware.WrapHandler(h.GoogleSheetsCallback))
	api.GET("/whatsapp/callback", middleware.WrapHandler(h.WhatsAppCallback))

	h.registerEmailRoutes(api.Group("/emails", rateLimit("ratelimit:emails")...))

	// embedded widget
	api.GET("/widget/:id", middleware.WrapHandler(h.GetPublicWidget))
	widget := api.Group("/widget/:id", rateLimit("ratelimit:widget")...)
	widget.POST("/conversations", middleware.WrapHandler(h.StartConversation))
	widget.GET("/conversations/:conversationId/messages", middleware.WrapHandler(h.ListCustomerMessages))
	widget.POST("/conversations/:conversationId/messages", middleware.WrapHandler(h.SendCustomerMessage))
	widget.POST("/conversations/:conversationId/messages/read", middleware.WrapHandler(h.MarkCustomerMessagesRead))
	widget.PUT("/conversations/:conversationId/presence", middleware.WrapHandler(h.SetCustomerPresence))

	// dashboard
	authenticated := middleware.JWTAuth(p.Auth)
	v1 := api.Group("/v1", authenticated)
	v1.GET("/workspaces", middleware.WrapHandler(h.ListWorkspaces))
	v1.POST("/workspaces", middleware.WrapHandler(h.CreateWorkspace))
	v1.POST("/invites/accept", middleware.WrapHandler(h.AcceptInvite))

	managers := middleware.RequireRole(models.RoleOwner, models.RoleAdmin)
	owner := middleware.RequireRole(models.RoleOwner)

	ws := v1.Group("/workspaces/:workspaceId", middleware.WorkspaceMember(p.Workspaces))
	ws.GET("", middleware.WrapHandler(h.GetWorkspace))
	ws.PUT("", middleware.WrapHandler(h.UpdateWorkspace), managers)
	ws.DELETE("", middleware.WrapHandler(h.DeleteWorkspace), owner)

	ws.GET("/members", middleware.WrapHandler(h.ListMembers))
	ws.POST("/members", middleware.WrapHandler(h.AddMember), managers)
	ws.DELETE("/members/:userId", middleware.WrapHandler(h.RemoveMember), managers)
	ws.GET("/invites", middleware.WrapHandler(h.ListInvites), managers)
	ws.POST("/invites", middleware.WrapHandler(h.CreateInvite), managers)

	ws.GET("/widgets", middleware.WrapHandler(h.ListWidgets))
	ws.POST("/widgets", middleware.WrapHandler(h.CreateWidget))
	ws.GET("/widgets/:widgetId", middleware.WrapHandler(h.GetWidget))
	ws.PUT("/widgets/:widgetId", middleware.WrapHandler(h.UpdateWidget))
	ws.DELETE("/widgets/:widgetId", middleware.WrapHandler(h.DeleteWidget))
	ws.GET("/widgets/:widgetId/knowledge", middleware.WrapHandler(h.ListWidgetKnowledge))
	ws.POST("/widgets/:widgetId/knowledge", middleware.WrapHandler(h.CreateWidgetKnowledge))
	ws.DELETE("/knowledge-base/:itemId", middleware.WrapHandler(h.DeleteWidgetKnowledge))

	ws.GET("/conversations", middleware.WrapHandler(h.ListConversations))
	ws.GET("/conversations/:conversationId", middleware.WrapHandler(h.GetConversation))
	ws.POST("/conversations/:conversationId/read", middleware.WrapHandler(h.MarkConversationRead))
	ws.PUT("/conversations/:conversationId/status", middleware.WrapHandler(h.UpdateConversationStatus))
	ws.POST("/conversations/:conversationId/handover", middleware.WrapHandler(h.RequestHandover))
	ws.DELETE("/conversations/:conversationId/handover", middleware.WrapHandler(h.ClearHandover))
	ws.PUT("/conversations/:conversationId/presence", middleware.WrapHandler(h.SetBusinessPresence))
	ws.GET("/conversations/:conversationId/messages", middleware.WrapHandler(h.ListConversationMessages))
	ws.POST("/conversations/:conversationId/messages", middleware.WrapHandler(h.SendBusinessMessage))
	ws.POST("/conversations/:conversationId/messages/read", middleware.WrapHandler(h.MarkBusinessMessagesRead))

	ws.GET("/agents", middleware.WrapHandler(h.ListAgents))
	ws.POST("/agents", middleware.WrapHandler(h.CreateAgent))
	ws.GET("/agents/:agentId", middleware.WrapHandler(h.GetAgent))
	ws.PUT("/agents/:agentId", middleware.WrapHandler(h.UpdateAgent))
	ws.DELETE("/agents/:agentId", middleware.WrapHandler(h.DeleteAgent))
	ws.POST("/agents/:agentId/duplicate", middleware.WrapHandler(h.DuplicateAgent))
	ws.GET("/agents/:agentId/knowledge", middleware.WrapHandler(h.ListAgentKnowledge))
	ws.POST("/agents/:agentId/knowledge", middleware.WrapHandler(h.CreateAgentKnowledge))
	ws.GET("/knowledge", middleware.WrapHandler(h.ListWorkspaceKnowledge))
	ws.DELETE("/knowledge/:itemId", middleware.WrapHandler(h.DeleteAgentKnowledge))

	ws.GET("/notion/pages", middleware.WrapHandler(h.SearchNotionPages))
	ws.POST("/agents/:agentId/notion/import", middleware.WrapHandler(h.ImportNotion))
	ws.GET("/agents/:agentId/notion/authorize", middleware.WrapHandler(h.NotionAuthorizeURL))
	ws.GET("/google-sheets/spreadsheets", middleware.WrapHandler(h.ListSpreadsheets))
	ws.POST("/agents/:agentId/google-sheets/import", middleware.WrapHandler(h.ImportSheet))
	ws.GET("/agents/:agentId/google-sheets/authorize", middleware.WrapHandler(h.GoogleSheetsAuthorizeURL))

	ws.GET("/integrations", middleware.WrapHandler(h.ListIntegrations))
	ws.GET("/integrations/:provider", middleware.WrapHandler(h.GetIntegration))
	ws.DELETE("/integrations/:provider", middleware.WrapHandler(h.DisconnectIntegration))
	ws.PUT("/integrations/:provider/settings", middleware.WrapHandler(h.UpdateIntegrationSettings))

	if p.Config.Server.PprofEnabled {
		middleware.Pprof(e, "", authenticated)
	}

	return e, nil
}

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	e *echo.Echo,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := conf.Server.Addr()
			go func() {
				log.Infow(ctx, "starting HTTP server", "addr", addr)
				if err := e.Start(addr); !errors.Is(err, http.ErrServerClosed) {
					log.Errorw(context.Background(), "HTTP server stopped", "error", err)
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
