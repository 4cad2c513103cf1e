package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/server/middleware"
)

type sendFunc[R any] func(ctx context.Context, req R) (*models.SendEmailResult, error)

// emailHandler adapts an email sender to a route handler that answers with
// the given message and the provider message id.
func emailHandler[R any](send sendFunc[R], message string) func(echo.Context, R) (*middleware.Response, error) {
	return func(c echo.Context, req R) (*middleware.Response, error) {
		result, err := send(c.Request().Context(), req)
		if err != nil {
			return nil, emailError(err)
		}
		return &middleware.Response{
			Success:   true,
			Message:   message,
			MessageID: result.MessageID,
		}, nil
	}
}

// emailError surfaces provider failures to the caller as a 500 carrying the
// provider message.
func emailError(err error) error {
	var modelErr *models.Error
	if errors.As(err, &modelErr) {
		return err
	}
	return models.WrapError(http.StatusInternalServerError, err.Error(), err)
}

func (h *controller) registerEmailRoutes(g *echo.Group) {
	g.POST("/knowledge-base-processed", middleware.WrapHandler(emailHandler(h.emails.SendKnowledgeBaseProcessed, "Knowledge base processed email sent successfully")))
	g.POST("/article", middleware.WrapHandler(emailHandler(h.emails.SendArticle, "Article notification sent successfully")))
	g.POST("/message-notification", middleware.WrapHandler(emailHandler(h.emails.SendMessageNotification, "Notification sent successfully")))
	g.POST("/agent-deployed", middleware.WrapHandler(emailHandler(h.emails.SendAgentDeployed, "Agent deployed email sent successfully")))
	g.POST("/welcome", middleware.WrapHandler(emailHandler(h.emails.SendWelcome, "Welcome email sent successfully")))
	g.POST("/invite", middleware.WrapHandler(emailHandler(h.emails.SendInvite, "Invite email sent successfully")))
	g.POST("/lead-collected", middleware.WrapHandler(emailHandler(h.emails.SendLeadCollected, "Lead collected email sent successfully")))
	g.POST("/workspace-created", middleware.WrapHandler(emailHandler(h.emails.SendWorkspaceCreated, "Workspace created email sent successfully")))
	g.POST("/password-reset", middleware.WrapHandler(emailHandler(h.emails.SendPasswordReset, "Password reset email sent successfully")))
}
