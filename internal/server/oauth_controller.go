package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

func (h *controller) CalendlyCallback(c echo.Context, req models.OAuthCallbackParams) error {
	page, err := h.oauth.CalendlyCallback(c.Request().Context(), req)
	if err != nil {
		return err
	}
	if !page.Success {
		return h.renderCallbackPage(c, calendlyErrorPage, page)
	}
	return h.renderCallbackPage(c, calendlyConnectedPage, page)
}

func (h *controller) WhatsAppCallback(c echo.Context, req models.OAuthCallbackParams) error {
	page, err := h.oauth.WhatsAppCallback(c.Request().Context(), req)
	if err != nil {
		return err
	}
	if !page.Success {
		return h.renderCallbackPage(c, whatsAppErrorPage, page)
	}
	return h.renderCallbackPage(c, whatsAppConnectedPage, page)
}

func (h *controller) NotionCallback(c echo.Context, req models.OAuthCallbackParams) error {
	return c.Redirect(http.StatusTemporaryRedirect, h.oauth.NotionCallback(c.Request().Context(), req))
}

func (h *controller) GoogleSheetsCallback(c echo.Context, req models.OAuthCallbackParams) error {
	return c.Redirect(http.StatusTemporaryRedirect, h.oauth.GoogleSheetsCallback(c.Request().Context(), req))
}
