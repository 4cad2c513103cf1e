package server

import (
	"encoding/json"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

func (h *controller) ZendeskConnect(c echo.Context, req models.ZendeskConnectParams) (json.RawMessage, error) {
	return h.proxy.ZendeskConnect(c.Request().Context(), req)
}

func (h *controller) ZendeskDisconnect(c echo.Context, req models.ZendeskDisconnectParams) (json.RawMessage, error) {
	return h.proxy.ZendeskDisconnect(c.Request().Context(), req)
}

func (h *controller) ZendeskCreateTicket(c echo.Context, req models.ZendeskTicketParams) (json.RawMessage, error) {
	return h.proxy.ZendeskCreateTicket(c.Request().Context(), req)
}

func (h *controller) CalendlyConnect(c echo.Context, req models.CalendlyConnectParams) (json.RawMessage, error) {
	return h.proxy.CalendlyConnect(c.Request().Context(), req)
}

func (h *controller) CalendlyStatus(c echo.Context, req models.CalendlyStatusParams) (json.RawMessage, error) {
	return h.proxy.CalendlyStatus(c.Request().Context(), req)
}

func (h *controller) CalendlyAvailableSlots(c echo.Context, req models.CalendlySlotsParams) (json.RawMessage, error) {
	return h.proxy.CalendlyAvailableSlots(c.Request().Context(), req)
}
