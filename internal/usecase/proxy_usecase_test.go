package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type fakeConnectionRemover struct {
	calls []string
	err   error
}

func (r *fakeConnectionRemover) Disconnect(_ context.Context, provider models.Provider, workspaceID, agentID string) error {
	r.calls = append(r.calls, string(provider)+"/"+workspaceID+"/"+agentID)
	return r.err
}

func TestProxyValidation(t *testing.T) {
	uc := NewProxyUseCase(newBackendStub(t, nil), &fakeConnectionRemover{})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{
			name: "zendesk connect without agent",
			call: func() error {
				_, err := uc.ZendeskConnect(ctx, models.ZendeskConnectParams{WorkspaceID: "ws1", Subdomain: "acme"})
				return err
			},
			want: "Missing workspaceId or agentId",
		},
		{
			name: "zendesk connect without subdomain",
			call: func() error {
				_, err := uc.ZendeskConnect(ctx, models.ZendeskConnectParams{WorkspaceID: "ws1", AgentID: "a1"})
				return err
			},
			want: "Missing subdomain. Please provide your Zendesk subdomain.",
		},
		{
			name: "zendesk disconnect",
			call: func() error {
				_, err := uc.ZendeskDisconnect(ctx, models.ZendeskDisconnectParams{AgentID: "a1"})
				return err
			},
			want: "Missing workspaceId or agentId",
		},
		{
			name: "zendesk ticket",
			call: func() error {
				_, err := uc.ZendeskCreateTicket(ctx, models.ZendeskTicketParams{WorkspaceID: "ws1", AgentID: "a1", Subject: "Help"})
				return err
			},
			want: "Missing required fields",
		},
		{
			name: "calendly connect",
			call: func() error {
				_, err := uc.CalendlyConnect(ctx, models.CalendlyConnectParams{WorkspaceID: "ws1"})
				return err
			},
			want: "Missing workspaceId or agentId",
		},
		{
			name: "calendly status",
			call: func() error {
				_, err := uc.CalendlyStatus(ctx, models.CalendlyStatusParams{AgentID: "a1"})
				return err
			},
			want: "Missing workspace_id or agent_id query parameters",
		},
		{
			name: "calendly slots",
			call: func() error {
				_, err := uc.CalendlyAvailableSlots(ctx, models.CalendlySlotsParams{WorkspaceID: "ws1", AgentID: "a1"})
				return err
			},
			want: "Missing required parameters: workspace_id, agent_id, or event_type_uri",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var appErr *models.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
			assert.Equal(t, tt.want, appErr.Message)
		})
	}
}

func TestProxyPassesBackendJSONThrough(t *testing.T) {
	uc := NewProxyUseCase(newBackendStub(t, map[string]http.HandlerFunc{
		"/api/zendesk/create-ticket": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Customer", body["requester_name"])
			assert.Equal(t, "It broke", body["comment_body"])
			respond(http.StatusOK, `{"success":true,"ticket":{"id":42,"status":"new"}}`)(w, r)
		},
		"/api/calendly/status": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "ws1", r.URL.Query().Get("workspace_id"))
			assert.Equal(t, "a1", r.URL.Query().Get("agent_id"))
			respond(http.StatusOK, `{"connected":false}`)(w, r)
		},
		"/api/calendly/available-slots": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "https://api.calendly.com/event_types/e1", r.URL.Query().Get("event_type_uri"))
			assert.False(t, r.URL.Query().Has("end_time"))
			respond(http.StatusOK, `{"slots":[]}`)(w, r)
		},
	}), &fakeConnectionRemover{})
	ctx := context.Background()

	raw, err := uc.ZendeskCreateTicket(ctx, models.ZendeskTicketParams{
		WorkspaceID: "ws1", AgentID: "a1", Subject: "Help", CommentBody: "It broke",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"ticket":{"id":42,"status":"new"}}`, string(raw))

	raw, err = uc.CalendlyStatus(ctx, models.CalendlyStatusParams{WorkspaceID: "ws1", AgentID: "a1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"connected":false}`, string(raw))

	raw, err = uc.CalendlyAvailableSlots(ctx, models.CalendlySlotsParams{
		WorkspaceID: "ws1", AgentID: "a1", EventTypeURI: "https://api.calendly.com/event_types/e1", StartTime: "2025-03-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"slots":[]}`, string(raw))
}

func TestProxySurfacesBackendErrors(t *testing.T) {
	uc := NewProxyUseCase(newBackendStub(t, map[string]http.HandlerFunc{
		"/api/zendesk/connect":  respond(http.StatusConflict, `{"detail":"Zendesk already connected"}`),
		"/api/calendly/connect": respond(http.StatusBadGateway, `{"detail":null,"error":false}`),
	}), &fakeConnectionRemover{})
	ctx := context.Background()

	_, err := uc.ZendeskConnect(ctx, models.ZendeskConnectParams{WorkspaceID: "ws1", AgentID: "a1", Subdomain: "acme"})
	var appErr *models.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "Zendesk already connected", appErr.Message)

	_, err = uc.CalendlyConnect(ctx, models.CalendlyConnectParams{WorkspaceID: "ws1", AgentID: "a1"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Equal(t, "Failed to initiate Calendly connection", appErr.Message)
}

func TestZendeskDisconnectDropsLocalConnection(t *testing.T) {
	remover := &fakeConnectionRemover{}
	uc := NewProxyUseCase(newBackendStub(t, map[string]http.HandlerFunc{
		"/api/zendesk/disconnect": respond(http.StatusOK, `{"success":true}`),
	}), remover)

	raw, err := uc.ZendeskDisconnect(context.Background(), models.ZendeskDisconnectParams{WorkspaceID: "ws1", AgentID: "a1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(raw))
	assert.Equal(t, []string{"zendesk/ws1/a1"}, remover.calls)

	remover.err = errors.New("mongo down")
	_, err = uc.ZendeskDisconnect(context.Background(), models.ZendeskDisconnectParams{WorkspaceID: "ws1", AgentID: "a1"})
	assert.NoError(t, err)
}

func TestZendeskDisconnectKeepsLocalConnectionOnBackendError(t *testing.T) {
	remover := &fakeConnectionRemover{}
	uc := NewProxyUseCase(newBackendStub(t, map[string]http.HandlerFunc{
		"/api/zendesk/disconnect": respond(http.StatusInternalServerError, `{"detail":"boom"}`),
	}), remover)

	_, err := uc.ZendeskDisconnect(context.Background(), models.ZendeskDisconnectParams{WorkspaceID: "ws1", AgentID: "a1"})
	require.Error(t, err)
	assert.Empty(t, remover.calls)
}
