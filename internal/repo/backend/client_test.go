package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return newClient(srv.URL, 5*time.Second)
}

func TestDoErrorMessages(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"detail wins", http.StatusBadRequest, `{"detail":"bad subdomain","error":"other"}`, 400, "bad subdomain"},
		{"error fallback", http.StatusNotFound, `{"error":"no such agent"}`, 404, "no such agent"},
		{"null detail skipped", http.StatusConflict, `{"detail":null,"error":"taken"}`, 409, "taken"},
		{"default message", http.StatusInternalServerError, `{"ok":false}`, 500, "Failed to initiate Zendesk connection"},
		{"non json body", http.StatusBadGateway, `<html>oops</html>`, 502, "Backend error: 502 Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.ZendeskConnect(context.Background(), ZendeskConnectRequest{WorkspaceID: "ws", AgentID: "ag", Subdomain: "acme"})
			require.Error(t, err)

			var e *models.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.wantStatus, e.Status)
			assert.Equal(t, tt.wantMsg, e.Message)
			assert.Nil(t, e.Err)
		})
	}
}

func TestDoPassesBodyAndQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/zendesk/create-ticket":
			var got map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, "Customer", got["requester_name"])
			assert.Equal(t, "ws", got["workspace_id"])
			assert.NotContains(t, got, "requester_email")
			_, _ = io.WriteString(w, `{"success":true,"ticket_id":42}`)
		case "/api/calendly/available-slots":
			assert.Equal(t, "ws", r.URL.Query().Get("workspace_id"))
			assert.Equal(t, "https://api.calendly.com/event_types/1", r.URL.Query().Get("event_type_uri"))
			assert.False(t, r.URL.Query().Has("start_time"))
			_, _ = io.WriteString(w, `{"slots":[]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	out, err := c.ZendeskCreateTicket(context.Background(), ZendeskTicketRequest{
		WorkspaceID:   "ws",
		AgentID:       "ag",
		Subject:       "help",
		CommentBody:   "it broke",
		RequesterName: "Customer",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"ticket_id":42}`, string(out))

	out, err = c.CalendlyAvailableSlots(context.Background(), CalendlySlotsRequest{
		WorkspaceID:  "ws",
		AgentID:      "ag",
		EventTypeURI: "https://api.calendly.com/event_types/1",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"slots":[]}`, string(out))
}

func TestDoTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newClient(url, time.Second)
	_, err := c.ZendeskDisconnect(context.Background(), ZendeskDisconnectRequest{WorkspaceID: "ws", AgentID: "ag"})

	var e *models.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.Equal(t, "Failed to disconnect Zendesk", e.Message)
	assert.NotNil(t, e.Err)
}

func TestDoInvalidSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	})

	_, err := c.NotionCallback(context.Background(), OAuthCallbackRequest{Code: "c", State: "ws:ag"})
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestDoRetriesOnlyGet(t *testing.T) {
	var gets, posts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets.Add(1)
		} else {
			posts.Add(1)
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"detail":"down"}`)
	})

	_, err := c.CalendlyStatus(context.Background(), "ws", "ag")
	require.Error(t, err)
	assert.EqualValues(t, 3, gets.Load())

	_, err = c.CalendlyConnect(context.Background(), CalendlyConnectRequest{WorkspaceID: "ws", AgentID: "ag"})
	require.Error(t, err)
	assert.EqualValues(t, 1, posts.Load())
}

func TestDoEmptySuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/knowledge-base/delete/item-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteKnowledge(context.Background(), "item-1"))
}

func TestNotionSearchPagesNeverNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	pages, err := c.NotionSearchPages(context.Background(), "secret", "")
	require.NoError(t, err)
	assert.NotNil(t, pages)
	assert.Empty(t, pages)
}

func TestAuthorizeURL(t *testing.T) {
	c := newClient("http://backend:8001/", time.Second)
	assert.Equal(t, "http://backend:8001/api/notion/oauth/authorize?agent_id=ag&workspace_id=ws",
		NotionAuthorizeURL(c, "ws", "ag"))
	assert.Equal(t, "http://backend:8001/api/google-sheets/oauth/authorize?workspace_id=ws",
		GoogleSheetsAuthorizeURL(c, "ws", ""))
}
