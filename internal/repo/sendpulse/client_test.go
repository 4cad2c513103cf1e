package sendpulse

import (
	"context"
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

func testEmail() models.Email {
	return models.Email{
		Subject: "Welcome to Ragzy, Ada!",
		From:    models.Recipient{Name: "Ragzy Team", Email: "support@ragzy.ai"},
		To:      []models.Recipient{{Email: "ada@example.com"}},
		HTML:    "<p>hi</p>",
		Text:    "hi",
	}
}

func TestSendCachesToken(t *testing.T) {
	var tokenCalls, sendCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/access_token":
			tokenCalls.Add(1)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "client_credentials", body["grant_type"])
			assert.Equal(t, "id", body["client_id"])
			_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
		case "/smtp/emails":
			sendCalls.Add(1)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			var body struct {
				Email emailBody `json:"email"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Welcome to Ragzy, Ada!", body.Email.Subject)
			require.Len(t, body.Email.To, 1)
			assert.Equal(t, "ada@example.com", body.Email.To[0].Name)
			_, _ = io.WriteString(w, `{"result":true,"id":"msg-1"}`)
		}
	}))
	defer srv.Close()

	c := newClient(srv.URL, "id", "secret")
	for i := 0; i < 2; i++ {
		res, err := c.Send(context.Background(), testEmail())
		require.NoError(t, err)
		assert.Equal(t, "msg-1", res.MessageID)
	}
	assert.EqualValues(t, 1, tokenCalls.Load())
	assert.EqualValues(t, 2, sendCalls.Load())
}

func TestSendRefreshesExpiredToken(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/access_token" {
			tokenCalls.Add(1)
			_, _ = io.WriteString(w, `{"access_token":"tok","expires_in":3600}`)
			return
		}
		_, _ = io.WriteString(w, `{"result":true}`)
	}))
	defer srv.Close()

	now := time.Now()
	c := newClient(srv.URL, "id", "secret")
	c.now = func() time.Time { return now }

	res, err := c.Send(context.Background(), testEmail())
	require.NoError(t, err)
	assert.Equal(t, "sent", res.MessageID)

	// inside the refresh margin the cached token is no longer used
	now = now.Add(56 * time.Minute)
	_, err = c.Send(context.Background(), testEmail())
	require.NoError(t, err)
	assert.EqualValues(t, 2, tokenCalls.Load())
}

func TestSendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/access_token" {
			_, _ = io.WriteString(w, `{"access_token":"tok","expires_in":3600}`)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"is_error":true,"message":"Sender is not valid"}`)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, "id", "secret").Send(context.Background(), testEmail())
	require.EqualError(t, err, "Sender is not valid")
}

func TestSendNotConfigured(t *testing.T) {
	_, err := newClient("http://unused", "", "").Send(context.Background(), testEmail())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestAccessTokenIgnoresContentType(t *testing.T) {
	for name, tc := range map[string]struct {
		contentType string
		body        string
		wantErr     string
	}{
		"text plain": {contentType: "text/plain", body: `{"access_token":"tok","expires_in":3600}`},
		"html":       {contentType: "text/html; charset=utf-8", body: `{"access_token":"tok","expires_in":3600}`},
		"no token":   {contentType: "application/json", body: `{"message":"invalid client"}`, wantErr: "invalid client"},
		"not json":   {contentType: "text/html", body: `<html>gateway</html>`, wantErr: "decode SendPulse access token"},
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			token, err := newClient(srv.URL, "id", "secret").accessToken(context.Background())
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "tok", token)
		})
	}
}
