// Package backend talks to the AI backend service that owns OAuth token
// exchange, third party integrations and knowledge ingestion.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

var ErrInvalidResponse = errors.New("backend returned an invalid response")

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// DefaultError is surfaced when the backend error body carries no message.
	DefaultError string
}

type Client interface {
	Do(ctx context.Context, req Request, out any) error
	// URL returns an absolute backend URL, used for browser redirects.
	URL(path string, query url.Values) string

	ZendeskConnect(ctx context.Context, req ZendeskConnectRequest) (json.RawMessage, error)
	ZendeskDisconnect(ctx context.Context, req ZendeskDisconnectRequest) (json.RawMessage, error)
	ZendeskCreateTicket(ctx context.Context, req ZendeskTicketRequest) (json.RawMessage, error)

	CalendlyConnect(ctx context.Context, req CalendlyConnectRequest) (json.RawMessage, error)
	CalendlyStatus(ctx context.Context, workspaceID, agentID string) (json.RawMessage, error)
	CalendlyAvailableSlots(ctx context.Context, req CalendlySlotsRequest) (json.RawMessage, error)
	CalendlyCallback(ctx context.Context, req OAuthCallbackRequest) (*CallbackResponse, error)

	NotionCallback(ctx context.Context, req OAuthCallbackRequest) (*NotionTokenResponse, error)
	NotionSearchPages(ctx context.Context, apiKey, query string) ([]NotionPage, error)
	NotionImportPage(ctx context.Context, req NotionImportRequest) (*ImportResponse, error)
	NotionImportDatabase(ctx context.Context, req NotionImportRequest) (*ImportResponse, error)

	GoogleSheetsCallback(ctx context.Context, req OAuthCallbackRequest) (*GoogleTokenResponse, error)
	ListSpreadsheets(ctx context.Context, accessToken, query string) (*SpreadsheetList, error)
	ImportSheet(ctx context.Context, req SheetImportRequest) (*ImportResponse, error)

	WhatsAppCallback(ctx context.Context, req OAuthCallbackRequest) (*WhatsAppCallbackResponse, error)

	StoreKnowledge(ctx context.Context, embeddingModel string, req StoreKnowledgeRequest) (*StoreKnowledgeResponse, error)
	StoreFAQ(ctx context.Context, req StoreFAQRequest) error
	DeleteKnowledge(ctx context.Context, id string) error
}

type client struct {
	rc      *resty.Client
	baseURL string
}

func NewClient(conf *config.Config) Client {
	return newClient(conf.Backend.BaseURL, conf.Backend.Timeout)
}

func newClient(baseURL string, timeout time.Duration) *client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &client{
		rc: util.NewRestyClient(util.RestyOptions{
			BaseURL:    baseURL,
			Timeout:    timeout,
			RetryCount: 2,
		}),
		baseURL: baseURL,
	}
}

func (c *client) URL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *client) Do(ctx context.Context, req Request, out any) error {
	if req.DefaultError == "" {
		req.DefaultError = "Backend request failed"
	}

	r := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if req.Query != nil {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		log.Errorw(ctx, "backend request failed", "method", req.Method, "path", req.Path, "error", err)
		return models.WrapError(http.StatusInternalServerError, req.DefaultError, err)
	}

	body := resp.Body()
	if len(body) == 0 && !resp.IsError() {
		return nil
	}
	if !json.Valid(body) {
		log.Warnw(ctx, "backend returned a non json body",
			"method", req.Method, "path", req.Path, "status", resp.StatusCode(), "body", truncate(string(body), 256))
		if !resp.IsError() {
			return models.WrapError(http.StatusBadGateway, req.DefaultError, ErrInvalidResponse)
		}
		return models.NewError(resp.StatusCode(), fmt.Sprintf("Backend error: %s", statusLine(resp)))
	}

	if resp.IsError() {
		msg := errorMessage(body, req.DefaultError)
		log.Warnw(ctx, "backend returned an error",
			"method", req.Method, "path", req.Path, "status", resp.StatusCode(), "error", msg)
		return models.NewError(resp.StatusCode(), msg)
	}

	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return models.WrapError(http.StatusBadGateway, req.DefaultError, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// errorMessage picks detail, then error, then the default. Falsy values are skipped.
func errorMessage(body []byte, def string) string {
	for _, key := range []string{"detail", "error"} {
		v := gjson.GetBytes(body, key)
		if !v.Exists() || v.Type == gjson.Null || v.Type == gjson.False {
			continue
		}
		if s := v.String(); s != "" {
			return s
		}
	}
	return def
}

func statusLine(resp *resty.Response) string {
	if s := resp.Status(); s != "" {
		return s
	}
	return fmt.Sprintf("%d %s", resp.StatusCode(), http.StatusText(resp.StatusCode()))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (c *client) raw(ctx context.Context, req Request) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
