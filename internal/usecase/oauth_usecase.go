package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/repo/backend"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

var (
	ErrMissingCode        = models.BadRequest("Missing authorization code")
	ErrMissingState       = models.BadRequest("Missing state parameter")
	ErrInvalidState       = models.BadRequest("Invalid state parameter")
	ErrMissingCodeOrState = models.BadRequest("Missing authorization code or state")
)

// Error codes appended to the dashboard redirect of failed OAuth flows.
const (
	oauthErrMissingCode   = "missing_code"
	oauthErrInvalidState  = "invalid_state"
	oauthErrTokenExchange = "token_exchange_failed"
	oauthErrInvalidToken  = "invalid_token"
	oauthErrUnknown       = "unknown"
)

type OAuthBackend interface {
	CalendlyCallback(ctx context.Context, req backend.OAuthCallbackRequest) (*backend.CallbackResponse, error)
	NotionCallback(ctx context.Context, req backend.OAuthCallbackRequest) (*backend.NotionTokenResponse, error)
	GoogleSheetsCallback(ctx context.Context, req backend.OAuthCallbackRequest) (*backend.GoogleTokenResponse, error)
	WhatsAppCallback(ctx context.Context, req backend.OAuthCallbackRequest) (*backend.WhatsAppCallbackResponse, error)
}

type ConnectionSaver interface {
	Save(ctx context.Context, conn *models.Connection) (*models.Connection, error)
}

// OAuthUseCase completes the OAuth flows started from the dashboard.
type OAuthUseCase struct {
	backend     OAuthBackend
	connections ConnectionSaver
	appURL      string
	now         func() time.Time
}

func NewOAuthUseCase(conf *config.Config, backend OAuthBackend, connections ConnectionSaver) *OAuthUseCase {
	return &OAuthUseCase{
		backend:     backend,
		connections: connections,
		appURL:      strings.TrimRight(conf.App.URL, "/"),
		now:         time.Now,
	}
}

func (uc *OAuthUseCase) link(path string, query url.Values) string {
	u := uc.appURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// isStatusError reports whether err is a non-2xx backend answer rather than a
// transport or decoding failure.
func isStatusError(err error) bool {
	var e *models.Error
	return errors.As(err, &e) && e.Err == nil
}

func errorMessage(err error, def string) string {
	var e *models.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return def
}

func encodeRedirectData(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// CalendlyCallback returns a request error for bad parameters, otherwise the page to render.
func (uc *OAuthUseCase) CalendlyCallback(ctx context.Context, params models.OAuthCallbackParams) (*models.CallbackPage, error) {
	if params.Code == "" {
		return nil, ErrMissingCode
	}
	if params.State == "" {
		return nil, ErrMissingState
	}
	state, ok := models.ParseOAuthState(params.State)
	if !ok {
		return nil, ErrInvalidState
	}

	page := &models.CallbackPage{WorkspaceID: state.WorkspaceID, AgentID: state.AgentID}
	_, err := uc.backend.CalendlyCallback(ctx, backend.OAuthCallbackRequest{
		Code:        params.Code,
		State:       params.State,
		WorkspaceID: state.WorkspaceID,
		AgentID:     state.AgentID,
	})
	if err != nil {
		log.Warnw(ctx, "calendly callback failed", "workspace_id", state.WorkspaceID, "agent_id", state.AgentID, "error", err)
		page.Message = errorMessage(err, "Failed to connect to Calendly")
		return page, nil
	}
	page.Success = true
	return page, nil
}

// NotionCallback exchanges the code, stores the connection and returns the
// dashboard URL to redirect to.
func (uc *OAuthUseCase) NotionCallback(ctx context.Context, params models.OAuthCallbackParams) string {
	fail := func(code string) string {
		return uc.link("/dashboard", url.Values{"notion_error": {code}})
	}
	if params.Error != "" {
		return fail(params.Error)
	}
	if params.Code == "" {
		return fail(oauthErrMissingCode)
	}
	state, ok := models.ParseWorkspaceOAuthState(params.State)
	if !ok {
		return fail(oauthErrInvalidState)
	}

	resp, err := uc.backend.NotionCallback(ctx, backend.OAuthCallbackRequest{Code: params.Code, State: params.State})
	if err != nil {
		log.Warnw(ctx, "notion token exchange failed", "workspace_id", state.WorkspaceID, "error", err)
		if isStatusError(err) {
			return fail(oauthErrTokenExchange)
		}
		return fail(oauthErrUnknown)
	}
	if !resp.Success || resp.AccessToken == "" {
		return fail(oauthErrInvalidToken)
	}

	_, err = uc.connections.Save(ctx, &models.Connection{
		Provider:            models.ProviderNotion,
		WorkspaceID:         state.WorkspaceID,
		AccessToken:         resp.AccessToken,
		NotionWorkspaceID:   resp.NotionWorkspaceID,
		NotionWorkspaceName: resp.NotionWorkspaceName,
		NotionWorkspaceIcon: resp.NotionWorkspaceIcon,
		BotID:               resp.BotID,
		Owner:               resp.Owner,
	})
	if err != nil {
		log.Errorw(ctx, "failed to save notion connection", "workspace_id", state.WorkspaceID, "error", err)
		return fail(oauthErrUnknown)
	}

	data, err := encodeRedirectData(map[string]any{
		"workspaceId":         state.WorkspaceID,
		"agentId":             state.OptionalAgentID(),
		"notionWorkspaceId":   resp.NotionWorkspaceID,
		"notionWorkspaceName": resp.NotionWorkspaceName,
		"notionWorkspaceIcon": resp.NotionWorkspaceIcon,
		"botId":               resp.BotID,
		"owner":               resp.Owner,
	})
	if err != nil {
		return fail(oauthErrUnknown)
	}
	return uc.link(state.SourcesPath("notion"), url.Values{"notion_data": {data}})
}

func (uc *OAuthUseCase) GoogleSheetsCallback(ctx context.Context, params models.OAuthCallbackParams) string {
	fail := func(code string) string {
		return uc.link("/dashboard", url.Values{"google_sheets_error": {code}})
	}
	if params.Error != "" {
		return fail(params.Error)
	}
	if params.Code == "" {
		return fail(oauthErrMissingCode)
	}
	state, ok := models.ParseWorkspaceOAuthState(params.State)
	if !ok {
		return fail(oauthErrInvalidState)
	}

	resp, err := uc.backend.GoogleSheetsCallback(ctx, backend.OAuthCallbackRequest{Code: params.Code, State: params.State})
	if err != nil {
		log.Warnw(ctx, "google sheets token exchange failed", "workspace_id", state.WorkspaceID, "error", err)
		if isStatusError(err) {
			return fail(oauthErrTokenExchange)
		}
		return fail(oauthErrUnknown)
	}
	if !resp.Success || resp.AccessToken == "" {
		return fail(oauthErrInvalidToken)
	}

	conn := &models.Connection{
		Provider:     models.ProviderGoogleSheets,
		WorkspaceID:  state.WorkspaceID,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		conn.TokenExpiresAt = util.Ptr(uc.now().Add(time.Duration(resp.ExpiresIn) * time.Second))
	}
	if _, err := uc.connections.Save(ctx, conn); err != nil {
		log.Errorw(ctx, "failed to save google sheets connection", "workspace_id", state.WorkspaceID, "error", err)
		return fail(oauthErrUnknown)
	}

	data, err := encodeRedirectData(map[string]any{
		"workspaceId": state.WorkspaceID,
		"agentId":     state.OptionalAgentID(),
		"expiresIn":   resp.ExpiresIn,
	})
	if err != nil {
		return fail(oauthErrUnknown)
	}
	return uc.link(state.SourcesPath("google-sheets"), url.Values{"google_sheets_data": {data}})
}

// whatsAppRedirect points at the agent deploy page when the state carries a
// workspace slug, otherwise at the dashboard root.
func (uc *OAuthUseCase) whatsAppRedirect(state models.OAuthState, query url.Values) string {
	if state.WorkspaceSlug != "" {
		return uc.link(fmt.Sprintf("/dashboard/%s/agents/%s/deploy/whatsapp", state.WorkspaceSlug, state.AgentID), query)
	}
	return uc.link("/dashboard", query)
}

func (uc *OAuthUseCase) whatsAppError(state models.OAuthState, msg string) *models.CallbackPage {
	return &models.CallbackPage{
		Message:     msg,
		WorkspaceID: state.WorkspaceID,
		AgentID:     state.AgentID,
		RedirectURL: uc.whatsAppRedirect(state, url.Values{"whatsapp_error": {msg}}),
	}
}

// WhatsAppCallback returns a request error for bad parameters, otherwise the page to render.
func (uc *OAuthUseCase) WhatsAppCallback(ctx context.Context, params models.OAuthCallbackParams) (*models.CallbackPage, error) {
	if params.Error != "" {
		parts := strings.SplitN(params.State, ":", 3)
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		state := models.OAuthState{WorkspaceID: parts[0], AgentID: parts[1], WorkspaceSlug: parts[2]}
		return uc.whatsAppError(state, util.FirstNonEmpty(params.ErrorDescription, params.Error)), nil
	}
	if params.Code == "" || params.State == "" {
		return nil, ErrMissingCodeOrState
	}
	state, ok := models.ParseOAuthState(params.State)
	if !ok {
		return nil, ErrInvalidState
	}

	resp, err := uc.backend.WhatsAppCallback(ctx, backend.OAuthCallbackRequest{
		Code:        params.Code,
		State:       params.State,
		WorkspaceID: state.WorkspaceID,
		AgentID:     state.AgentID,
	})
	if err != nil {
		log.Warnw(ctx, "whatsapp callback failed", "workspace_id", state.WorkspaceID, "agent_id", state.AgentID, "error", err)
		return uc.whatsAppError(state, errorMessage(err, "Connection failed")), nil
	}

	if resp.AccessToken != "" {
		accounts := util.ConvertList(resp.BusinessAccounts, func(a backend.WhatsAppBusinessAcc) models.BusinessAccount {
			return models.BusinessAccount{ID: a.ID, Name: a.Name}
		})
		_, err := uc.connections.Save(ctx, &models.Connection{
			Provider:         models.ProviderWhatsApp,
			WorkspaceID:      state.WorkspaceID,
			AgentID:          state.AgentID,
			AccessToken:      resp.AccessToken,
			BusinessAccounts: accounts,
			PhoneNumberID:    resp.PhoneNumberID,
			PhoneNumber:      resp.PhoneNumber,
		})
		if err != nil {
			log.Errorw(ctx, "failed to save whatsapp connection", "workspace_id", state.WorkspaceID, "agent_id", state.AgentID, "error", err)
		}
	}

	query := url.Values{"whatsapp_connected": {"true"}}
	if state.WorkspaceSlug == "" {
		query.Set("workspace_id", state.WorkspaceID)
		query.Set("agent_id", state.AgentID)
	}
	return &models.CallbackPage{
		Success:     true,
		WorkspaceID: state.WorkspaceID,
		AgentID:     state.AgentID,
		RedirectURL: uc.whatsAppRedirect(state, query),
	}, nil
}
