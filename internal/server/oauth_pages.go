package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/pkg/tmplx"
)

// callbackPage is rendered into the popup window that finishes an OAuth flow.
type callbackPage struct {
	Message      string
	WorkspaceID  string
	AgentID      string
	RedirectURL  string
	TargetOrigin string
}

var calendlyConnectedPage = tmplx.MustParse("calendly_connected", `<!DOCTYPE html>
<html>
<head>
  <title>Calendly Connected</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; background: #f9fafb; }
    .card { text-align: center; padding: 2rem; background: #fff; border-radius: 12px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
    h1 { color: #16a34a; font-size: 1.5rem; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Calendly Connected!</h1>
    <p>This window will close automatically.</p>
  </div>
  <script>
    if (window.opener) {
      window.opener.postMessage({ type: 'CALENDLY_CONNECTED', success: true }, '*');
    }
    setTimeout(function () { window.close(); }, 1500);
  </script>
</body>
</html>`, tmplx.WithHTML())

var calendlyErrorPage = tmplx.MustParse("calendly_error", `<!DOCTYPE html>
<html>
<head>
  <title>Calendly Connection Error</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; background: #f9fafb; }
    .card { text-align: center; padding: 2rem; background: #fff; border-radius: 12px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
    h1 { color: #dc2626; font-size: 1.5rem; }
    button { margin-top: 1rem; padding: .5rem 1rem; border: 0; border-radius: 6px; background: #111827; color: #fff; cursor: pointer; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Connection Failed</h1>
    <p>{{.Message}}</p>
    <button onclick="window.close()">Close Window</button>
  </div>
</body>
</html>`, tmplx.WithHTML())

var whatsAppConnectedPage = tmplx.MustParse("whatsapp_connected", `<!DOCTYPE html>
<html>
<head><title>WhatsApp Connected</title></head>
<body>
  <p>WhatsApp connected successfully! This window will close automatically.</p>
  <script>
    if (window.opener) {
      window.opener.postMessage({ type: 'WHATSAPP_CONNECTED', workspaceId: {{.WorkspaceID}}, agentId: {{.AgentID}} }, {{.TargetOrigin}});
      setTimeout(function () { window.close(); }, 1000);
    } else {
      window.location.href = {{.RedirectURL}};
    }
  </script>
</body>
</html>`, tmplx.WithHTML())

var whatsAppErrorPage = tmplx.MustParse("whatsapp_error", `<!DOCTYPE html>
<html>
<head><title>WhatsApp Connection Error</title></head>
<body>
  <p>Error: {{.Message}}</p>
  <script>
    if (window.opener) {
      window.opener.postMessage({ type: 'WHATSAPP_ERROR', error: {{.Message}} }, {{.TargetOrigin}});
      setTimeout(function () { window.close(); }, 2000);
    } else {
      window.location.href = {{.RedirectURL}};
    }
  </script>
</body>
</html>`, tmplx.WithHTML())

func (h *controller) renderCallbackPage(c echo.Context, tmpl *tmplx.Template, page *models.CallbackPage) error {
	buf, err := tmpl.Render(callbackPage{
		Message:      page.Message,
		WorkspaceID:  page.WorkspaceID,
		AgentID:      page.AgentID,
		RedirectURL:  page.RedirectURL,
		TargetOrigin: h.conf.App.URL,
	})
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
