package middleware

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

const redacted = "[REDACTED]"

// DefaultRedactKeys are body and query keys that never reach the logs.
var DefaultRedactKeys = []string{
	"access_token", "refresh_token", "api_key", "code", "state",
	"inviteToken", "token", "resetLink", "password",
}

type LogRequestConfig struct {
	Logger       Logger
	Enabled      func(c echo.Context) bool
	RequestBody  func(c echo.Context) bool
	ResponseBody func(c echo.Context) bool
	QueryParams  func(c echo.Context) bool
	KeyAndValues func(c echo.Context) []any

	// RedactKeys replaces DefaultRedactKeys when set.
	RedactKeys []string
}

type bodyDumpWriter struct {
	io.Writer
	http.ResponseWriter
}

// LogRequest writes one access log entry per request: info below 400, warn
// for 4xx and error for 5xx. Bodies are only logged when enabled and only
// for JSON content.
func LogRequest(config LogRequestConfig) echo.MiddlewareFunc {
	always := func(echo.Context) bool { return true }
	never := func(echo.Context) bool { return false }
	if config.Logger == nil {
		panic("Logger is required to use LogRequest")
	}
	if config.Enabled == nil {
		config.Enabled = always
	}
	if config.RequestBody == nil {
		config.RequestBody = never
	}
	if config.ResponseBody == nil {
		config.ResponseBody = never
	}
	if config.QueryParams == nil {
		config.QueryParams = always
	}
	redact := make(map[string]struct{})
	keys := config.RedactKeys
	if keys == nil {
		keys = DefaultRedactKeys
	}
	for _, k := range keys {
		redact[k] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !config.Enabled(c) {
				return next(c)
			}

			start := time.Now()
			req := c.Request()
			res := c.Response()
			logReqBody := config.RequestBody(c)
			logResBody := config.ResponseBody(c)

			var reqBody []byte
			if logReqBody && isJSON(req.Header.Get(echo.HeaderContentType)) {
				reqBody, _ = io.ReadAll(req.Body)
				req.Body = io.NopCloser(bytes.NewReader(reqBody))
			}
			var resBuf bytes.Buffer
			if logResBody {
				res.Writer = &bodyDumpWriter{Writer: io.MultiWriter(res.Writer, &resBuf), ResponseWriter: res.Writer}
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			args := make([]any, 0, 24)
			args = append(args,
				"status", res.Status,
				"method", req.Method,
				"path", req.URL.Path,
				"route", c.Path(),
				"latency_ms", time.Since(start).Milliseconds(),
				"real_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
			)
			// request id, user and workspace are attached to the request context
			// by the middleware further down the chain
			args = append(args, log.Fields(c.Request().Context())...)

			if config.QueryParams(c) && len(req.URL.RawQuery) > 0 {
				args = append(args, "query", redactQuery(c.QueryParams(), redact))
			}
			if config.KeyAndValues != nil {
				args = append(args, config.KeyAndValues(c)...)
			}
			if len(reqBody) > 0 {
				args = append(args, "request_body", redactJSON(reqBody, redact))
			}
			if logResBody && isJSON(res.Header().Get(echo.HeaderContentType)) && resBuf.Len() > 0 {
				args = append(args, "response_body", redactJSON(resBuf.Bytes(), redact))
			}

			const message = "http request"
			switch {
			case res.Status >= http.StatusInternalServerError:
				if err != nil {
					args = append(args, "error", err.Error())
				}
				config.Logger.Errorw(message, args...)
			case res.Status >= http.StatusBadRequest:
				config.Logger.Warnw(message, args...)
			default:
				config.Logger.Infow(message, args...)
			}
			return err
		}
	}
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, echo.MIMEApplicationJSON)
}

func redactQuery(query url.Values, keys map[string]struct{}) map[string]string {
	out := make(map[string]string, len(query))
	for k := range query {
		if _, ok := keys[k]; ok {
			out[k] = redacted
			continue
		}
		out[k] = query.Get(k)
	}
	return out
}

// redactJSON masks the configured keys at any depth. Bodies that are not
// valid JSON are dropped.
func redactJSON(body []byte, keys map[string]struct{}) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil
	}
	return redactValue(v, keys)
}

func redactValue(v any, keys map[string]struct{}) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			if _, ok := keys[k]; ok {
				t[k] = redacted
				continue
			}
			t[k] = redactValue(inner, keys)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = redactValue(inner, keys)
		}
		return t
	default:
		return v
	}
}

func (w *bodyDumpWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyDumpWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *bodyDumpWriter) Flush() {
	w.ResponseWriter.(http.Flusher).Flush()
}

func (w *bodyDumpWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}
