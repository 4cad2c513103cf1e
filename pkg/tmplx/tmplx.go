// Package tmplx wraps text/template and html/template with a shared set of
// helper functions. Templates are parsed once and rendered many times.
package tmplx

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"net/url"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

var (
	ErrRenderTemplate = errors.New("tmplx: render error")
	ErrParseTemplate  = errors.New("tmplx: parse error")
)

// Template is a parsed template. It is safe for concurrent use.
type Template struct {
	name string
	exec interface {
		Execute(w io.Writer, data any) error
	}
}

// ValidateFunc inspects the output of a validation render.
type ValidateFunc func(*bytes.Buffer) error

type parseOptions struct {
	html     bool
	sample   any
	validate ValidateFunc
}

type Option func(*parseOptions)

// WithHTML parses with html/template so data is escaped for the context it
// is rendered in.
func WithHTML() Option {
	return func(o *parseOptions) { o.html = true }
}

// WithValidate renders sample once at parse time and hands the output to fn.
// Parse fails when fn returns an error.
func WithValidate(sample any, fn ValidateFunc) Option {
	return func(o *parseOptions) {
		o.sample = sample
		o.validate = fn
	}
}

func MustParse(name, text string, opts ...Option) *Template {
	t, err := Parse(name, text, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse compiles text with the helper functions. Missing map keys render as
// the zero value.
func Parse(name, text string, opts ...Option) (*Template, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	t := &Template{name: name}
	var err error
	if o.html {
		t.exec, err = htmltemplate.New(name).Option("missingkey=zero").Funcs(funcs).Parse(text)
	} else {
		t.exec, err = template.New(name).Option("missingkey=zero").Funcs(funcs).Parse(text)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParseTemplate, name, err)
	}

	if o.validate != nil {
		var buf bytes.Buffer
		if err := t.exec.Execute(&buf, o.sample); err != nil {
			return nil, fmt.Errorf("execute template: %w", err)
		}
		if err := o.validate(&buf); err != nil {
			return nil, fmt.Errorf("validate template: %w", err)
		}
	}
	return t, nil
}

func (t *Template) Render(data any) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := t.exec.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderTemplate, t.name, err)
	}
	return buf, nil
}

// RenderString renders data and trims surrounding whitespace.
func (t *Template) RenderString(data any) (string, error) {
	buf, err := t.Render(data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// funcs is shared by every template. text/template.FuncMap and
// html/template.FuncMap are both map[string]any.
var funcs = map[string]any{
	"quote":          jsonFunc,
	"json":           jsonFunc,
	"default":        defaultFunc,
	"hasPrefix":      func(s, prefix any) bool { return strings.HasPrefix(cast.ToString(s), cast.ToString(prefix)) },
	"hasSuffix":      func(s, suffix any) bool { return strings.HasSuffix(cast.ToString(s), cast.ToString(suffix)) },
	"regexMatch":     regexMatch,
	"jsonGet":        func(path, raw string) string { return gjson.Get(raw, path).String() },
	"encodeUrlQuery": encodeURLQuery,
	"firstName":      firstName,
	"title":          titleFunc,
	"year":           func() int { return time.Now().Year() },
}

func defaultFunc(def, value any) any {
	if value == nil || value == "" {
		return def
	}
	return value
}

func jsonFunc(value any) (string, error) {
	data, err := json.Marshal(value)
	return string(data), err
}

func regexMatch(in, expr string) (bool, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return false, err
	}
	return re.MatchString(in), nil
}

// encodeURLQuery takes alternating keys and values. A trailing key gets an
// empty value.
func encodeURLQuery(pairs ...any) string {
	q := url.Values{}
	for i := 0; i < len(pairs); i += 2 {
		var value string
		if i+1 < len(pairs) {
			value = cast.ToString(pairs[i+1])
		}
		q.Add(cast.ToString(pairs[i]), value)
	}
	return q.Encode()
}

// firstName returns the first word of a display name.
func firstName(name any) string {
	s := strings.TrimSpace(cast.ToString(name))
	if i := strings.IndexAny(s, " \t"); i > 0 {
		return s[:i]
	}
	return s
}

func titleFunc(v any) string {
	s := cast.ToString(v)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var fieldRef = regexp.MustCompile(`{{[^{}]*\.(\w+)[^{}]*}}`)

// ExtractFields lists the field names referenced by a template's actions in
// order of first appearance. Only the last field of each action is reported.
func ExtractFields(content string) []string {
	fields := make([]string, 0)
	seen := make(map[string]bool)
	for _, m := range fieldRef.FindAllStringSubmatch(content, -1) {
		if name := m[1]; !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
	}
	return fields
}
