package usecase

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/pkg/tmplx"
)

//go:embed templates/emails.yaml
var emailCatalogYAML []byte

type emailTemplateDef struct {
	From    string `yaml:"from"`
	Subject string `yaml:"subject"`
	Title   string `yaml:"title"`
	Heading string `yaml:"heading"`
	Accent  string `yaml:"accent"`
	HTML    string `yaml:"html"`
	Text    string `yaml:"text"`
}

type emailCatalogFile struct {
	Layout    string                      `yaml:"layout"`
	Templates map[string]emailTemplateDef `yaml:"templates"`
}

type emailTemplate struct {
	def     emailTemplateDef
	from    *tmplx.Template
	subject *tmplx.Template
	html    *tmplx.Template
	text    *tmplx.Template
}

type layoutData struct {
	Title   string
	Heading string
	Accent  string
	Body    template.HTML
}

const layoutSample template.HTML = `<p data-sample="1">body</p>`

type renderedEmail struct {
	FromName string
	Subject  string
	HTML     string
	Text     string
}

type emailCatalog struct {
	layout    *tmplx.Template
	templates map[string]*emailTemplate
}

func loadEmailCatalog(raw []byte) (*emailCatalog, error) {
	var file emailCatalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode email catalog: %w", err)
	}

	if !slices.Contains(tmplx.ExtractFields(file.Layout), "Body") {
		return nil, errors.New("email layout never renders .Body")
	}
	layout, err := tmplx.Parse("layout", file.Layout, tmplx.WithHTML(),
		tmplx.WithValidate(layoutData{Title: "sample", Body: layoutSample}, func(buf *bytes.Buffer) error {
			if !bytes.Contains(buf.Bytes(), []byte(layoutSample)) {
				return errors.New("email layout escapes the body")
			}
			return nil
		}))
	if err != nil {
		return nil, err
	}

	catalog := &emailCatalog{
		layout:    layout,
		templates: make(map[string]*emailTemplate, len(file.Templates)),
	}
	for name, ts := range file.Templates {
		t := &emailTemplate{def: ts}
		if t.from, err = tmplx.Parse(name+".from", ts.From); err != nil {
			return nil, err
		}
		if t.subject, err = tmplx.Parse(name+".subject", ts.Subject); err != nil {
			return nil, err
		}
		if t.html, err = tmplx.Parse(name+".html", ts.HTML, tmplx.WithHTML()); err != nil {
			return nil, err
		}
		if t.text, err = tmplx.Parse(name+".text", ts.Text); err != nil {
			return nil, err
		}
		catalog.templates[name] = t
	}
	return catalog, nil
}

func mustLoadEmailCatalog() *emailCatalog {
	catalog, err := loadEmailCatalog(emailCatalogYAML)
	if err != nil {
		panic(err)
	}
	return catalog
}

func (c *emailCatalog) render(name string, data any) (*renderedEmail, error) {
	t, ok := c.templates[name]
	if !ok {
		return nil, fmt.Errorf("email template %q: %w", name, models.ErrNotFound)
	}

	var (
		out renderedEmail
		err error
	)
	if out.FromName, err = t.from.RenderString(data); err != nil {
		return nil, err
	}
	if out.Subject, err = t.subject.RenderString(data); err != nil {
		return nil, err
	}
	body, err := t.html.RenderString(data)
	if err != nil {
		return nil, err
	}
	if out.HTML, err = c.layout.RenderString(layoutData{
		Title:   t.def.Title,
		Heading: t.def.Heading,
		Accent:  t.def.Accent,
		Body:    template.HTML(body),
	}); err != nil {
		return nil, err
	}
	if out.Text, err = t.text.RenderString(data); err != nil {
		return nil, err
	}
	return &out, nil
}
