package mailer

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"text/template"

	"go.lumeweb.com/accountd/core"
)

const EMAIL_FS_PREFIX = "templates/"

//go:embed templates/*
var templateFS embed.FS

var _ core.MailerTemplate = (*EmailTemplate)(nil)

type EmailTemplate struct {
	subject *template.Template
	body    *template.Template
}

func (et *EmailTemplate) Subject() *template.Template {
	return et.subject
}

func (et *EmailTemplate) Body() *template.Template {
	return et.body
}

func NewMailerTemplate(subject *template.Template, body *template.Template) *EmailTemplate {
	return &EmailTemplate{
		subject: subject,
		body:    body,
	}
}

var ErrTemplateNotFound = errors.New("template not found")

type TemplateRegistry struct {
	templates   map[string]core.MailerTemplate
	templatesMu sync.RWMutex
}

func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]core.MailerTemplate),
	}
}

func (tr *TemplateRegistry) RegisterTemplate(name string, template core.MailerTemplate) {
	tr.templatesMu.Lock()
	defer tr.templatesMu.Unlock()
	tr.templates[name] = template
}

func (tr *TemplateRegistry) RenderTemplate(templateName string, subjectVars core.MailerTemplateData, bodyVars core.MailerTemplateData) (*Email, error) {
	tr.templatesMu.RLock()
	tmpl, ok := tr.templates[templateName]
	tr.templatesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateName)
	}

	var subjectBuilder strings.Builder
	if err := tmpl.Subject().Execute(&subjectBuilder, subjectVars); err != nil {
		return nil, err
	}

	var bodyBuilder strings.Builder
	if err := tmpl.Body().Execute(&bodyBuilder, bodyVars); err != nil {
		return nil, err
	}

	return NewEmail(strings.TrimSpace(subjectBuilder.String()), bodyBuilder.String()), nil
}

// LoadBuiltinTemplates registers every <name>_subject.tpl / <name>_body.tpl
// pair shipped with the binary.
func (tr *TemplateRegistry) LoadBuiltinTemplates() error {
	entries, err := fs.ReadDir(templateFS, strings.TrimSuffix(EMAIL_FS_PREFIX, "/"))
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), "_subject.tpl")
		if !ok {
			continue
		}

		subject, err := template.ParseFS(templateFS, EMAIL_FS_PREFIX+entry.Name())
		if err != nil {
			return err
		}

		body, err := template.ParseFS(templateFS, EMAIL_FS_PREFIX+name+"_body.tpl")
		if err != nil {
			return fmt.Errorf("template %s has no body: %w", name, err)
		}

		tr.RegisterTemplate(name, NewMailerTemplate(subject, body))
	}

	return nil
}
