package core

import (
	"context"
	"text/template"
)

const MAILER_SERVICE = "mailer"

const MAILER_TPL_PASSWORD_RESET_OTP = "password_reset_otp"

type MailerTemplateData = map[string]any

type MailerTemplate interface {
	Subject() *template.Template
	Body() *template.Template
}

type MailerService interface {
	TemplateSend(ctx context.Context, template string, subjectVars MailerTemplateData, bodyVars MailerTemplateData, to string) error
	TemplateRegister(name string, template MailerTemplate) error

	Service
}
