package service

import (
	"context"
	"errors"
	"strings"

	"github.com/wneessen/go-mail"
	"go.lumeweb.com/accountd/config"
	"go.lumeweb.com/accountd/core"
	"go.lumeweb.com/accountd/service/internal/mailer"
	"go.uber.org/zap"
)

var _ core.MailerService = (*Mailer)(nil)

func init() {
	core.RegisterService(core.ServiceInfo{
		ID: core.MAILER_SERVICE,
		Factory: func() (core.Service, []core.ContextBuilderOption, error) {
			return NewMailerService(NewMailerTemplateRegistry())
		},
	})
}

// mailSender is the part of *mail.Client the mailer uses.
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// senderFactory returns the sender for a single send.
type senderFactory func() (mailSender, error)

type Mailer struct {
	from             string
	newSender        senderFactory
	logger           *core.Logger
	templateRegistry *mailer.TemplateRegistry
}

func (m *Mailer) ID() string {
	return core.MAILER_SERVICE
}

func (m *Mailer) TemplateSend(ctx context.Context, template string, subjectVars core.MailerTemplateData, bodyVars core.MailerTemplateData, to string) error {
	if m.newSender == nil {
		return errors.New("mailer is not started")
	}

	email, err := m.templateRegistry.RenderTemplate(template, subjectVars, bodyVars)
	if err != nil {
		return err
	}

	email.SetFrom(m.from)
	email.SetTo(to)

	msg, err := email.ToMessage()
	if err != nil {
		return err
	}

	sender, err := m.newSender()
	if err != nil {
		m.logger.Error("failed to create mail client", zap.Error(err))
		return err
	}

	if err := sender.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("failed to send email", zap.String("template", template), zap.Error(err))
		return err
	}

	return nil
}

func (m *Mailer) TemplateRegister(name string, template core.MailerTemplate) error {
	if name == "" || template == nil {
		return errors.New("template name and body are required")
	}

	m.templateRegistry.RegisterTemplate(name, template)

	return nil
}

func NewMailerService(templateRegistry *mailer.TemplateRegistry) (*Mailer, []core.ContextBuilderOption, error) {
	if err := templateRegistry.LoadBuiltinTemplates(); err != nil {
		return nil, nil, err
	}

	m := &Mailer{
		templateRegistry: templateRegistry,
		logger:           core.NewNopLogger(),
	}

	opts := core.ContextOptions(
		core.ContextWithStartupFunc(func(ctx core.Context) error {
			m.logger = ctx.ServiceLogger(m)

			cfg := ctx.Config().Config().Core.Mail
			m.from = cfg.Sender()

			// Bad settings fail startup rather than the first send.
			if _, err := newMailClient(cfg); err != nil {
				return err
			}

			m.newSender = func() (mailSender, error) {
				return newMailClient(cfg)
			}

			return nil
		}),
	)

	return m, opts, nil
}

// NewMailerWithSender builds a mailer around an existing transport.
func NewMailerWithSender(from string, sender mailSender, logger *core.Logger) (*Mailer, error) {
	registry := NewMailerTemplateRegistry()
	if err := registry.LoadBuiltinTemplates(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = core.NewNopLogger()
	}

	shared := func() (mailSender, error) {
		return sender, nil
	}

	return &Mailer{
		from:             from,
		newSender:        shared,
		logger:           logger,
		templateRegistry: registry,
	}, nil
}

func newMailClient(cfg config.MailConfig) (*mail.Client, error) {
	var options []mail.Option

	if cfg.Port != 0 {
		options = append(options, mail.WithPort(cfg.Port))
	}

	if cfg.AuthType != "" {
		options = append(options, mail.WithSMTPAuth(mail.SMTPAuthType(strings.ToUpper(cfg.AuthType))))
	}

	if cfg.SSL {
		options = append(options, mail.WithSSLPort(true))
	}

	options = append(options, mail.WithUsername(cfg.Username))
	options = append(options, mail.WithPassword(cfg.Password))

	return mail.NewClient(cfg.Host, options...)
}

func NewMailerTemplateRegistry() *mailer.TemplateRegistry {
	return mailer.NewTemplateRegistry()
}
