package service

import (
	"context"
	"errors"

	emailverifier "github.com/AfterShip/email-verifier"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	gevent "github.com/gookit/event"
	"go.lumeweb.com/accountd/core"
	"go.lumeweb.com/accountd/db/models"
	"go.lumeweb.com/accountd/event"
	"go.uber.org/zap"
)

var _ core.AccountService = (*AccountServiceDefault)(nil)

const (
	operationRegister       = "register"
	operationLogin          = "login"
	operationForgotPassword = "forgot_password"
)

const (
	msgRegisterMissingFields = "Please provide username,email,password"
	msgLoginMissingFields    = "Please provide the email and password"
	msgForgotMissingEmail    = "Please provide the email"
	msgInvalidEmail          = "Please provide a valid email address"
)

func init() {
	core.RegisterService(core.ServiceInfo{
		ID: core.ACCOUNT_SERVICE,
		Factory: func() (core.Service, []core.ContextBuilderOption, error) {
			svc := &AccountServiceDefault{}

			opts := core.ContextOptions(
				core.ContextWithStartupFunc(func(ctx core.Context) error {
					logger := ctx.ServiceLogger(svc)
					*svc = *NewAccountService(AccountServiceParams{
						Users:   core.GetService[core.UserService](ctx, core.USER_SERVICE),
						Hasher:  core.GetService[core.PasswordService](ctx, core.PASSWORD_SERVICE),
						Tokens:  core.GetService[core.TokenService](ctx, core.TOKEN_SERVICE),
						OTP:     core.GetService[core.OTPService](ctx, core.OTP_SERVICE),
						Mailer:  core.GetService[core.MailerService](ctx, core.MAILER_SERVICE),
						Metrics: core.GetService[core.MetricsService](ctx, core.METRICS_SERVICE),
						Events:  ctx.Event(),
						Logger:  logger,
					})

					if err := svc.checkDependencies(); err != nil {
						return err
					}

					event.RegisterLogListeners(ctx.Event(), logger.Logger)

					return nil
				}),
			)

			return svc, opts, nil
		},
		Depends: []string{
			core.USER_SERVICE,
			core.PASSWORD_SERVICE,
			core.TOKEN_SERVICE,
			core.OTP_SERVICE,
			core.MAILER_SERVICE,
			core.METRICS_SERVICE,
		},
	})
}

// AccountServiceParams lists the collaborators of the account service.
// Metrics and Events are optional.
type AccountServiceParams struct {
	Users   core.UserService
	Hasher  core.PasswordService
	Tokens  core.TokenService
	OTP     core.OTPService
	Mailer  core.MailerService
	Metrics core.MetricsService
	Events  *gevent.Manager
	Logger  *core.Logger
}

type AccountServiceDefault struct {
	users    core.UserService
	hasher   core.PasswordService
	tokens   core.TokenService
	otp      core.OTPService
	mailer   core.MailerService
	metrics  core.MetricsService
	events   *gevent.Manager
	logger   *core.Logger
	verifier *emailverifier.Verifier
}

func NewAccountService(params AccountServiceParams) *AccountServiceDefault {
	logger := params.Logger
	if logger == nil {
		logger = core.NewNopLogger()
	}

	return &AccountServiceDefault{
		users:    params.Users,
		hasher:   params.Hasher,
		tokens:   params.Tokens,
		otp:      params.OTP,
		mailer:   params.Mailer,
		metrics:  params.Metrics,
		events:   params.Events,
		logger:   logger,
		verifier: newEmailVerifier(),
	}
}

func (a *AccountServiceDefault) ID() string {
	return core.ACCOUNT_SERVICE
}

func (a *AccountServiceDefault) checkDependencies() error {
	if a.users == nil || a.hasher == nil || a.tokens == nil || a.otp == nil || a.mailer == nil {
		return errors.New("account service is missing a required dependency")
	}

	return nil
}

func (a *AccountServiceDefault) Register(ctx context.Context, username string, email string, password string) (user *models.User, err error) {
	defer func() { a.record(operationRegister, err) }()

	missing := validation.Errors{
		"username": validation.Validate(username, validation.Required),
		"email":    validation.Validate(email, validation.Required),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
	if missing != nil {
		return nil, core.NewAccountError(core.ErrKeyValidationFailed, missing, msgRegisterMissingFields)
	}

	if !a.verifier.ParseAddress(email).Valid {
		return nil, core.NewAccountError(core.ErrKeyValidationFailed, nil, msgInvalidEmail)
	}

	hash, err := a.hasher.HashPassword(password)
	if err != nil {
		a.logger.Error("failed to hash password", zap.Error(err))
		return nil, asAccountError(err, core.ErrKeyHashingFailed)
	}

	user, err = a.users.CreateUser(ctx, username, email, hash)
	if err != nil {
		return nil, asAccountError(err, core.ErrKeyAccountCreationFailed)
	}

	if err := event.FireUserCreatedEvent(a.events, user); err != nil {
		a.logger.Warn("user.created listener failed", zap.Error(err))
	}

	return user, nil
}

func (a *AccountServiceDefault) Login(ctx context.Context, email string, password string) (token string, user *models.User, err error) {
	defer func() { a.record(operationLogin, err) }()

	missing := validation.Errors{
		"email":    validation.Validate(email, validation.Required),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
	if missing != nil {
		return "", nil, core.NewAccountError(core.ErrKeyValidationFailed, missing, msgLoginMissingFields)
	}

	user, err = a.users.UserByEmail(ctx, email)
	if err != nil {
		return "", nil, asAccountError(err, core.ErrKeyDatabaseOperationFailed)
	}

	if !a.hasher.VerifyPassword(password, user.PasswordHash) {
		return "", nil, core.NewAccountError(core.ErrKeyInvalidPassword, nil)
	}

	token, err = a.tokens.IssueToken(user.ID)
	if err != nil {
		a.logger.Error("failed to issue token", zap.Error(err))
		return "", nil, asAccountError(err, core.ErrKeyJWTGenerationFailed)
	}

	return token, user, nil
}

func (a *AccountServiceDefault) ForgotPassword(ctx context.Context, email string) (err error) {
	defer func() { a.record(operationForgotPassword, err) }()

	if err := validation.Validate(email, validation.Required); err != nil {
		return core.NewAccountError(core.ErrKeyValidationFailed, err, msgForgotMissingEmail)
	}

	user, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		return asAccountError(err, core.ErrKeyDatabaseOperationFailed)
	}

	code, err := a.otp.OTPGenerate()
	if err != nil {
		a.logger.Error("failed to generate otp", zap.Error(err))
		return asAccountError(err, core.ErrKeyOTPGenerationFailed)
	}

	err = a.mailer.TemplateSend(ctx, core.MAILER_TPL_PASSWORD_RESET_OTP, nil, core.MailerTemplateData{
		"Username": user.Username,
		"Code":     code,
	}, user.Email)
	if err != nil {
		a.logger.Error("failed to send password reset email", zap.String("user_id", user.ID), zap.Error(err))
		return core.NewAccountError(core.ErrKeyEmailDeliveryFailed, err)
	}

	if err := event.FirePasswordResetRequestedEvent(a.events, user); err != nil {
		a.logger.Warn("password reset listener failed", zap.Error(err))
	}

	return nil
}

func (a *AccountServiceDefault) record(operation string, err error) {
	if a.metrics != nil {
		a.metrics.RecordAccountOperation(operation, core.MetricOutcome(err))
	}
}

// asAccountError keeps an AccountError as is and wraps anything else in key.
func asAccountError(err error, key core.AccountErrorType) error {
	if core.IsAccountError(err) {
		return err
	}

	return core.NewAccountError(key, err)
}

func newEmailVerifier() *emailverifier.Verifier {
	verifier := emailverifier.NewVerifier()

	verifier.DisableSMTPCheck()
	verifier.DisableGravatarCheck()
	verifier.DisableDomainSuggest()
	verifier.DisableAutoUpdateDisposable()

	return verifier
}
