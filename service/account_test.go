package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gevent "github.com/gookit/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lumeweb.com/accountd/core"
	"go.lumeweb.com/accountd/db/models"
	"go.lumeweb.com/accountd/event"
	"golang.org/x/crypto/bcrypt"
)

type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	calls   atomic.Int32
	err     error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*models.User{}}
}

func (m *memoryUsers) CreateUser(ctx context.Context, username, email, hash string) (*models.User, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	if _, ok := m.byEmail[email]; ok {
		return nil, core.NewAccountError(core.ErrKeyEmailAlreadyExists, nil)
	}

	user := &models.User{ID: username + "-id", Username: username, Email: email, PasswordHash: hash}
	m.byEmail[email] = user

	return user, nil
}

func (m *memoryUsers) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	user, ok := m.byEmail[email]
	if !ok {
		return nil, core.NewAccountError(core.ErrKeyUserNotFound, nil)
	}

	return user, nil
}

type recordingMailer struct {
	mu    sync.Mutex
	err   error
	sends []sentMail
}

type sentMail struct {
	template string
	to       string
	vars     core.MailerTemplateData
}

func (r *recordingMailer) TemplateSend(ctx context.Context, template string, subjectVars, bodyVars core.MailerTemplateData, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sends = append(r.sends, sentMail{template: template, to: to, vars: bodyVars})
	return r.err
}

func (r *recordingMailer) TemplateRegister(name string, template core.MailerTemplate) error {
	return nil
}

type fixedOTP struct {
	code string
	err  error
}

func (f fixedOTP) OTPGenerate() (string, error) {
	return f.code, f.err
}

type accountFixture struct {
	svc     *AccountServiceDefault
	users   *memoryUsers
	mailer  *recordingMailer
	tokens  *TokenServiceDefault
	metrics *MetricsServiceDefault
	events  *gevent.Manager
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()

	tokens, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	f := &accountFixture{
		users:   newMemoryUsers(),
		mailer:  &recordingMailer{},
		tokens:  tokens,
		metrics: NewMetricsService(prometheus.NewRegistry()),
		events:  gevent.NewManager("test"),
	}

	f.svc = NewAccountService(AccountServiceParams{
		Users:   f.users,
		Hasher:  NewPasswordService(bcrypt.MinCost),
		Tokens:  tokens,
		OTP:     fixedOTP{code: "482913"},
		Mailer:  f.mailer,
		Metrics: f.metrics,
		Events:  f.events,
	})

	return f
}

func assertKey(t *testing.T, err error, key core.AccountErrorType) {
	t.Helper()
	require.Error(t, err)
	accErr := core.AsAccountError(err)
	require.NotNil(t, accErr, "expected AccountError, got %v", err)
	assert.Equal(t, key, accErr.Key)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores hash", func(t *testing.T) {
		f := newAccountFixture(t)

		user, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.NotEqual(t, "pw123", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw123")))
	})

	t.Run("missing fields have no side effects", func(t *testing.T) {
		cases := [][3]string{
			{"", "a@x.com", "pw"},
			{"a", "", "pw"},
			{"a", "a@x.com", ""},
		}

		for _, c := range cases {
			f := newAccountFixture(t)
			_, err := f.svc.Register(ctx, c[0], c[1], c[2])
			assertKey(t, err, core.ErrKeyValidationFailed)
			assert.Equal(t, "Please provide username,email,password", core.AsAccountError(err).Message)
			assert.Zero(t, f.users.calls.Load())
		}
	})

	t.Run("malformed email", func(t *testing.T) {
		for _, email := range []string{"not-an-email", "bob", "bob@localhost"} {
			f := newAccountFixture(t)
			_, err := f.svc.Register(ctx, "bob", email, "pw")
			assertKey(t, err, core.ErrKeyValidationFailed)
			assert.Equal(t, msgInvalidEmail, err.Error(), email)
			assert.Zero(t, f.users.calls.Load(), email)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newAccountFixture(t)

		_, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123")
		require.NoError(t, err)

		_, err = f.svc.Register(ctx, "alice2", "alice@x.com", "pw999")
		assertKey(t, err, core.ErrKeyEmailAlreadyExists)

		// First account is untouched.
		_, _, err = f.svc.Login(ctx, "alice@x.com", "pw123")
		assert.NoError(t, err)
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newAccountFixture(t)
		f.users.err = errors.New("disk full")

		_, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123")
		assertKey(t, err, core.ErrKeyAccountCreationFailed)
	})

	t.Run("fires user.created", func(t *testing.T) {
		f := newAccountFixture(t)

		var got *models.User
		event.ListenUserCreated(f.events, func(user *models.User) error {
			got = user
			return nil
		})

		user, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123")
		require.NoError(t, err)
		assert.Same(t, user, got)
	})

	t.Run("password longer than 72 bytes", func(t *testing.T) {
		f := newAccountFixture(t)
		long := strings.Repeat("p", 73)

		_, err := f.svc.Register(ctx, "bob", "bob@x.com", long)
		require.NoError(t, err)

		token, _, err := f.svc.Login(ctx, "bob@x.com", long)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("concurrent duplicate registration", func(t *testing.T) {
		f := newAccountFixture(t)

		successes, conflicts := registerConcurrently(t, f.svc, 8)
		assert.EqualValues(t, 1, successes)
		assert.EqualValues(t, 7, conflicts)
	})

	t.Run("concurrent duplicate registration on sqlite", func(t *testing.T) {
		f := newAccountFixture(t)
		f.svc.users = NewUserService(newTestDB(t), nil)

		successes, conflicts := registerConcurrently(t, f.svc, 16)
		assert.EqualValues(t, 1, successes)
		assert.EqualValues(t, 15, conflicts)
	})
}

// registerConcurrently races workers registrations of the same email.
func registerConcurrently(t *testing.T, svc *AccountServiceDefault, workers int) (successes, conflicts int32) {
	t.Helper()

	var (
		wg  sync.WaitGroup
		ok  atomic.Int32
		dup atomic.Int32
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), "alice", "alice@x.com", "pw123")
			switch {
			case err == nil:
				ok.Add(1)
			case core.IsAccountErrorType(err, core.ErrKeyEmailAlreadyExists):
				dup.Add(1)
			default:
				t.Errorf("unexpected register error: %v", err)
			}
		}()
	}
	wg.Wait()

	return ok.Load(), dup.Load()
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t)

	_, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		token, user, err := f.svc.Login(ctx, "alice@x.com", "pw123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := f.tokens.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	})

	t.Run("wrong password", func(t *testing.T) {
		token, _, err := f.svc.Login(ctx, "alice@x.com", "wrong")
		assertKey(t, err, core.ErrKeyInvalidPassword)
		assert.Empty(t, token)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, "nouser@x.com", "pw123")
		assertKey(t, err, core.ErrKeyUserNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		before := f.users.calls.Load()

		_, _, err := f.svc.Login(ctx, "", "pw123")
		assertKey(t, err, core.ErrKeyValidationFailed)
		_, _, err = f.svc.Login(ctx, "alice@x.com", "")
		assertKey(t, err, core.ErrKeyValidationFailed)

		assert.Equal(t, before, f.users.calls.Load())
	})

	t.Run("outcomes recorded", func(t *testing.T) {
		ops := f.metrics.Operations()
		assert.GreaterOrEqual(t, testutil.ToFloat64(ops.WithLabelValues(operationLogin, core.MetricOutcomeSuccess)), 1.0)
		assert.GreaterOrEqual(t, testutil.ToFloat64(ops.WithLabelValues(operationLogin, string(core.ErrKeyInvalidPassword))), 1.0)
	})
}

func TestForgotPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("mails the code", func(t *testing.T) {
		f := newAccountFixture(t)
		_, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123")
		require.NoError(t, err)

		var fired bool
		event.ListenPasswordResetRequested(f.events, func(user *models.User) error {
			fired = true
			return nil
		})

		require.NoError(t, f.svc.ForgotPassword(ctx, "alice@x.com"))

		require.Len(t, f.mailer.sends, 1)
		sent := f.mailer.sends[0]
		assert.Equal(t, core.MAILER_TPL_PASSWORD_RESET_OTP, sent.template)
		assert.Equal(t, "alice@x.com", sent.to)
		assert.Equal(t, "482913", sent.vars["Code"])
		assert.True(t, fired)
	})

	t.Run("unknown user sends nothing", func(t *testing.T) {
		f := newAccountFixture(t)

		err := f.svc.ForgotPassword(ctx, "nouser@x.com")
		assertKey(t, err, core.ErrKeyUserNotFound)
		assert.Empty(t, f.mailer.sends)
	})

	t.Run("missing email", func(t *testing.T) {
		f := newAccountFixture(t)

		err := f.svc.ForgotPassword(ctx, "")
		assertKey(t, err, core.ErrKeyValidationFailed)
		assert.Zero(t, f.users.calls.Load())
		assert.Empty(t, f.mailer.sends)
	})

	t.Run("delivery failure", func(t *testing.T) {
		f := newAccountFixture(t)
		_, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123")
		require.NoError(t, err)

		f.mailer.err = errors.New("smtp down")

		err = f.svc.ForgotPassword(ctx, "alice@x.com")
		assertKey(t, err, core.ErrKeyEmailDeliveryFailed)
		assert.Equal(t, 500, core.AsAccountError(err).HttpStatus())
	})

	t.Run("otp failure", func(t *testing.T) {
		f := newAccountFixture(t)
		_, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123")
		require.NoError(t, err)

		f.svc.otp = fixedOTP{err: errors.New("entropy")}

		err = f.svc.ForgotPassword(ctx, "alice@x.com")
		assertKey(t, err, core.ErrKeyOTPGenerationFailed)
		assert.Empty(t, f.mailer.sends)
	})
}
