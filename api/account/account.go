package account

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.lumeweb.com/accountd/core"
	"go.uber.org/zap"
)

const API_NAME = "account"

var _ core.API = (*AccountAPI)(nil)

func init() {
	core.RegisterAPI(&AccountAPI{})
}

type AccountAPI struct {
	accounts core.AccountService
	logger   *core.Logger
}

// NewAccountAPI builds the API around an explicit account service.
func NewAccountAPI(accounts core.AccountService, logger *core.Logger) *AccountAPI {
	if logger == nil {
		logger = core.NewNopLogger()
	}

	return &AccountAPI{accounts: accounts, logger: logger}
}

func (a *AccountAPI) Name() string {
	return API_NAME
}

// Configure mounts the auth routes on router, which is expected to be the
// /api subrouter.
func (a *AccountAPI) Configure(ctx core.Context, router *mux.Router) error {
	if a.accounts == nil {
		a.accounts = core.GetService[core.AccountService](ctx, core.ACCOUNT_SERVICE)
	}

	if a.accounts == nil {
		return errors.New("account service not available")
	}

	if a.logger == nil {
		a.logger = ctx.Logger().Named(API_NAME)
	}

	a.Routes(router)

	return nil
}

// Routes registers the handlers. OPTIONS is accepted so CORS preflight
// reaches the middleware.
func (a *AccountAPI) Routes(router *mux.Router) {
	auth := router.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", a.register).Methods(http.MethodPost, http.MethodOptions)
	auth.HandleFunc("/login", a.login).Methods(http.MethodPost, http.MethodOptions)
	auth.HandleFunc("/forgot-password", a.forgotPassword).Methods(http.MethodPost, http.MethodOptions)
}

func (a *AccountAPI) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !a.decode(w, r, &req) {
		return
	}

	if _, err := a.accounts.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		a.sendError(w, err)
		return
	}

	a.send(w, http.StatusCreated, MessageResponse{Message: msgRegistered})
}

func (a *AccountAPI) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !a.decode(w, r, &req) {
		return
	}

	token, _, err := a.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.sendError(w, err)
		return
	}

	w.Header().Set(core.AUTH_HEADER_NAME, core.BearerToken(token))
	a.send(w, http.StatusOK, LoginResponse{Message: msgLoggedIn, Token: token})
}

func (a *AccountAPI) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		a.sendError(w, err)
		return
	}

	a.send(w, http.StatusOK, MessageResponse{Message: msgResetSent})
}

func (a *AccountAPI) sendError(w http.ResponseWriter, err error) {
	accErr := core.AsAccountError(err)
	if accErr == nil {
		accErr = core.NewAccountError(core.ErrKeyDatabaseOperationFailed, err)
	}

	status := accErr.HttpStatus()
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", zap.String("key", string(accErr.Key)), zap.Error(err))
	}

	a.send(w, status, MessageResponse{Message: accErr.PublicMessage()})
}
