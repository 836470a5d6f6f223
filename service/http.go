package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.lumeweb.com/accountd/core"
	"go.lumeweb.com/accountd/middleware"
	"go.uber.org/zap"
)

var _ core.HTTPService = (*HTTPServiceDefault)(nil)

const shutdownTimeout = 10 * time.Second

func init() {
	core.RegisterService(core.ServiceInfo{
		ID: core.HTTP_SERVICE,
		Factory: func() (core.Service, []core.ContextBuilderOption, error) {
			return NewHTTPService()
		},
		Depends: []string{core.ACCOUNT_SERVICE, core.METRICS_SERVICE},
	})
}

type HTTPServiceDefault struct {
	ctx     core.Context
	logger  *core.Logger
	router  *mux.Router
	handler http.Handler
	srv     *http.Server
}

var _ handlers.RecoveryHandlerLogger = (*recoverLogger)(nil)

type recoverLogger struct {
	logger *core.Logger
}

func (r *recoverLogger) Println(v ...interface{}) {
	r.logger.Error("Recovered from panic", zap.Any("panic", v))
}

func NewHTTPService() (*HTTPServiceDefault, []core.ContextBuilderOption, error) {
	_http := &HTTPServiceDefault{
		router: mux.NewRouter(),
		logger: core.NewNopLogger(),
	}

	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
	}

	opts := core.ContextOptions(
		core.ContextWithStartupFunc(func(ctx core.Context) error {
			_http.ctx = ctx
			_http.logger = ctx.ServiceLogger(_http)
			return nil
		}),
		core.ContextWithExitFunc(func(ctx core.Context) error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return _http.Shutdown(shutdownCtx)
		}),
	)

	_http.srv = srv

	return _http, opts, nil
}

func (h *HTTPServiceDefault) ID() string {
	return core.HTTP_SERVICE
}

func (h *HTTPServiceDefault) Router() *mux.Router {
	return h.router
}

// Handler is the router wrapped in panic recovery.
func (h *HTTPServiceDefault) Handler() http.Handler {
	if h.handler == nil {
		return h.router
	}

	return h.handler
}

func (h *HTTPServiceDefault) Init() error {
	h.srv.Addr = ":" + strconv.FormatUint(uint64(h.ctx.Config().Config().Core.Port), 10)

	api := h.router.PathPrefix("/api").Subrouter()
	api.Use(middleware.CorsMiddleware(nil))

	for _, a := range core.GetAPIList() {
		if err := a.Configure(h.ctx, api); err != nil {
			return err
		}
		h.logger.Debug("api configured", zap.String("api", a.Name()))
	}

	if metrics := core.GetService[core.MetricsService](h.ctx, core.METRICS_SERVICE); metrics != nil {
		h.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	h.handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(&recoverLogger{h.logger}),
		handlers.PrintRecoveryStack(true),
	)(h.router)
	h.srv.Handler = h.handler

	return nil
}

func (h *HTTPServiceDefault) Serve() error {
	ln, err := net.Listen("tcp", h.srv.Addr)
	if err != nil {
		return err
	}

	h.logger.Info("listening", zap.String("addr", ln.Addr().String()))

	go func() {
		err := h.srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("Failed to serve", zap.Error(err))
			h.ctx.Cancel()
		}
	}()

	return nil
}

func (h *HTTPServiceDefault) Shutdown(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
