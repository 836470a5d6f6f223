package accountd

import (
	"errors"
	"os"
	"sync"

	"go.lumeweb.com/accountd/core"
	"go.lumeweb.com/accountd/db"
	"go.lumeweb.com/accountd/event"
	"go.uber.org/zap"

	_ "go.lumeweb.com/accountd/api/account"
	_ "go.lumeweb.com/accountd/service"
)

type App interface {
	Init() error
	Start() error
	Stop() error
	Context() core.Context
	Serve() error
}

var _ App = (*AppImpl)(nil)

type AppImpl struct {
	ctx   core.Context
	ctxMu sync.RWMutex
}

func NewApp(ctx core.Context) *AppImpl {
	return &AppImpl{
		ctx: ctx,
	}
}

// Init opens the database, builds every registered service and rebuilds the
// context with their options applied.
func (a *AppImpl) Init() error {
	ctx := a.Context()

	ctx.Logger().Info("Initializing accountd")

	_, ctxOpts, err := db.NewDatabase(ctx)
	if err != nil {
		ctx.Logger().Error("Error opening database", zap.Error(err))
		return err
	}

	opts, err := a.initServices(ctx)
	if err != nil {
		return err
	}
	ctxOpts = append(ctxOpts, opts...)

	ctxOpts = append(ctxOpts, core.ContextWithEvents(core.GetEvents()...))

	ctx, err = core.NewContext(ctx.Config(), ctx.Logger(), ctxOpts...)
	if err != nil {
		ctx.Logger().Error("Error creating context", zap.Error(err))
		return err
	}

	a.SetContext(ctx)

	return nil
}

func (a *AppImpl) Start() error {
	ctx := a.Context()
	ctx.Logger().Info("Starting accountd")

	for _, startupFunc := range ctx.StartupFuncs() {
		if err := startupFunc(ctx); err != nil {
			ctx.Logger().Error("Error running startup function", zap.Error(err))
			return err
		}
	}

	httpSvc := core.GetService[core.HTTPService](ctx, core.HTTP_SERVICE)
	if httpSvc == nil {
		return errors.New("http service not found")
	}

	if err := httpSvc.Init(); err != nil {
		ctx.Logger().Error("Error initializing HTTP service", zap.Error(err))
		return err
	}

	if err := event.FireBootCompleteEvent(ctx); err != nil {
		ctx.Logger().Error("Error firing boot complete event", zap.Error(err))
		return err
	}

	return nil
}

func (a *AppImpl) Stop() error {
	ctx := a.Context()
	ctx.Logger().Info("Stopping accountd")

	// Dependents first, so the HTTP server drains before the database closes.
	funcs := ctx.ExitFuncs()
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](ctx); err != nil {
			ctx.Logger().Error("Error stopping accountd", zap.Error(err))
		}
	}

	return nil
}

func (a *AppImpl) Serve() error {
	ctx := a.Context()

	httpSvc := core.GetService[core.HTTPService](ctx, core.HTTP_SERVICE)
	if httpSvc == nil {
		ctx.Logger().Error("HTTP service not found")
		return errors.New("http service not found")
	}

	return httpSvc.Serve()
}

func (a *AppImpl) initServices(ctx core.Context) (ctxOpts []core.ContextBuilderOption, err error) {
	svcs, err := core.GetServices()
	if err != nil {
		ctx.Logger().Error("Error ordering services", zap.Error(err))
		return nil, err
	}

	for _, svcInfo := range svcs {
		svc, opts, err := svcInfo.Factory()
		if err != nil {
			ctx.Logger().Error("Error creating service", zap.String("service", svcInfo.ID), zap.Error(err))
			return nil, err
		}

		ctxOpts = append(ctxOpts, opts...)
		ctxOpts = append(ctxOpts, core.ContextWithService(svcInfo.ID, svc))
	}

	return ctxOpts, nil
}

func (a *AppImpl) Context() core.Context {
	a.ctxMu.RLock()
	defer a.ctxMu.RUnlock()
	return a.ctx
}

func (a *AppImpl) SetContext(ctx core.Context) {
	a.ctxMu.Lock()
	defer a.ctxMu.Unlock()
	a.ctx = ctx
}

// Shutdown cancels the app context, runs exit funcs and exits the process.
func Shutdown(app App, logger *zap.Logger) {
	ctx := app.Context()

	if logger == nil {
		logger = ctx.Logger().Logger
	}

	ctx.Cancel()

	if err := app.Stop(); err != nil {
		logger.Error("Failed to stop accountd", zap.Error(err))
		ctx.SetExitCode(core.ExitCodeFailedQuit)
	}

	_ = logger.Sync()

	os.Exit(ctx.ExitCode())
}
