package accountdcmd

import (
	"os"

	"go.lumeweb.com/accountd"
	"go.lumeweb.com/accountd/config"
	"go.lumeweb.com/accountd/core"
	"go.uber.org/zap"
)

func Main() {
	cfg, err := config.NewManager()
	logger := core.NewLogger(cfg)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	err = cfg.Init()
	if err != nil {
		logger.Fatal("Failed to initialize config", zap.Error(err))
	}

	logger.SetLevelFromConfig()

	ctx, err := core.NewContext(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create context", zap.Error(err))
	}

	app := accountd.NewApp(ctx)

	err = app.Init()
	if err != nil {
		logger.Error("Failed to initialize accountd", zap.Error(err))
		os.Exit(core.ExitCodeFailedStartup)
	}

	err = app.Start()
	if err != nil {
		logger.Error("Failed to start accountd", zap.Error(err))
		os.Exit(core.ExitCodeFailedStartup)
	}

	err = app.Serve()
	if err != nil {
		logger.Error("Failed to serve accountd", zap.Error(err))
		os.Exit(core.ExitCodeFailedStartup)
	}

	waitForSignals(app)
}
