package accountdcmd

import (
	"os"
	"os/signal"
	"syscall"

	"go.lumeweb.com/accountd"
	"go.lumeweb.com/accountd/core"
	"go.uber.org/zap"
)

// waitForSignals blocks until the process is told to stop or the app context
// is cancelled, then shuts the app down.
func waitForSignals(app accountd.App) {
	ctx := app.Context()
	logger := ctx.Logger()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	for {
		select {
		case <-ctx.Done():
			logger.Info("context cancelled, shutting down")
			ctx.SetExitCode(core.ExitCodeFailedQuit)
			accountd.Shutdown(app, logger.Logger)
			return

		case sig := <-sigchan:
			switch sig {
			case syscall.SIGQUIT:
				logger.Info("quitting process immediately", zap.String("signal", "SIGQUIT"))
				os.Exit(core.ExitCodeForceQuit)

			case syscall.SIGTERM, syscall.SIGINT:
				logger.Info("shutting down, then terminating", zap.String("signal", sig.String()))
				accountd.Shutdown(app, logger.With(zap.String("signal", sig.String())))
				return

			case syscall.SIGHUP:
				// ignore; this signal is sometimes sent outside of the user's control
				logger.Info("not implemented", zap.String("signal", "SIGHUP"))
			}
		}
	}
}
