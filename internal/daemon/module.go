// Package daemon composes the local mock backend into an fx application:
// logger, instance lock, HTTP server, and lifecycle hooks.
package daemon

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pigeonchat/pigeon/internal/lock"
	"github.com/pigeonchat/pigeon/internal/logging"
	"github.com/pigeonchat/pigeon/internal/mockapi"
	"github.com/pigeonchat/pigeon/internal/session"
)

// Params holds the resolved daemon configuration passed to the fx module.
type Params struct {
	Addr       string
	JWTSecret  []byte
	ReplyDelay time.Duration
	DataDir    string // optional override for testing; empty = use default
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideLock,
			provideMockAPI,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger() (*zap.Logger, error) {
	return logging.New(session.DaemonLogPath(), "daemon")
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	dir := p.DataDir
	if dir == "" {
		dir = session.DaemonDir()
	}
	logger.Info("acquiring daemon lock", zap.String("dir", dir))
	l, err := lock.Acquire(dir)
	if err != nil {
		return nil, err
	}
	logger.Info("daemon lock acquired")
	return l, nil
}

func provideMockAPI(p Params, logger *zap.Logger) *mockapi.Server {
	return mockapi.New(mockapi.Options{
		JWTSecret:  p.JWTSecret,
		ReplyDelay: p.ReplyDelay,
		Logger:     logger,
	})
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
