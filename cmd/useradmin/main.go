// Command useradmin serves the user administration screen.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/useradmin/modules/usermanagement"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/web"
	"github.com/dmitrymomot/useradmin/pkg/config"
	"github.com/dmitrymomot/useradmin/pkg/httpserver"
	"github.com/dmitrymomot/useradmin/pkg/logger"
)

const serviceName = "useradmin"

type appConfig struct {
	Env          string        `env:"USERADMIN_ENV" envDefault:"development" yaml:"env"`
	LogLevel     string        `env:"USERADMIN_LOG_LEVEL" yaml:"log_level"`
	Backend      string        `env:"USERADMIN_BACKEND" envDefault:"memory" yaml:"backend"`
	Latency      time.Duration `env:"USERADMIN_LATENCY" yaml:"latency"`
	SeedFile     string        `env:"USERADMIN_SEED_FILE" yaml:"seed_file"`
	ToastTTL     time.Duration `env:"USERADMIN_TOAST_TTL" envDefault:"2s" yaml:"toast_ttl"`
	SessionIdle  time.Duration `env:"USERADMIN_SESSION_IDLE" envDefault:"30m" yaml:"session_idle"`
	SecureCookie bool          `env:"USERADMIN_SECURE_COOKIE" yaml:"secure_cookie"`
	ConfigFile   string        `env:"USERADMIN_CONFIG_FILE" yaml:"-"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("useradmin stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		if err := config.LoadYAML(cfg.ConfigFile, &cfg); err != nil {
			return err
		}
	}
	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, serviceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	)
	logger.SetAsDefault(log)

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	registry := web.NewRegistry(func() *usermanagement.Screen {
		return usermanagement.NewScreen(b.svc,
			usermanagement.WithLogger(log),
			usermanagement.WithToastTTL(cfg.ToastTTL),
		)
	},
		web.WithIdleTimeout(cfg.SessionIdle),
		web.WithCookie(web.DefaultCookieName, cfg.SecureCookie),
		web.WithRegistryLogger(log),
	)

	router := web.NewRouter(registry,
		web.WithRouterLogger(log),
		web.WithReadinessChecks(5*time.Second, b.checks...),
	)
	server := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, router)
	})
	g.Go(func() error {
		return registry.Run(gctx)
	})

	log.InfoContext(ctx, "useradmin starting",
		slog.String("backend", cfg.Backend),
		slog.String("addr", httpCfg.Addr),
	)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
