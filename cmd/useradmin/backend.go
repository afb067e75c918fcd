package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/useradmin/pkg/config"
	"github.com/dmitrymomot/useradmin/pkg/httpserver"
	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/pkg/mongo"
	"github.com/dmitrymomot/useradmin/pkg/pg"
	"github.com/dmitrymomot/useradmin/pkg/redis"
	"github.com/dmitrymomot/useradmin/svc/users"
)

type backend struct {
	svc    users.Service
	checks []httpserver.Check
	close  func()
}

func openBackend(ctx context.Context, cfg appConfig, log *slog.Logger) (*backend, error) {
	var seed []users.User
	if cfg.SeedFile != "" {
		var err error
		if seed, err = users.LoadSeedFile(cfg.SeedFile); err != nil {
			return nil, err
		}
	}

	switch cfg.Backend {
	case "", "memory":
		opts := []users.MemoryOption{
			users.WithLatency(cfg.Latency),
			users.WithMemoryLogger(log),
		}
		if seed != nil {
			opts = append(opts, users.WithSeed(seed...))
		}
		return &backend{svc: users.NewMemoryService(opts...), close: func() {}}, nil

	case "postgres":
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, users.Migrations, pgCfg, log); err != nil {
			pool.Close()
			return nil, err
		}
		if seed != nil {
			log.WarnContext(ctx, "seed file ignored by the postgres backend")
		}
		return &backend{
			svc:    users.NewPostgresService(pool),
			checks: []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}},
			close:  pool.Close,
		}, nil

	case "redis":
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		svc := users.NewRedisService(client, redisCfg.KeyPrefix)
		if seed != nil {
			if err := svc.Seed(ctx, seed); err != nil {
				_ = client.Close()
				return nil, err
			}
		}
		return &backend{
			svc:    svc,
			checks: []httpserver.Check{{Name: "redis", Fn: redis.Healthcheck(client)}},
			close: func() {
				if err := client.Close(); err != nil {
					log.Error("close redis", logger.Error(err))
				}
			},
		}, nil

	case "mongo":
		var mongoCfg mongo.Config
		if err := config.Load(&mongoCfg); err != nil {
			return nil, err
		}
		client, err := mongo.New(ctx, mongoCfg)
		if err != nil {
			return nil, err
		}
		svc := users.NewMongoService(client.Database(mongoCfg.Database))
		if seed != nil {
			if err := svc.Seed(ctx, seed); err != nil {
				_ = client.Disconnect(context.WithoutCancel(ctx))
				return nil, err
			}
		}
		return &backend{
			svc:    svc,
			checks: []httpserver.Check{{Name: "mongo", Fn: mongo.Healthcheck(client)}},
			close: func() {
				if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
					log.Error("close mongo", logger.Error(err))
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("useradmin: unknown backend %q", cfg.Backend)
}
