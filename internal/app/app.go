// Package app assembles the ride service and its optional backing stores
// from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"ridetrace/internal/config"
	"ridetrace/internal/model"
	"ridetrace/internal/postgres"
	"ridetrace/internal/redis"
	"ridetrace/internal/service/gazetteer"
	"ridetrace/internal/service/ride"
	"ridetrace/internal/service/storage"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const rideShards = 16

// App holds the service and the connections it owns.
type App struct {
	Service *ride.Service
	Redis   *redis.Client
	DB      *gorm.DB
}

// New loads the gazetteer and connects Redis and PostgreSQL when their URLs are
// set. An empty URL disables that store.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger, opts ...ride.Option) (*App, error) {
	gaz, err := gazetteer.LoadFile(cfg.StationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load stations: %w", err)
	}
	log.Info().Str("path", cfg.StationsPath).Int("stations", gaz.Len()).Msg("gazetteer loaded")

	a := &App{}
	opts = append([]ride.Option{ride.WithStore(storage.NewShardedMemoryStorage[string, *model.Ride](rideShards, nil))}, opts...)
	if cfg.RedisUrl != "" {
		a.Redis, err = redis.Connect(ctx, cfg.RedisUrl, log.With().Str("component", "redis").Logger())
		if err != nil {
			return nil, err
		}
		opts = append(opts, ride.WithCache(a.Redis))
	}
	if cfg.DBUrl != "" {
		a.DB, err = postgres.Open(cfg.DBUrl, log.With().Str("component", "postgres").Logger())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		opts = append(opts, ride.WithPersister(postgres.NewRideRepository(a.DB)))
	}

	a.Service, err = ride.New(cfg, gaz, log.With().Str("component", "ride").Logger(), opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

// ConfigEcho is the configuration subset served on the index route. Connection
// URLs are reduced to whether they are set.
func ConfigEcho(cfg config.Config) map[string]string {
	enabled := func(s string) string {
		if s == "" {
			return "disabled"
		}
		return "enabled"
	}
	return map[string]string{
		"port":      cfg.Port,
		"db":        enabled(cfg.DBUrl),
		"redis":     enabled(cfg.RedisUrl),
		"segmenter": cfg.SegmenterBackend,
		"stations":  cfg.StationsPath,
	}
}
