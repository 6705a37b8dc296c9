package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jwebster45206/worldforge/internal/config"
	"github.com/jwebster45206/worldforge/internal/dilemma"
	"github.com/jwebster45206/worldforge/internal/game"
	"github.com/jwebster45206/worldforge/internal/logger"
	"github.com/jwebster45206/worldforge/internal/services"
	istorage "github.com/jwebster45206/worldforge/internal/storage"
	"github.com/jwebster45206/worldforge/internal/transport"
	"github.com/jwebster45206/worldforge/pkg/bridge"
	"github.com/jwebster45206/worldforge/pkg/storage"
)

const (
	redisRetries    = 5
	redisRetryDelay = time.Second
)

// app holds everything a command needs, built from the environment.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder *logger.Recorder
	store    storage.Storage

	closers []io.Closer
}

// newApp loads config and sets up logging. Log output goes to the
// configured log file, else to fallback (which may be nil to discard).
// The recorder always keeps the most recent entries for the console.
func newApp(fallback io.Writer) (*app, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	w := fallback
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		w = f
	}

	var next slog.Handler
	if w != nil {
		next = logger.NewHandler(cfg, w)
	}
	a.recorder = logger.NewRecorder(next, cfg.LogLevel, logger.DefaultRecorderSize)
	a.logger = slog.New(a.recorder)
	slog.SetDefault(a.logger)
	return a, nil
}

// openStorage connects the configured snapshot store. It returns nil
// when storage is disabled.
func (a *app) openStorage(ctx context.Context) (storage.Storage, error) {
	if a.store != nil {
		return a.store, nil
	}

	switch a.cfg.Storage {
	case config.StorageSQLite:
		s, err := istorage.OpenSQLite(a.cfg.SQLitePath, a.logger)
		if err != nil {
			return nil, err
		}
		a.store = s
	case config.StorageRedis:
		client, err := istorage.NewRedisClient(a.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		s := istorage.NewRedisStorage(client, a.cfg.SnapshotTTL, a.logger)
		if err := s.WaitForConnection(ctx, redisRetries, redisRetryDelay); err != nil {
			_ = s.Close()
			return nil, err
		}
		a.store = s
	default:
		return nil, nil
	}
	a.closers = append(a.closers, a.store)
	return a.store, nil
}

// requireStorage is openStorage for commands that cannot run without it.
func (a *app) requireStorage(ctx context.Context) (storage.Storage, error) {
	s, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("session storage is disabled (WORLDFORGE_STORAGE=none)")
	}
	return s, nil
}

// newTransport builds the engine transport for the configured mode.
func (a *app) newTransport() (bridge.Transport, error) {
	if a.cfg.PeerTransport == config.TransportRedis {
		return a.newRedisTransport()
	}
	return transport.NewTCPTransport(a.cfg.PeerTimeout, a.cfg.PeerTimeout, a.logger), nil
}

func (a *app) newRedisTransport() (*transport.RedisTransport, error) {
	client, err := istorage.NewRedisClient(a.cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client)
	return transport.NewRedisTransport(client, a.cfg.RedisChannel, a.logger), nil
}

func (a *app) newDilemmaService() *dilemma.Service {
	var primary dilemma.Supplier
	if a.cfg.UseLLM() {
		llm := services.NewAnthropicService(a.cfg.AnthropicAPIKey, a.cfg.Model, a.logger)
		primary = dilemma.NewLLMSupplier(llm, a.logger)
		a.logger.Info("Dilemmas generated by model", "model", a.cfg.Model)
	} else {
		a.logger.Info("No API key set, using built-in dilemmas")
	}
	return dilemma.NewService(primary, dilemma.NewFallback(), a.logger)
}

// newSession wires a game session over a fresh bridge.
func (a *app) newSession(ctx context.Context) (*game.Session, error) {
	tr, err := a.newTransport()
	if err != nil {
		return nil, err
	}
	b := bridge.New(tr, a.logger, bridge.WithDefaultAddress(a.cfg.PeerHost, a.cfg.PeerPort))

	opts := []game.Option{}
	store, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, game.WithStorage(store))
	}
	return game.New(a.newDilemmaService(), b, a.logger, opts...), nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("Failed to close resource", "error", err)
		}
	}
}
