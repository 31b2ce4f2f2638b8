package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/proposal-review/advisor/internal/agent/assistant"
	"github.com/proposal-review/advisor/internal/agent/dataset"
	"github.com/proposal-review/advisor/internal/agent/model"
	"github.com/proposal-review/advisor/internal/agent/store"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

// app holds the process-wide dependencies shared by every command.
type app struct {
	cfg       AppConfig
	store     store.Store
	persister *dataset.Persister
	dataset   *dataset.Dataset
	closers   []func() error
}

func newApp(ctx context.Context, cfg AppConfig) (*app, error) {
	st, closer, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	persister := dataset.NewPersister(st, cfg.Store.WriteTimeout)
	a := &app{
		cfg:       cfg,
		store:     st,
		persister: persister,
		dataset:   dataset.Load(ctx, st, persister),
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	return a, nil
}

// openStore selects the durable store backend.
func openStore(ctx context.Context, cfg AppConfig) (store.Store, func() error, error) {
	keys := store.NewKeys(cfg.Store.KeyPrefix)
	switch cfg.Store.Backend {
	case model.StoreBackendRedis:
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialise Redis client: %w", err)
		}
		logx.Info().Str("backend", cfg.Store.Backend).Msg("Connected to Redis")
		return store.NewRedisStore(rdb, keys), rdb.Close, nil
	case model.StoreBackendSQLite:
		st, err := store.OpenSQLite(cfg.Store.SQLitePath, keys)
		if err != nil {
			return nil, nil, err
		}
		logx.Info().Str("backend", cfg.Store.Backend).Str("path", cfg.Store.SQLitePath).Msg("Opened SQLite store")
		return st, st.Close, nil
	case model.StoreBackendMemory:
		logx.Warn().Msg("Using in-memory store - edits are lost on exit")
		return store.NewMemoryStore(keys), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
}

func (a *app) newAssistant(ctx context.Context) (*assistant.Adapter, error) {
	if a.cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	cm, err := assistant.NewGeminiChatModel(ctx, assistant.ChatModelConfig{
		APIKey:  a.cfg.APIKey,
		BaseURL: a.cfg.BaseURL,
		Model:   a.cfg.Assistant,
	})
	if err != nil {
		return nil, err
	}
	return assistant.NewAdapter(ctx, cm, a.cfg.Assistant.Model, a.cfg.Prompt)
}

// Close flushes pending dataset writes before releasing the store.
func (a *app) Close() error {
	a.persister.Close()
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
