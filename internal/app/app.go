// Package app собирает конфигурацию, логгер, хранилище и сервис записей
// в объект, с которым работают команды.
package app

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"pwvault/internal/config"
	"pwvault/internal/crypto"
	"pwvault/internal/domain/entry"
	"pwvault/internal/infrastructure/storage"
)

type App struct {
	config  *config.Config
	log     *slog.Logger
	repo    entry.Repository
	entries entry.Servicer
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	codec, err := crypto.NewCodec(cfg.CryptoParams())
	if err != nil {
		return nil, fmt.Errorf("invalid crypto parameters: %w", err)
	}

	repo, err := storage.New(cfg.StoreDriver, cfg.StorePath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", cfg.StorePath, err)
	}

	log.Debug("app initialized",
		slog.String("driver", cfg.StoreDriver),
		slog.String("path", cfg.StorePath),
		slog.Int("kdf_iterations", cfg.KDFIterations),
	)

	return &App{
		config:  cfg,
		log:     log,
		repo:    repo,
		entries: entry.NewService(repo, codec, log),
	}, nil
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) StoreEntry(ctx context.Context, title, secret, masterPassword string) error {
	return a.entries.Store(ctx, title, secret, masterPassword)
}

func (a *App) RetrieveEntry(ctx context.Context, title, masterPassword string) (*entry.Retrieved, error) {
	return a.entries.Retrieve(ctx, title, masterPassword)
}

func (a *App) DeleteEntry(ctx context.Context, title string) error {
	return a.entries.Delete(ctx, title)
}

func (a *App) ListTitles(ctx context.Context) ([]string, error) {
	return a.entries.ListTitles(ctx)
}

func (a *App) Close() error {
	return a.repo.Close()
}
