package app

import (
	"context"
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/directory"
	"github.com/shrimpsizemoose/rollcall/internal/store"
	"github.com/shrimpsizemoose/rollcall/internal/tracker"
)

type Service struct {
	Config    *Config
	Store     store.StateStore
	Directory *directory.Client
	Tracker   *tracker.Tracker
	Auth      *Auth
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	if config.Storage.MigrationsDir != "" {
		if err := store.ApplyMigrations(config.Storage.MigrationsDir); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	client := directory.NewClient(config.API.BaseURL, config.APITimeout())
	tr := tracker.New(client, tracker.WithPersister(store, config.Storage.Name))

	// stale or unreadable state must not keep the teacher out of class
	if err := tr.Hydrate(context.Background()); err != nil {
		logger.Error.Printf("Starting with empty state: %v", err)
	}

	return &Service{
		Config:    config,
		Store:     store,
		Directory: client,
		Tracker:   tr,
		Auth:      NewAuth(config, tr),
	}, nil
}

func (s *Service) Close() error {
	if s.Store == nil {
		return nil
	}
	if err := s.Store.Close(); err != nil {
		return fmt.Errorf("errors while closing: store: %w", err)
	}
	return nil
}
