package storage

import (
	"context"
	"fmt"
	"time"

	"aisd/internal/providers"
	"aisd/internal/structures"
)

const openTimeout = 30 * time.Second

// NewStoreProvider opens the backend selected by storage.driver.
func NewStoreProvider(conf *structures.Config, logger providers.Logger) (Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	switch conf.Storage.Driver {
	case "sqlite":
		s, err := NewSQLiteStore(ctx, conf.Storage.Path, conf.Storage.ReadConns)
		if err != nil {
			return nil, err
		}
		logger.Infof(providers.TypeStore, "Opened sqlite store at %s", conf.Storage.Path)
		return s, nil
	case "postgres":
		s, err := NewPostgresStore(ctx, conf.Storage.DSN, conf.Storage.ReadConns)
		if err != nil {
			return nil, err
		}
		logger.Infof(providers.TypeStore, "Connected to postgres store")
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", conf.Storage.Driver)
	}
}
