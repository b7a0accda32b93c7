package profilestore

import (
	"context"
	"fmt"

	"horse.fit/langid/internal/config"
	"horse.fit/langid/internal/db"
)

// Open returns the store selected by PROFILE_STORE and a function that
// releases its resources.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config is nil")
	}

	switch cfg.ProfileStore {
	case config.StoreFile, "":
		return NewFileStore(cfg.ProfileDir), func() error { return nil }, nil
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect profile database: %w", err)
		}
		return NewDBStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported profile store %q", cfg.ProfileStore)
	}
}
