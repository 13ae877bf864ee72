// Package store provides the best-level persistence backends.
package store

import (
	"fmt"

	"github.com/peterkuimelis/versusbattle/internal/config"
	"github.com/peterkuimelis/versusbattle/internal/game"
)

// BestLevelKey is the single key the best level is persisted under.
const BestLevelKey = "best_level"

// Store is a game.LevelStore that holds resources until closed.
type Store interface {
	game.LevelStore
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg *config.Config) (Store, error) {
	if cfg.Store.Backend == config.BackendMemory {
		return memoryStore{game.NewMemoryLevelStore()}, nil
	}

	path, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	switch cfg.Store.Backend {
	case config.BackendYAML:
		return NewYAMLStore(path), nil
	case config.BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

type memoryStore struct {
	*game.MemoryLevelStore
}

func (memoryStore) Close() error { return nil }
