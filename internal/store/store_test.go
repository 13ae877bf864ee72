package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/versusbattle/internal/config"
	"github.com/peterkuimelis/versusbattle/internal/game"
)

// backends opens every file-backed store in a fresh temp dir.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := OpenSQLite(filepath.Join(dir, "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"yaml":   NewYAMLStore(filepath.Join(dir, "nested", "progress.yaml")),
		"sqlite": sqlite,
	}
}

func TestStoresStartEmpty(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			level, err := s.LoadBestLevel(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, level)
		})
	}
}

func TestStoresSaveAndOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveBestLevel(ctx, 3))
			require.NoError(t, s.SaveBestLevel(ctx, 8))

			level, err := s.LoadBestLevel(ctx)
			require.NoError(t, err)
			assert.Equal(t, 8, level)
		})
	}
}

func TestStoresConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 1; i <= 10; i++ {
				wg.Add(1)
				go func(level int) {
					defer wg.Done()
					assert.NoError(t, s.SaveBestLevel(ctx, level))
				}(i)
			}
			wg.Wait()

			level, err := s.LoadBestLevel(ctx)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, level, 1)
			assert.LessOrEqual(t, level, 10)
		})
	}
}

func TestYAMLStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.yaml")

	require.NoError(t, NewYAMLStore(path).SaveBestLevel(ctx, 4))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), BestLevelKey+": 4")

	level, err := NewYAMLStore(path).LoadBestLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, level)
}

func TestYAMLStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.yaml")
	require.NoError(t, os.WriteFile(path, []byte("best_level: [oops"), 0o644))

	_, err := NewYAMLStore(path).LoadBestLevel(context.Background())
	assert.Error(t, err)
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveBestLevel(ctx, 6))
	require.NoError(t, s.Close())

	// Reopening runs migrations again without changes.
	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	level, err := s.LoadBestLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, level)

	mgr, err := NewMigrationManager(path)
	require.NoError(t, err)
	defer mgr.Close()
	version, dirty, err := mgr.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}

func TestSQLiteStorePragmas(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	var journal string
	require.NoError(t, s.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journal))
	assert.Equal(t, "wal", journal)

	var timeout int64
	require.NoError(t, s.db.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, busyTimeout.Milliseconds(), timeout)

	var foreignKeys int
	require.NoError(t, s.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		config.BackendMemory: "",
		config.BackendYAML:   filepath.Join(dir, "p.yaml"),
		config.BackendSQLite: filepath.Join(dir, "p.db"),
	}
	for backend, path := range cases {
		t.Run(backend, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Store.Backend = backend
			cfg.Store.Path = path

			s, err := Open(cfg)
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.SaveBestLevel(context.Background(), 2))
			level, err := s.LoadBestLevel(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 2, level)
		})
	}

	cfg := config.DefaultConfig()
	cfg.Store.Backend = "redis"
	cfg.Store.Path = filepath.Join(dir, "x")
	_, err := Open(cfg)
	assert.Error(t, err)
}

func TestStoreBacksAdventureProgress(t *testing.T) {
	ctx := context.Background()
	s := NewYAMLStore(filepath.Join(t.TempDir(), "progress.yaml"))

	m := game.NewMatch(game.MatchConfig{Store: s, Seed: 1})
	require.NoError(t, m.LoadPersistedBestLevel(ctx))
	assert.Equal(t, 1, m.State.BestLevel)

	p := game.NewProgression(s)
	_, err := p.Load(ctx)
	require.NoError(t, err)
	improved, err := p.Record(ctx, 3)
	require.NoError(t, err)
	assert.True(t, improved)

	m = game.NewMatch(game.MatchConfig{Store: s, Seed: 1})
	require.NoError(t, m.LoadPersistedBestLevel(ctx))
	assert.Equal(t, 3, m.State.BestLevel)
}
