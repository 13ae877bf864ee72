package game

import (
	"context"
	"fmt"
	"sync"
)

// EnemyHealthForLevel is the enemy's max health at an adventure level.
func EnemyHealthForLevel(level int) int {
	return AdventureBaseHealth + (level-1)*AdventureHealthStep
}

// LevelStore persists the best adventure level reached.
type LevelStore interface {
	// LoadBestLevel returns the stored level, or 0 when nothing is stored yet.
	LoadBestLevel(ctx context.Context) (int, error)
	SaveBestLevel(ctx context.Context, level int) error
}

// MemoryLevelStore is a LevelStore that forgets everything on exit.
type MemoryLevelStore struct {
	mu    sync.Mutex
	level int
}

func NewMemoryLevelStore() *MemoryLevelStore {
	return &MemoryLevelStore{}
}

func (s *MemoryLevelStore) LoadBestLevel(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level, nil
}

func (s *MemoryLevelStore) SaveBestLevel(ctx context.Context, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
	return nil
}

// Progression tracks the best level on top of a LevelStore. Its in-memory
// value stays authoritative when the store fails.
type Progression struct {
	store LevelStore
	best  int
}

func NewProgression(store LevelStore) *Progression {
	return &Progression{store: store, best: 1}
}

// Best returns the best level known so far.
func (p *Progression) Best() int {
	return p.best
}

// Load reads the best level from the store. Nothing stored counts as level 1.
func (p *Progression) Load(ctx context.Context) (int, error) {
	level, err := p.store.LoadBestLevel(ctx)
	if err != nil {
		return p.best, err
	}
	if level < 1 {
		level = 1
	}
	p.best = level
	return p.best, nil
}

// Record saves level when it beats the best so far and reports whether it did.
func (p *Progression) Record(ctx context.Context, level int) (bool, error) {
	if level <= p.best {
		return false, nil
	}
	p.best = level
	if err := p.store.SaveBestLevel(ctx, level); err != nil {
		return true, fmt.Errorf("save best level %d: %w", level, err)
	}
	return true, nil
}
