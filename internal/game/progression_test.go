package game

import (
	"context"
	"errors"
	"testing"
)

func TestEnemyHealthForLevel(t *testing.T) {
	for level, want := range map[int]int{1: 500, 2: 700, 3: 900, 10: 2300} {
		if got := EnemyHealthForLevel(level); got != want {
			t.Errorf("level %d: %d, want %d", level, got, want)
		}
	}
}

func TestProgressionLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLevelStore()
	p := NewProgression(store)

	level, err := p.Load(ctx)
	if err != nil || level != 1 {
		t.Errorf("empty store: level=%d err=%v, want 1", level, err)
	}

	_ = store.SaveBestLevel(ctx, 7)
	if level, _ := p.Load(ctx); level != 7 || p.Best() != 7 {
		t.Errorf("level = %d best = %d, want 7", level, p.Best())
	}
}

func TestProgressionRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLevelStore()
	p := NewProgression(store)

	if improved, err := p.Record(ctx, 1); improved || err != nil {
		t.Errorf("level 1 should not beat the default best")
	}
	if improved, err := p.Record(ctx, 3); !improved || err != nil {
		t.Fatalf("record 3: improved=%v err=%v", improved, err)
	}
	if improved, _ := p.Record(ctx, 2); improved {
		t.Error("lower level should not be recorded")
	}
	if stored, _ := store.LoadBestLevel(ctx); stored != 3 {
		t.Errorf("stored = %d, want 3", stored)
	}
}

func TestProgressionStoreFailure(t *testing.T) {
	p := NewProgression(failingStore{})
	if level, err := p.Load(context.Background()); !errors.Is(err, errStoreDown) || level != 1 {
		t.Errorf("load: level=%d err=%v", level, err)
	}
	improved, err := p.Record(context.Background(), 4)
	if !improved || !errors.Is(err, errStoreDown) {
		t.Errorf("record: improved=%v err=%v", improved, err)
	}
	if p.Best() != 4 {
		t.Errorf("best = %d, want 4 despite the failing store", p.Best())
	}
}
