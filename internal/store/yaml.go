package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// progressFile is the on-disk layout of the YAML store.
type progressFile struct {
	BestLevel int `yaml:"best_level"`
}

// YAMLStore keeps the best level in a small YAML file.
type YAMLStore struct {
	path string
	mu   sync.Mutex
}

func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{path: path}
}

// LoadBestLevel returns 0 when the file does not exist yet.
func (s *YAMLStore) LoadBestLevel(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pf, err := s.read()
	if err != nil {
		return 0, err
	}
	return pf.BestLevel, nil
}

func (s *YAMLStore) SaveBestLevel(ctx context.Context, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pf, err := s.read()
	if err != nil {
		return err
	}
	pf.BestLevel = level

	data, err := yaml.Marshal(&pf)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create progress directory: %w", err)
	}

	// Write then rename, so readers see the old or the new file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write progress file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}

func (s *YAMLStore) Close() error { return nil }

// read must be called with mu held.
func (s *YAMLStore) read() (progressFile, error) {
	var pf progressFile
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return pf, nil
	}
	if err != nil {
		return pf, fmt.Errorf("read progress file: %w", err)
	}
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return pf, fmt.Errorf("parse progress YAML: %w", err)
	}
	return pf, nil
}
