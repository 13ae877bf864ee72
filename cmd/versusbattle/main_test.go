package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/versusbattle/internal/config"
)

func TestJoinAddrFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[web]\ngame_addr = \"games.example:9000\"\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "games.example:9000", joinAddr(cfg, ""))
	assert.Equal(t, "localhost:1234", joinAddr(cfg, "localhost:1234"))
	assert.Equal(t, "localhost:7777", joinAddr(config.DefaultConfig(), ""))
}
