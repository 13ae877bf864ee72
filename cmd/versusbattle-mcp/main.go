package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/versusbattle/internal/config"
	vbmcp "github.com/peterkuimelis/versusbattle/internal/mcp"
	"github.com/peterkuimelis/versusbattle/internal/store"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.versusbattle/config.toml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol.
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	tools := vbmcp.NewTools(vbmcp.Options{
		Store:    st,
		Logger:   logger,
		Seed:     cfg.Game.Seed,
		MaxTurns: cfg.Game.MaxTurns,
	})
	defer tools.Close()

	s := server.NewMCPServer("versusbattle", "1.0.0")
	vbmcp.RegisterTools(s, tools)
	return server.ServeStdio(s)
}
