package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterkuimelis/versusbattle/internal/config"
	"github.com/peterkuimelis/versusbattle/internal/store"
	"github.com/peterkuimelis/versusbattle/internal/web"
)

func main() {
	port := flag.String("port", "", "HTTP port to listen on (overrides config)")
	gameAddr := flag.String("game", "", "game server address (overrides config)")
	configPath := flag.String("config", "", "config file (default ~/.versusbattle/config.toml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *port, *gameAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, port, gameAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Web.Port = port
	}
	if gameAddr != "" {
		cfg.Web.GameAddr = gameAddr
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	interval, err := cfg.GetMessageInterval()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	srv := web.NewServer(web.Options{
		GameAddr:        cfg.Web.GameAddr,
		Store:           st,
		Logger:          logger,
		MessageInterval: interval,
		MessageBurst:    cfg.Web.MessageBurst,
	})

	logger.Info("web UI listening", "url", "http://localhost:"+cfg.Web.Port, "game_server", cfg.Web.GameAddr)
	return srv.ListenAndServe(ctx, ":"+cfg.Web.Port)
}
