package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterkuimelis/versusbattle/internal/config"
	"github.com/peterkuimelis/versusbattle/internal/game"
	vbnet "github.com/peterkuimelis/versusbattle/internal/net"
	"github.com/peterkuimelis/versusbattle/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  versusbattle play  [--mode versus|adventure] [--health N] [--config FILE] [-v]")
	fmt.Println("  versusbattle serve [--port P] [--config FILE]")
	fmt.Println("  versusbattle join  [--addr ADDR] [--mode versus|adventure] [--health N] [--config FILE]")
	fmt.Println("  versusbattle init  [--config FILE]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Play against the computer in this terminal")
	fmt.Println("  serve   Start a game server; every client plays its own match")
	fmt.Println("  join    Connect to a game server")
	fmt.Println("  init    Write the default configuration file")
}

// setup loads the config and opens the logger and level store it describes.
func setup(path string, quiet bool) (*config.Config, *slog.Logger, store.Store, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	if quiet {
		cfg.Log.Level = "warn"
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, logger, st, nil
}

// newServer builds the game server from config.
func newServer(cfg *config.Config, logger *slog.Logger, st store.Store) (*vbnet.Server, error) {
	delay, err := cfg.GetThinkDelay()
	if err != nil {
		return nil, err
	}
	return &vbnet.Server{
		Port:   cfg.Server.Port,
		Store:  st,
		Logger: logger,
		Seed:   cfg.Game.Seed,
		RunConfig: game.RunConfig{
			ThinkDelay: delay,
			MaxTurns:   cfg.Game.MaxTurns,
		},
	}, nil
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	mode := fs.String("mode", vbnet.ModeVersus, "versus or adventure")
	health := fs.Int("health", game.DefaultVersusHealth, "starting health for versus (500-2500)")
	configPath := fs.String("config", "", "config file (default ~/.versusbattle/config.toml)")
	verbose := fs.Bool("v", false, "log match events to stderr")
	fs.Parse(args)

	cfg, logger, st, err := setup(*configPath, !*verbose)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := newServer(cfg, logger, st)
	if err != nil {
		return err
	}
	client := vbnet.NewClient(os.Stdin, os.Stdout, *mode, *health)
	return srv.PlayLocal(ctx, client)
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", "", "TCP port to listen on (overrides config)")
	configPath := fs.String("config", "", "config file (default ~/.versusbattle/config.toml)")
	fs.Parse(args)

	cfg, logger, st, err := setup(*configPath, false)
	if err != nil {
		return err
	}
	defer st.Close()

	if *port != "" {
		cfg.Server.Port = *port
	}
	srv, err := newServer(cfg, logger, st)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "", "server address to connect to (default [web] game_addr from config)")
	mode := fs.String("mode", vbnet.ModeVersus, "versus or adventure")
	health := fs.Int("health", game.DefaultVersusHealth, "starting health for versus (500-2500)")
	configPath := fs.String("config", "", "config file (default ~/.versusbattle/config.toml)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	client := vbnet.NewClient(os.Stdin, os.Stdout, *mode, *health)
	return vbnet.Connect(ctx, joinAddr(cfg, *addr), client)
}

// joinAddr picks the server to dial: the flag when set, else the config.
func joinAddr(cfg *config.Config, flagAddr string) string {
	if flagAddr != "" {
		return flagAddr
	}
	return cfg.Web.GameAddr
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default ~/.versusbattle/config.toml)")
	fs.Parse(args)

	path := *configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
