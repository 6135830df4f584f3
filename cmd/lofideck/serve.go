package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lofideck/lofideck/internal/config"
	"github.com/lofideck/lofideck/internal/geom"
	"github.com/lofideck/lofideck/internal/playback"
	"github.com/lofideck/lofideck/internal/playlist"
	"github.com/lofideck/lofideck/internal/prefs"
	"github.com/lofideck/lofideck/internal/server"
	"github.com/lofideck/lofideck/internal/store"
	"github.com/lofideck/lofideck/internal/wm"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/lofideck/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lofideck serve [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the lofideck daemon in the foreground.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "serve takes no arguments")
		fs.Usage()
		return 2
	}

	// A local .env overrides nothing already in the environment.
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log := newLogger(cfg.Logging.Level)

	if err := serve(cfg, log); err != nil {
		log.Error("daemon exited", "error", err)
		return 1
	}
	return 0
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func serve(cfg *config.Config, log *slog.Logger) error {
	st, err := store.Open(cfg.StateDir, log)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer st.Close()

	viewport := geom.Size{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height}
	positions := wm.NewPositionStore(store.NewGeometry(st), cfg.FlushInterval(), log)
	registry := wm.NewRegistry(positions, viewport, store.NewWindowStates(st), log)
	desk := wm.NewDesk(registry, positions, log)
	desk.SetAnimationTimings(cfg.MountDelay(), cfg.ExitDuration())
	defer desk.Teardown()

	ctrl := playback.NewController(log)
	defer ctrl.Teardown()

	playlists := playlist.NewManager(st, log)
	preferences := prefs.New(st, "local", log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bootPlayback(ctx, cfg, log, ctrl, playlists, preferences); err != nil {
		return err
	}

	srv := server.New(log, desk, ctrl, playlists, preferences)

	go positions.Run(ctx)
	go srv.Run(ctx)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("lofideck daemon listening", "addr", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}

	// Push any pending geometry before the store closes.
	positions.Flush()
	return nil
}

// bootPlayback restores the active playlist, falling back to the built-in
// one, and applies saved volume and mute.
func bootPlayback(ctx context.Context, cfg *config.Config, log *slog.Logger, ctrl *playback.Controller, playlists *playlist.Manager, preferences *prefs.Facade) error {
	if cfg.PlaylistFile != "" {
		if p, err := playlists.ImportFile(ctx, cfg.PlaylistFile); err != nil {
			log.Warn("playlist import failed", "path", cfg.PlaylistFile, "error", err)
		} else {
			log.Info("imported playlist", "id", p.ID, "title", p.Title)
		}
	}

	resolved, err := preferences.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolve preferences: %w", err)
	}

	activeID := resolved.ActivePlaylist
	if activeID == "" {
		activeID = playlist.BuiltinID
	}
	p, err := playlists.Get(ctx, activeID)
	if err != nil {
		log.Warn("active playlist missing, using built-in", "id", activeID, "error", err)
		p = playlist.Builtin()
	}
	if err := ctrl.LoadPlaylist(p.Catalog()); err != nil {
		return fmt.Errorf("load playlist %s: %w", p.ID, err)
	}

	ctrl.SetVolume(resolved.Volume)
	if resolved.Muted {
		ctrl.ToggleMute()
	}
	log.Info("playback restored", "playlist", p.ID, "tracks", len(p.Tracks), "volume", resolved.Volume)
	return nil
}
