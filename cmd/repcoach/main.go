package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailscale.com/tsnet"

	"github.com/claude/repcoach/internal/announce"
	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/config"
	"github.com/claude/repcoach/internal/notify"
	"github.com/claude/repcoach/internal/plans"
	"github.com/claude/repcoach/internal/server"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/timer"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	stdin := flag.Bool("stdin", false, "read typed commands from standard input")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	log.Info("repcoach starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *migrateOnly {
		if cfg.History.Backend != "postgres" {
			log.Info("migrate-only: nothing to migrate", "backend", cfg.History.Backend)
			return
		}
		if err := storage.RunMigrations(cfg.Database.DSN(), "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied, exiting")
		return
	}

	// Load plans
	catalog, err := plans.Load(cfg.PlansFile)
	if err != nil {
		log.Error("failed to load plans", "path", cfg.PlansFile, "error", err)
		os.Exit(1)
	}
	for name, problem := range catalog.Problems() {
		log.Warn("plan cannot be started", "plan", name, "error", problem)
	}
	log.Info("plans loaded", "count", len(catalog.List()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// History store
	history, err := openHistory(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open history", "backend", cfg.History.Backend, "error", err)
		os.Exit(1)
	}
	if history != nil {
		defer history.Close()
	}

	// Completion sinks
	var sinks []notify.Sink
	if history != nil {
		sinks = append(sinks, notify.NewHistorySink(history))
	}
	if cfg.XP.URL != "" {
		sinks = append(sinks, notify.NewXPSink(cfg.XP.URL, cfg.XP.APIKey))
		log.Info("xp webhook enabled", "url", cfg.XP.URL)
	}
	notifier := notify.New(0, log, sinks...)

	// Speech
	dispatcher, err := newDispatcher(cfg, log)
	if err != nil {
		log.Error("failed to set up speech", "error", err)
		os.Exit(1)
	}

	// Coach loop
	inbox := coach.NewInbox(0)
	loop := coach.New(coach.Config{
		Tick:     cfg.Loop.TickInterval,
		Debounce: cfg.Loop.Debounce,
	}, timer.NewMonotonicClock(), inbox, catalog, dispatcher, notifier, log)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil {
			log.Error("coach loop failed", "error", err)
		}
	}()

	if *stdin {
		go func() {
			if err := coach.FeedLines(ctx, os.Stdin, inbox, log); err != nil {
				log.Warn("stdin closed", "error", err)
			}
		}()
		log.Info("reading commands from stdin")
	}

	// Create server
	srv := server.New(coach.NewClient(inbox, loop), catalog, history, cfg.Auth.APIKey, log)

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	// The loop announces the stop and emits session_stopped on its way out,
	// so speech and sinks are drained only after it returns.
	<-loopDone
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn("speech queue not drained", "error", err)
	}
	if err := notifier.Close(shutdownCtx); err != nil {
		log.Warn("notifications not drained", "error", err)
	}
	log.Info("repcoach stopped")
}

// openHistory returns the configured history store, or nil when history is
// disabled.
func openHistory(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.History, error) {
	switch cfg.History.Backend {
	case "sqlite":
		db, err := storage.OpenLocal(cfg.History.StateDir)
		if err != nil {
			return nil, err
		}
		log.Info("history opened", "backend", "sqlite", "dir", cfg.History.StateDir)
		return db, nil
	case "postgres":
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")
		db, err := storage.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		log.Info("history opened", "backend", "postgres", "host", cfg.Database.Host)
		return db, nil
	default:
		log.Info("history disabled")
		return nil, nil
	}
}

// newDispatcher wires the configured synthesizer and player, falling back to
// logging announcements when no audio output is configured.
func newDispatcher(cfg *config.Config, log *slog.Logger) (*announce.Dispatcher, error) {
	if cfg.Speech.TTSURL == "" || len(cfg.Speech.PlayerCommand) == 0 {
		log.Info("speech output not configured, announcements are logged only")
		speaker := announce.NewLogSpeaker(log)
		return announce.NewDispatcher(speaker, speaker, cfg.Loop.QueueSize, log), nil
	}

	player, err := announce.NewCommandPlayer(cfg.Speech.PlayerCommand, cfg.Speech.CueDir, log)
	if err != nil {
		return nil, err
	}
	synth := announce.NewHTTPSynthesizer(cfg.Speech.TTSURL, cfg.Speech.Voice)
	log.Info("speech enabled", "tts", cfg.Speech.TTSURL, "player", cfg.Speech.PlayerCommand[0])
	return announce.NewDispatcher(synth, player, cfg.Loop.QueueSize, log), nil
}
