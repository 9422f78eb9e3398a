package main

import (
	"context"
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

	"github.com/claude/liftwise/internal/adjust"
	"github.com/claude/liftwise/internal/agent"
	"github.com/claude/liftwise/internal/ai"
	"github.com/claude/liftwise/internal/config"
	"github.com/claude/liftwise/internal/feedback"
	"github.com/claude/liftwise/internal/memory"
	"github.com/claude/liftwise/internal/server"
	"github.com/claude/liftwise/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LiftWise starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Completion client. Without an API key, feedback parsing runs on the
	// heuristic fallback and plans come from the built-in templates.
	var parser *feedback.Parser
	var generator *agent.Generator
	if cfg.AI.APIKey != "" {
		client := ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model)
		if cfg.AI.FallbackModel != "" {
			client.SetFallbackModel(cfg.AI.FallbackModel)
		}
		parser = feedback.NewParser(client, log)
		generator = agent.NewGenerator(client, log)
		log.Info("completion client ready", "model", cfg.AI.Model)
	} else {
		parser = feedback.NewParser(nil, log)
		generator = agent.NewGenerator(nil, log)
		log.Info("no AI API key: running rule-based only")
	}

	// Adjustment pipeline
	validator := adjust.NewValidator(db, log)
	modifier := adjust.NewModifier(log)
	if alts, err := db.EquipmentAlternatives(ctx); err != nil {
		log.Warn("equipment alternatives load failed, using defaults", "error", err)
	} else {
		modifier.SetAlternatives(alts)
	}
	adjuster := agent.NewAdjuster(parser, validator, modifier, log)

	// Per-user adjustment memory
	if cfg.Memory.Dir != "" {
		state, err := memory.Open(cfg.Memory.Dir)
		if err != nil {
			log.Warn("memory store open failed", "dir", cfg.Memory.Dir, "error", err)
		} else {
			defer state.Close()
			adjuster.SetRecorder(state)
			log.Info("memory store ready", "dir", cfg.Memory.Dir)
		}
	}

	// Create server
	srv := server.New(db, adjuster, generator, cfg.Auth.APIKey, log)

	// Start server — tsnet or plain HTTP
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
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
