package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/claude/liftwise/internal/adjust"
	"github.com/claude/liftwise/internal/agent"
	"github.com/claude/liftwise/internal/ai"
	"github.com/claude/liftwise/internal/config"
	"github.com/claude/liftwise/internal/feedback"
	"github.com/claude/liftwise/internal/mcp"
	"github.com/claude/liftwise/internal/memory"
	"github.com/claude/liftwise/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	remote := flag.String("remote", "", "base URL of a remote LiftWise server; empty runs against the database directly")
	apiKey := flag.String("api-key", "", "API key for remote write calls (defaults to auth.api_key from config)")
	user := flag.String("user", "", "user ID for tool calls that omit one")
	flag.Parse()

	// MCP speaks JSON-RPC on stdout; logs must go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LiftWise MCP starting", "version", Version)

	var ds mcp.DataSource

	if *remote != "" {
		key := *apiKey
		if key == "" {
			if cfg, err := config.Load(*configPath); err == nil {
				key = cfg.Auth.APIKey
			}
		}
		ds = mcp.NewHTTPClient(*remote, key)
		log.Info("remote mode", "base_url", *remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		ctx := context.Background()
		db, err := storage.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		var parser *feedback.Parser
		if cfg.AI.APIKey != "" {
			client := ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model)
			if cfg.AI.FallbackModel != "" {
				client.SetFallbackModel(cfg.AI.FallbackModel)
			}
			parser = feedback.NewParser(client, log)
		} else {
			parser = feedback.NewParser(nil, log)
		}

		validator := adjust.NewValidator(db, log)
		modifier := adjust.NewModifier(log)
		if alts, err := db.EquipmentAlternatives(ctx); err != nil {
			log.Warn("equipment alternatives load failed, using defaults", "error", err)
		} else {
			modifier.SetAlternatives(alts)
		}
		adjuster := agent.NewAdjuster(parser, validator, modifier, log)

		var state *memory.StateDB
		if cfg.Memory.Dir != "" {
			state, err = memory.Open(cfg.Memory.Dir)
			if err != nil {
				log.Warn("memory store open failed", "dir", cfg.Memory.Dir, "error", err)
				state = nil
			} else {
				defer state.Close()
				adjuster.SetRecorder(state)
			}
		}

		ds = mcp.NewLocalSource(db, adjuster, state, log)
		log.Info("local mode", "database", cfg.Database.Name)
	}

	srv := mcp.New(ds, Version, log)

	opts := []mcpserver.StdioOption{}
	if *user != "" {
		uid := *user
		opts = append(opts, mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return mcp.WithUserID(ctx, uid)
		}))
	}

	if err := mcpserver.ServeStdio(srv, opts...); err != nil {
		log.Error("stdio server failed", "error", err)
		os.Exit(1)
	}
}
