package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/gymdirection/internal/config"
	gymmcp "github.com/claude/gymdirection/internal/mcp"
	"github.com/claude/gymdirection/internal/records"
	"github.com/claude/gymdirection/internal/storage"
	"github.com/claude/gymdirection/internal/training"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "Gym Direction server URL (remote mode, e.g. http://gymdir.tail1234.ts.net)")
	configPath := flag.String("config", "", "path to config file (local mode, direct database access)")
	userID := flag.Int("user", 1, "user ID to scope local mode queries to")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("gymdir-mcp", Version)
		return
	}

	// Stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds gymmcp.DataSource
	switch {
	case *serverURL != "":
		ds = gymmcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "server", *serverURL)
	case *configPath != "":
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		syncer := records.NewSyncer(db, db, db, cfg.Records.Window, log)
		ds = training.NewService(db, syncer, cfg.Records.Window, log)
		log.Info("local mode", "user_id", *userID)
	default:
		fmt.Fprintf(os.Stderr, "Usage: gymdir-mcp -server <URL> | -config <config.yaml> [-user N]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := gymmcp.New(ds, Version, log)
	err := mcpserver.ServeStdio(s, mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return gymmcp.WithUserID(ctx, *userID)
	}))
	if err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
