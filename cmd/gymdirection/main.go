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

	"github.com/claude/gymdirection/internal/config"
	"github.com/claude/gymdirection/internal/ingest/alpha"
	gymmcp "github.com/claude/gymdirection/internal/mcp"
	"github.com/claude/gymdirection/internal/records"
	"github.com/claude/gymdirection/internal/server"
	"github.com/claude/gymdirection/internal/storage"
	"github.com/claude/gymdirection/internal/storage/memory"
	"github.com/claude/gymdirection/internal/training"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// backend is everything the server persists. *storage.DB and *memory.Store
// both satisfy it.
type backend interface {
	training.Store
	records.SessionSource
	records.PRStore
	records.ProfileStore
	server.Ledger
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	inMemory := flag.Bool("memory", false, "keep all data in memory (development, no database or config file)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Gym Direction starting", "version", Version)

	var (
		cfg   *config.Config
		store backend
		err   error
	)

	if *inMemory {
		cfg = config.Dev()
		store = memory.New()
		log.Warn("in-memory mode: data is lost on exit")
	} else {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		if err := storage.RunMigrations(cfg.Database); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(context.Background(), cfg.Database)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")
		store = db
	}

	syncer := records.NewSyncer(store, store, store, cfg.Records.Window, log)
	svc := training.NewService(store, syncer, cfg.Records.Window, log)
	alphaProvider := alpha.NewProvider(svc, log)

	srv := server.New(svc, alphaProvider, store, cfg.Auth.APIKey, log)

	// MCP over streamable HTTP. Tool contexts are rebuilt from the request,
	// so the user resolved by the server is copied across explicitly.
	mcpSrv := gymmcp.New(svc, Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return gymmcp.WithUserID(ctx, gymmcp.UserIDFromContext(r.Context()))
		}),
	))

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
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

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

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
