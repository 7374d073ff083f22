package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/gymdirection/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "Gym Direction server URL (e.g. https://gymdir.tail1234.ts.net)")
	exportPath := flag.String("path", "", "directory containing Alpha Progression CSV exports")
	apiKey := flag.String("api-key", os.Getenv("GYMDIR_AUTH_API_KEY"), "server API key (default $GYMDIR_AUTH_API_KEY)")
	dryRun := flag.Bool("dry-run", false, "parse exports but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("gymdir-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymdir-upload -server <URL> -path <export dir> [-api-key KEY] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if !*dryRun && (*serverURL == "" || *apiKey == "") {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *exportPath)
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".gymdir-upload"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	var sender upload.Sender
	if *dryRun {
		log.Info("DRY RUN mode: exports will be parsed but not sent")
	} else {
		sender = upload.NewClient(*serverURL, *apiKey)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := upload.New(sender, state, *exportPath, *dryRun, log).Run(ctx)
	printStats(stats)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
	if stats.FilesErrored > 0 {
		os.Exit(1)
	}
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:       %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:    %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:     %d (already uploaded or empty)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:     %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Sessions sent:     %d\n", stats.SessionsSent)
	fmt.Printf("  Sessions inserted: %d\n", stats.SessionsInserted)
	fmt.Printf("  Sets sent:         %d\n", stats.SetsSent)
	fmt.Println()
}
