package upload

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/gymdirection/internal/ingest/alpha"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SessionsSent     int
	SessionsInserted int
	SetsSent         int
}

// Sender posts one CSV export. *Client satisfies it.
type Sender interface {
	SendCSV(ctx context.Context, data []byte) (*ImportResult, error)
}

// Uploader walks a directory of Alpha Progression CSV exports and POSTs
// the ones not yet uploaded to the Gym Direction server.
type Uploader struct {
	sender Sender
	state  *StateDB
	root   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. sender may be nil in dry-run mode.
func New(sender Sender, state *StateDB, root string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		sender: sender,
		state:  state,
		root:   root,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload pipeline. A single bad file is counted and
// skipped; only a failure to list the directory aborts the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := FindExports(u.root)
	if err != nil {
		return &u.stats, fmt.Errorf("listing exports: %w", err)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.processFile(ctx, f); err != nil {
			u.log.Warn("upload failed", "file", f, "error", err)
			u.stats.FilesErrored++
		}
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	relPath, _ := filepath.Rel(u.root, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	uploaded, err := u.state.IsUploaded(hash)
	if err != nil {
		return fmt.Errorf("checking state: %w", err)
	}
	if uploaded {
		u.log.Debug("already uploaded", "file", relPath)
		u.stats.FilesSkipped++
		return nil
	}

	// Parse locally so malformed exports never reach the server.
	parsed, err := alpha.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	sessions := alpha.ToSessions(parsed)
	if len(sessions) == 0 {
		u.log.Info("no sessions in export", "file", relPath)
		u.stats.FilesSkipped++
		return nil
	}

	if u.dryRun {
		u.log.Info("dry run", "file", relPath, "sessions", len(sessions), "sets", alpha.CountSets(sessions))
		u.stats.SessionsSent += len(sessions)
		u.stats.SetsSent += alpha.CountSets(sessions)
		return nil
	}

	result, err := u.sender.SendCSV(ctx, data)
	if err != nil {
		return err
	}
	u.stats.FilesUploaded++
	u.stats.SessionsSent += result.SessionsReceived
	u.stats.SessionsInserted += result.SessionsInserted
	u.stats.SetsSent += result.SetsReceived
	u.log.Info("uploaded", "file", relPath, "sessions", result.SessionsInserted, "sets", result.SetsReceived)

	return u.state.MarkUploaded(relPath, int64(len(data)), hash, result.SessionsInserted)
}

// FindExports returns every .csv file under root, sorted by path.
func FindExports(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
