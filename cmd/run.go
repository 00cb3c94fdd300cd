package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/asamadder/kodama/internal/api"
	"github.com/asamadder/kodama/internal/app"
	"github.com/asamadder/kodama/internal/store"
	"github.com/asamadder/kodama/internal/syncer"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	// The TUI owns the terminal, so diagnostics go to a log file when
	// KODAMA_DEBUG is set and nowhere otherwise.
	logger, closeLog, err := tuiLogger(dbPath)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	client, err := newClient(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Starting with local data only; sync and submissions will be rejected.")
		// An unauthenticated client keeps the TUI usable; every remote
		// call surfaces as ErrUnauthorized.
		client = api.NewClient(api.StaticToken(""))
	}

	return app.Run(app.Options{
		Store:           st,
		Client:          client,
		Syncer:          syncer.New(client, st, syncer.WithLogger(logger)),
		LessonBatchSize: cfg.Lessons.BatchSize,
	})
}

func tuiLogger(dbPath string) (*slog.Logger, func(), error) {
	if os.Getenv("KODAMA_DEBUG") == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	logPath := filepath.Join(filepath.Dir(dbPath), "kodama.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})),
		func() { _ = f.Close() }, nil
}
