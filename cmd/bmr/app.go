package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmr/internal/restructure"
	"github.com/nikbrunner/bmr/internal/snapshot"
	"github.com/nikbrunner/bmr/internal/storage"
	"github.com/nikbrunner/bmr/internal/tree"
)

// app holds the services shared by every command.
type app struct {
	cfg          *storage.Config
	db           *sql.DB
	logger       *slog.Logger
	tree         *tree.SQLite
	snapshots    *snapshot.Manager
	restructurer *restructure.Restructurer
}

// opener builds the app for a command. Callers must Close it.
type opener func(cmd *cobra.Command) (*app, error)

func openApp(configPath string, logOut io.Writer) (*app, error) {
	if configPath == "" {
		var err error
		configPath, err = storage.DefaultConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
	}

	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var kv storage.KV
	switch cfg.SnapshotBackend {
	case storage.BackendJSON:
		kv = storage.NewJSONKV(cfg.SnapshotPath, storage.SnapshotNamespace)
	default:
		kv = storage.NewSQLiteKV(db, storage.SnapshotNamespace)
	}

	svc := tree.NewSQLite(db)
	snapshots := snapshot.New(svc, kv,
		snapshot.WithLogger(logger),
		snapshot.WithMaxSnapshots(cfg.MaxSnapshots),
	)
	r := restructure.New(svc, snapshots,
		restructure.WithRootParentID(cfg.RootParentID),
		restructure.WithMaxSnapshots(cfg.MaxSnapshots),
		restructure.WithLogger(logger),
	)

	logger.Debug("app opened",
		"config", configPath,
		"database", cfg.DatabasePath,
		"snapshot_backend", cfg.SnapshotBackend,
	)

	return &app{
		cfg:          cfg,
		db:           db,
		logger:       logger,
		tree:         svc,
		snapshots:    snapshots,
		restructurer: r,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
