// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic full content exports to a backups
// directory.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/transfer"
)

// eventRetention bounds how long event log rows are kept.
const eventRetention = 30 * 24 * time.Hour

// Scheduler owns the cron runner and the backup job.
type Scheduler struct {
	db       *sql.DB
	queries  *store.Queries
	exporter *transfer.Exporter
	cron     *cron.Cron
	logger   *slog.Logger

	backupsDir string
	keep       int
}

// New creates a scheduler writing backups to dir, retaining the newest
// keep backup sets per envelope kind.
func New(db *sql.DB, dir string, keep int, logger *slog.Logger) *Scheduler {
	queries := store.New(db)
	return &Scheduler{
		db:         db,
		queries:    queries,
		exporter:   transfer.NewExporter(queries, logger),
		cron:       cron.New(),
		logger:     logger,
		backupsDir: dir,
		keep:       keep,
	}
}

// Start registers the backup job with the given cron expression and
// begins the runner.
func (s *Scheduler) Start(cronExpr string) error {
	if err := os.MkdirAll(s.backupsDir, 0o755); err != nil {
		return fmt.Errorf("creating backups dir: %w", err)
	}

	_, err := s.cron.AddFunc(cronExpr, func() {
		if err := s.RunBackup(context.Background()); err != nil {
			s.logger.Error("scheduled backup failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("registering backup job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "cron", cronExpr, "backups_dir", s.backupsDir)
	return nil
}

// Stop gracefully stops the runner, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunBackup exports every envelope kind to timestamped files. One
// failing export does not abort the others.
func (s *Scheduler) RunBackup(ctx context.Context) error {
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	var failures []string

	env, err := s.exporter.ExportPagesMenu(ctx)
	if err != nil {
		failures = append(failures, fmt.Sprintf("pages-menu: %v", err))
	} else if err := s.writeBackup(fmt.Sprintf("pages-menu-%s.json", stamp), env); err != nil {
		failures = append(failures, fmt.Sprintf("pages-menu: %v", err))
	}

	for _, entityType := range model.AllEntityTypes {
		entEnv, err := s.exporter.ExportEntities(ctx, entityType)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", entityType, err))
			continue
		}
		if len(entEnv.Entities) == 0 {
			continue
		}
		name := fmt.Sprintf("entities-%s-%s.json", entityType, stamp)
		if err := s.writeBackup(name, entEnv); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", entityType, err))
		}
	}

	s.prune()

	if pruned, err := s.queries.PruneEvents(ctx, time.Now().UTC().Add(-eventRetention)); err != nil {
		s.logger.Warn("pruning event log", "error", err)
	} else if pruned > 0 {
		s.logger.Info("pruned event log", "rows", pruned)
	}

	if len(failures) > 0 {
		return fmt.Errorf("backup completed with failures: %s", strings.Join(failures, "; "))
	}
	s.logger.Info("backup completed", "dir", s.backupsDir)
	return nil
}

func (s *Scheduler) writeBackup(name string, envelope any) error {
	path := filepath.Join(s.backupsDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := transfer.WriteJSON(f, envelope); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// prune removes old backups beyond the retention count, grouped by
// file prefix so each envelope kind keeps its own history.
func (s *Scheduler) prune() {
	if s.keep <= 0 {
		return
	}

	entries, err := os.ReadDir(s.backupsDir)
	if err != nil {
		s.logger.Warn("reading backups dir for pruning", "error", err)
		return
	}

	byPrefix := make(map[string][]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		byPrefix[backupPrefix(name)] = append(byPrefix[backupPrefix(name)], name)
	}

	for _, names := range byPrefix {
		if len(names) <= s.keep {
			continue
		}
		// Timestamps sort lexicographically; oldest first.
		sort.Strings(names)
		for _, name := range names[:len(names)-s.keep] {
			if err := os.Remove(filepath.Join(s.backupsDir, name)); err != nil {
				s.logger.Warn("pruning backup", "file", name, "error", err)
			}
		}
	}
}

// backupPrefix strips the trailing timestamp from a backup filename.
func backupPrefix(name string) string {
	name = strings.TrimSuffix(name, ".json")
	if idx := strings.LastIndex(name, "-20"); idx > 0 {
		return name[:idx]
	}
	return name
}
