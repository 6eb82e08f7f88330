package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/zombograph/pkg/config"
	"github.com/platinummonkey/zombograph/pkg/observability"
)

// reloadDelay coalesces the burst of events an editor produces on save
const reloadDelay = 500 * time.Millisecond

// Watch runs the configured rebuild triggers until ctx is done: the cron
// schedule re-reads the catalogs, and a change to the config file reloads
// the settings before rebuilding.
func (s *Server) Watch(ctx context.Context) error {
	cfg := s.Config()

	if cfg.Watch.Schedule != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.Watch.Schedule, func() {
			s.triggerRebuild(ctx, "schedule")
		})
		if err != nil {
			return fmt.Errorf("failed to schedule rebuilds: %w", err)
		}
		c.Start()
		s.log.Infof("Rebuild schedule: %s", cfg.Watch.Schedule)
		defer func() { <-c.Stop().Done() }()
	}

	if cfg.Watch.ReloadOnChange && cfg.File != "" {
		return s.watchFile(ctx, cfg.File)
	}

	<-ctx.Done()
	return nil
}

func (s *Server) triggerRebuild(ctx context.Context, trigger string) {
	defer observability.RecoverPanic(s.log, "rebuild from "+trigger)

	if err := s.Refresh(ctx); err != nil {
		s.log.WithError(err).WithField("trigger", trigger).Error("Rebuild failed, keeping previous schema")
	}
}

// watchFile watches the directory holding path, since editors often
// replace the file instead of writing it in place
func (s *Server) watchFile(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	s.log.Infof("Watching %s for changes", path)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.log.WithField("op", event.Op.String()).Debug("Config file changed")
			pending = time.After(reloadDelay)
		case <-pending:
			pending = nil
			s.reload(ctx, path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.WithError(err).Warn("Watcher error")
		}
	}
}

// reload re-reads the config file and rebuilds with it. An invalid file is
// logged and ignored.
func (s *Server) reload(ctx context.Context, path string) {
	next, err := config.Load(path)
	if err != nil {
		s.log.WithError(err).Error("Ignoring invalid config change")
		return
	}

	current := s.Config()
	if next.Database != current.Database || next.Server != current.Server {
		s.log.Warn("Database and server settings only take effect after a restart")
		next.Database = current.Database
		next.Server = current.Server
	}

	s.setConfig(next)
	s.triggerRebuild(ctx, "config change")
}
