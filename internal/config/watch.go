package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch re-reads path whenever it changes on disk and hands each
// successfully parsed config to apply. A reload that fails to parse or
// validate is logged and the running config stays in force.
//
// Only the log level takes effect live. Changes to the serving surface
// (HTTP port, broadcast interval, audit TTL) or to the credential env
// names are logged as pending a restart. Blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, apply func(*Config)) error {
	prev, err := Load(path)
	if err != nil {
		return fmt.Errorf("config: initial read for watch: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: start watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	slog.Info("config: hot reload enabled", "path", path, "live_fields", "log.level")

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Plain saves arrive as Write; editors doing atomic saves
			// replace the file, which arrives as Create or as a
			// Remove/Rename that takes the watch with it.
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				w.Add(path) //nolint:errcheck // next event retries
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			next, err := Load(path)
			if err != nil {
				slog.Error("config: reload rejected, keeping running config",
					"path", path, "err", err)
				continue
			}

			for _, field := range restartPending(prev, next) {
				slog.Warn("config: change takes effect on restart", "field", field)
			}
			if next.Log.Level != prev.Log.Level {
				slog.Info("config: log level updated", "level", next.Log.Level)
			}

			prev = next
			apply(next)

			// The inode may have been replaced; re-arm the watch.
			w.Add(path) //nolint:errcheck

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watch error", "err", err)
		}
	}
}

// restartPending lists changed fields the running process cannot apply
// without a restart.
func restartPending(prev, next *Config) []string {
	var out []string
	if next.Server.HTTPPort != prev.Server.HTTPPort {
		out = append(out, "server.http_port")
	}
	if next.Server.BroadcastInterval != prev.Server.BroadcastInterval {
		out = append(out, "server.broadcast_interval")
	}
	if next.Server.Audits.TTL != prev.Server.Audits.TTL {
		out = append(out, "server.audits.ttl")
	}
	if next.Credentials != prev.Credentials {
		out = append(out, "credentials")
	}
	return out
}
