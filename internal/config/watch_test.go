package config

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"
)

func TestRestartPending(t *testing.T) {
	base := func() *Config {
		c := defaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   []string
	}{
		{name: "no change", mutate: func(*Config) {}, want: nil},
		{
			name:   "port change",
			mutate: func(c *Config) { c.Server.HTTPPort = 9090 },
			want:   []string{"server.http_port"},
		},
		{
			name:   "interval change",
			mutate: func(c *Config) { c.Server.BroadcastInterval = time.Minute },
			want:   []string{"server.broadcast_interval"},
		},
		{
			name:   "ttl change",
			mutate: func(c *Config) { c.Server.Audits.TTL = 2 * time.Hour },
			want:   []string{"server.audits.ttl"},
		},
		{
			name:   "credentials change",
			mutate: func(c *Config) { c.Credentials.GitHubTokenEnv = "GH_TOKEN" },
			want:   []string{"credentials"},
		},
		{
			name:   "log level is live, not pending",
			mutate: func(c *Config) { c.Log.Level = "debug" },
			want:   nil,
		},
		{
			name: "multiple changes",
			mutate: func(c *Config) {
				c.Server.HTTPPort = 9090
				c.Server.Audits.TTL = 2 * time.Hour
			},
			want: []string{"server.http_port", "server.audits.ttl"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prev := base()
			next := base()
			tc.mutate(next)
			if got := restartPending(prev, next); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("restartPending: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWatch_AppliesReload(t *testing.T) {
	p := writeConfig(t, "log:\n  level: info\n")

	applied := make(chan *Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, func(c *Config) { applied <- c })
	}()

	// Give the watcher a moment to arm before rewriting the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(p, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-applied:
		if cfg.Log.Level != "debug" {
			t.Errorf("log.level after reload: got %q, want debug", cfg.Log.Level)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch: reload not applied")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch: did not return after cancel")
	}
}

func TestWatch_KeepsRunningConfigOnBadReload(t *testing.T) {
	p := writeConfig(t, "log:\n  level: info\n")

	applied := make(chan *Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, p, func(c *Config) { applied <- c }) //nolint:errcheck

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(p, []byte("log:\n  level: loud\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-applied:
		t.Fatalf("apply called for invalid config: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
}
