package config

import (
	"testing"
	"time"

	"log/slog"
)

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != defaultPort {
		t.Errorf("expected default port %q, got %q", defaultPort, cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != defaultReadTimeout {
		t.Errorf("expected default read timeout %v, got %v", defaultReadTimeout, cfg.Server.ReadTimeout)
	}
	if cfg.Logging.Level != slog.LevelInfo {
		t.Errorf("expected default log level %v, got %v", slog.LevelInfo, cfg.Logging.Level)
	}
	if cfg.Logging.Format != defaultLogFormat {
		t.Errorf("expected default log format %q, got %q", defaultLogFormat, cfg.Logging.Format)
	}
	if cfg.Database.MaxConnections != defaultMaxConnections {
		t.Errorf("expected default max connections %d, got %d", defaultMaxConnections, cfg.Database.MaxConnections)
	}
	if cfg.Activity.InProgressWindow != defaultInProgressWindow {
		t.Errorf("expected default in-progress window %v, got %v", defaultInProgressWindow, cfg.Activity.InProgressWindow)
	}
	if cfg.Activity.RecentWindow != defaultRecentWindow {
		t.Errorf("expected default recent window %v, got %v", defaultRecentWindow, cfg.Activity.RecentWindow)
	}
	if cfg.Activity.FeedCacheTTL != defaultFeedCacheTTL {
		t.Errorf("expected default cache TTL %v, got %v", defaultFeedCacheTTL, cfg.Activity.FeedCacheTTL)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	clearConfigEnv(t)

	overrides := map[string]string{
		"SERVER_PORT":                       "9090",
		"SERVER_READ_TIMEOUT_SECONDS":       "30",
		"LOG_LEVEL":                         "debug",
		"LOG_FORMAT":                        "text",
		"DATABASE_URL":                      "postgres://hearth@localhost/hearth",
		"DATABASE_MAX_CONNECTIONS":          "50",
		"ACTIVITY_IN_PROGRESS_WINDOW_HOURS": "12",
		"ACTIVITY_RECENT_WINDOW_DAYS":       "14",
		"ACTIVITY_FEED_CACHE_TTL_SECONDS":   "30",
	}
	for key, value := range overrides {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected overridden port, got %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("expected read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Logging.Level != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Logging.Level)
	}
	if cfg.Database.URL != overrides["DATABASE_URL"] {
		t.Errorf("expected database URL, got %q", cfg.Database.URL)
	}
	if cfg.Database.MaxConnections != 50 {
		t.Errorf("expected max connections 50, got %d", cfg.Database.MaxConnections)
	}
	if cfg.Activity.InProgressWindow != 12*time.Hour {
		t.Errorf("expected in-progress window 12h, got %v", cfg.Activity.InProgressWindow)
	}
	if cfg.Activity.RecentWindow != 14*24*time.Hour {
		t.Errorf("expected recent window 14d, got %v", cfg.Activity.RecentWindow)
	}
	if cfg.Activity.FeedCacheTTL != 30*time.Second {
		t.Errorf("expected cache TTL 30s, got %v", cfg.Activity.FeedCacheTTL)
	}
}

func TestLoadWithInvalidValues(t *testing.T) {
	tests := map[string]string{
		"SERVER_READ_TIMEOUT_SECONDS":       "-1",
		"SERVER_WRITE_TIMEOUT_SECONDS":      "abc",
		"LOG_LEVEL":                         "verbose",
		"LOG_FORMAT":                        "xml",
		"DATABASE_MAX_CONNECTIONS":          "0",
		"ACTIVITY_IN_PROGRESS_WINDOW_HOURS": "zero",
		"ACTIVITY_RECENT_WINDOW_DAYS":       "-7",
		"ACTIVITY_FEED_CACHE_TTL_SECONDS":   "2.5",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(key, value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error when %s=%q", key, value)
			}
		})
	}
}

func TestParseLogLevelAliases(t *testing.T) {
	tests := map[string]slog.Level{
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
	}

	for input, expected := range tests {
		level, err := parseLogLevel(input)
		if err != nil {
			t.Fatalf("parseLogLevel(%q) returned error: %v", input, err)
		}

		if level != expected {
			t.Errorf("parseLogLevel(%q) = %v, want %v", input, level, expected)
		}
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT",
		"SERVER_PORT",
		"SERVER_READ_TIMEOUT_SECONDS",
		"SERVER_WRITE_TIMEOUT_SECONDS",
		"SERVER_SHUTDOWN_TIMEOUT_SECONDS",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"DATABASE_URL",
		"DATABASE_MAX_CONNECTIONS",
		"DATABASE_MAX_IDLE_CONNECTIONS",
		"ACTIVITY_IN_PROGRESS_WINDOW_HOURS",
		"ACTIVITY_RECENT_WINDOW_DAYS",
		"ACTIVITY_FEED_CACHE_TTL_SECONDS",
	}

	for _, key := range keys {
		t.Setenv(key, "")
	}
}
