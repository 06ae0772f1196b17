package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dbsmedya/cdosync/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"", "info"},
		{"warn", "warn"},
		{"error", "error"},
		{"unknown", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level := parseLevel(tt.input)
			if level.String() != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, level.String(), tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "cdosync.log")

	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"json stdout", &config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, false},
		{"text stderr", &config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}, false},
		{"file output", &config.LoggingConfig{Level: "warn", Format: "json", Output: logPath}, false},
		{"unwritable file", &config.LoggingConfig{Output: "/nonexistent/dir/cdosync.log"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			logger.Warn("hello")
			_ = logger.Sync()
		})
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("expected json entry in log file, got %s", data)
	}
}

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromCore(core)

	log.WithIntegration("tickets").
		WithAttempt(2).
		WithBatch(3).
		WithSync("/syncs/7").
		WithFields(map[string]interface{}{"rows": 10}).
		Info("batch submitted")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["integration"] != "tickets" {
		t.Errorf("expected integration field, got %v", fields["integration"])
	}
	if fields["attempt"] != int64(2) {
		t.Errorf("expected attempt 2, got %v", fields["attempt"])
	}
	if fields["batch"] != int64(3) {
		t.Errorf("expected batch 3, got %v", fields["batch"])
	}
	if fields["sync"] != "/syncs/7" {
		t.Errorf("expected sync field, got %v", fields["sync"])
	}
	if fields["rows"] != int64(10) {
		t.Errorf("expected rows 10, got %v", fields["rows"])
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.WithIntegration("x").Error("discarded")
	if err := log.Sync(); err != nil {
		t.Errorf("unexpected sync error: %v", err)
	}
}
