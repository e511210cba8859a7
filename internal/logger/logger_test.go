package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aeworks/ops-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
		level  string
	}{
		{name: "console", format: "console", level: "debug"},
		{name: "json", format: "json", level: "warn"},
		{name: "bad level falls back to info", format: "console", level: "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := NewLogger(&config.LoggingConfig{Format: tt.format, Level: tt.level}, &config.AppConfig{Name: "ops", Environment: "test"})
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNewLogger_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.log")
	log, err := NewLogger(&config.LoggingConfig{Format: "json", Level: "info", File: path, MaxSizeMB: 1}, &config.AppConfig{Name: "ops", Environment: "test"})
	require.NoError(t, err)

	log.Info("sync finished")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sync finished")
}
