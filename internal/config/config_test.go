package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PEROBATCH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 4, cfg.Ingest.Parallelism)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data/uploads", cfg.Paths.UploadsDir)
	assert.Equal(t, "data/archive", cfg.Paths.ArchiveDir)
}

func TestLoadFromYAMLFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "perobatch.yaml")
	yamlContent := `
server:
  port: 9090
  max_upload_bytes: 1048576
ingest:
  parallelism: 2
logging:
  level: debug
paths:
  archive_dir: /tmp/archive
`
	require.NoError(t, os.WriteFile(file, []byte(yamlContent), 0644))
	t.Setenv("PEROBATCH_CONFIG", file)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(1048576), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 2, cfg.Ingest.Parallelism)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/archive", cfg.Paths.ArchiveDir)

	// Settings the file omits keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "perobatch.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9090\n"), 0644))
	t.Setenv("PEROBATCH_CONFIG", file)
	t.Setenv("PEROBATCH_SERVER_PORT", "7070")
	t.Setenv("PEROBATCH_LOGGING_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "bad log level",
			env:     map[string]string{"PEROBATCH_LOGGING_LEVEL": "verbose"},
			wantErr: "invalid log level",
		},
		{
			name:    "bad port",
			env:     map[string]string{"PEROBATCH_SERVER_PORT": "0"},
			wantErr: "invalid server port",
		},
		{
			name:    "bad parallelism",
			env:     map[string]string{"PEROBATCH_INGEST_PARALLELISM": "0"},
			wantErr: "parallelism must be positive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PEROBATCH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.UploadsDir = filepath.Join(base, "uploads")
	cfg.Paths.ArchiveDir = filepath.Join(base, "archive")
	cfg.Paths.LogsDir = filepath.Join(base, "logs")

	require.NoError(t, cfg.EnsureDirectories())
	for _, dir := range []string{cfg.Paths.UploadsDir, cfg.Paths.ArchiveDir, cfg.Paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
