package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/studytrack/internal/config"
)

// isolate runs the test in an empty directory with an empty HOME so no
// stray .env or studytrack.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	for _, k := range []string{"STUDYTRACK_DATABASE_PATH", "STUDYTRACK_CATALOG_PATH", "STUDYTRACK_LOG_LEVEL", "STUDYTRACK_EPHEMERAL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, &config.Config{
		DatabasePath: "studytrack.db",
		LogLevel:     "info",
	}, cfg)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYTRACK_DATABASE_PATH", "/tmp/progress.db")
	t.Setenv("STUDYTRACK_LOG_LEVEL", "debug")
	t.Setenv("STUDYTRACK_EPHEMERAL", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/progress.db", cfg.DatabasePath)
	assert.True(t, cfg.Ephemeral)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_FileAndDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "studytrack.yaml"),
		[]byte("database_path: from-file.db\ncatalog_path: course.yaml\nlog_level: warn\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("STUDYTRACK_LOG_LEVEL=error\n"), 0o644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.DatabasePath)
	assert.Equal(t, "course.yaml", cfg.CatalogPath)
	assert.Equal(t, "error", cfg.LogLevel, ".env overrides the file")
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database_path: custom.db\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.db", cfg.DatabasePath)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYTRACK_LOG_LEVEL", "verbose")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
}
