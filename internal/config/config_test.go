package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `connection:
  host: myhost
  port: 5433
  username: myuser
  database: sparkifydb
  sslmode: require
  auth_method: aws
  aws_region: eu-west-1

source:
  catalog_dir: songs
  events_dir: logs
  extension: .jsonl

timeout: 10m
metrics_file: /var/lib/node_exporter/pgetl.prom
log_format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "myhost", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "myuser", cfg.Connection.Username)
	assert.Equal(t, "sparkifydb", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "aws", cfg.Connection.AuthMethod)
	assert.Equal(t, "eu-west-1", cfg.Connection.AWSRegion)
	assert.Equal(t, "songs", cfg.Source.CatalogDir)
	assert.Equal(t, "logs", cfg.Source.EventsDir)
	assert.Equal(t, ".jsonl", cfg.Source.Extension)
	assert.Equal(t, "/var/lib/node_exporter/pgetl.prom", cfg.MetricsFile)
	assert.Equal(t, "json", cfg.LogFormat)

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, timeout)
}

func TestLoad_MinimalYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("connection:\n  database: db\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.Connection.Database)
	assert.Empty(t, cfg.Source.CatalogDir)

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, timeout)
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("connection: [unclosed"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfigNotFound))
}

func TestTimeoutDuration_Invalid(t *testing.T) {
	cfg := &ProjectConfig{Timeout: "soon"}
	_, err := cfg.TimeoutDuration()
	assert.Error(t, err)

	var nilCfg *ProjectConfig
	d, err := nilCfg.TimeoutDuration()
	assert.NoError(t, err)
	assert.Zero(t, d)
}
