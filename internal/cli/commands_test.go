package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgetl/internal/config"
	"github.com/vvka-141/pgetl/internal/logging"
	"github.com/vvka-141/pgetl/internal/ui"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

func resetLoadFlags() {
	loadFlags = loadFlagValues{}
	loadFlags.conn.timeout = pgetl.DefaultTimeout
}

func resetProvisionFlags() {
	provisionFlags = provisionFlagValues{}
	provisionFlags.conn.timeout = pgetl.DefaultTimeout
}

func TestLoadCmd_ArgsValidation(t *testing.T) {
	err := loadCmd.Args(loadCmd, []string{})
	if err == nil {
		t.Fatal("Expected error for missing args")
	}
	exitCode := pgetl.ExitCodeForError(err)
	if exitCode != pgetl.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d for: %v", pgetl.ExitUsageError, exitCode, err)
	}
}

func TestLoadCmd_ArgsValidation_TooMany(t *testing.T) {
	if err := loadCmd.Args(loadCmd, []string{"a", "b"}); err == nil {
		t.Fatal("Expected error for too many args")
	}
}

func TestBuildLoadConfig_Defaults(t *testing.T) {
	clearConnectionEnv(t)
	resetLoadFlags()
	dir := t.TempDir()
	loadFlags.conn.connection = "postgresql://localhost/postgres"
	loadFlags.conn.database = "sparkifydb"

	cfg, projectCfg, err := buildLoadConfig(loadCmd, dir, false)
	require.NoError(t, err)
	assert.Nil(t, projectCfg)
	assert.Equal(t, dir, cfg.SourcePath)
	assert.Equal(t, "sparkifydb", cfg.Connection.Database)
	assert.Equal(t, pgetl.DefaultExtension, cfg.Extension)
	assert.Equal(t, pgetl.DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.CatalogDir)
	assert.Empty(t, cfg.EventsDir)
	assert.True(t, cfg.RunsPass(pgetl.PassCatalog))
	assert.True(t, cfg.RunsPass(pgetl.PassEvents))
}

func TestBuildLoadConfig_ProjectConfigAndFlags(t *testing.T) {
	clearConnectionEnv(t)
	resetLoadFlags()
	dir := t.TempDir()
	yaml := `connection:
  host: yamlhost
  database: music
source:
  catalog_dir: songs
  events_dir: logs
  extension: .ndjson
timeout: 10m
metrics_file: /tmp/pgetl.prom
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(yaml), 0o644))
	loadFlags.eventsDir = "events"
	loadFlags.only = pgetl.PassEvents

	cfg, projectCfg, err := buildLoadConfig(loadCmd, dir, false)
	require.NoError(t, err)
	require.NotNil(t, projectCfg)

	assert.Equal(t, "yamlhost", cfg.Connection.Host)
	assert.Equal(t, "music", cfg.Connection.Database)
	assert.Equal(t, "songs", cfg.CatalogDir)
	assert.Equal(t, "events", cfg.EventsDir)
	assert.Equal(t, ".ndjson", cfg.Extension)
	assert.Equal(t, "/tmp/pgetl.prom", cfg.MetricsFile)
	assert.Equal(t, "10m0s", cfg.Timeout.String())
	assert.False(t, cfg.RunsPass(pgetl.PassCatalog))
}

func TestBuildLoadConfig_InvalidOnly(t *testing.T) {
	clearConnectionEnv(t)
	resetLoadFlags()
	loadFlags.conn.connection = "postgresql://localhost/postgres"
	loadFlags.only = "users"

	_, _, err := buildLoadConfig(loadCmd, t.TempDir(), false)
	assert.ErrorIs(t, err, pgetl.ErrInvalidConfig)
	assert.Equal(t, pgetl.ExitConfigError, pgetl.ExitCodeForError(err))
}

func TestBuildLoadConfig_InvalidExtension(t *testing.T) {
	clearConnectionEnv(t)
	resetLoadFlags()
	loadFlags.conn.connection = "postgresql://localhost/postgres"
	loadFlags.extension = "json"

	_, _, err := buildLoadConfig(loadCmd, t.TempDir(), false)
	assert.ErrorIs(t, err, pgetl.ErrInvalidConfig)
}

func TestRunLoad_MissingSourceRoot(t *testing.T) {
	clearConnectionEnv(t)
	resetLoadFlags()
	loadFlags.conn.connection = "postgresql://localhost:1/postgres?connect_timeout=1"
	loadFlags.conn.database = "sparkifydb"

	err := runLoad(loadCmd, []string{filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Fatal("Expected error for unreachable database or missing source")
	}
}

func TestBuildProvisionConfig_ForceWithoutReset(t *testing.T) {
	clearConnectionEnv(t)
	resetProvisionFlags()
	provisionFlags.conn.connection = "postgresql://localhost/postgres"
	provisionFlags.conn.database = "sparkifydb"
	provisionFlags.force = true

	_, err := buildProvisionConfig(provisionCmd, "", false)
	if err == nil {
		t.Fatal("Expected error for force without reset")
	}
	if !strings.Contains(err.Error(), "force") || !strings.Contains(err.Error(), "reset") {
		t.Errorf("Expected error about force/reset, got: %v", err)
	}
}

func TestBuildProvisionConfig_MaintenanceDB(t *testing.T) {
	clearConnectionEnv(t)
	resetProvisionFlags()
	provisionFlags.conn.connection = "postgresql://localhost/sparkifydb"
	provisionFlags.reset = true

	cfg, err := buildProvisionConfig(provisionCmd, "", false)
	require.NoError(t, err)
	assert.Equal(t, "sparkifydb", cfg.Connection.Database)
	assert.Equal(t, pgetl.DefaultManagementDB, cfg.MaintenanceDatabase)
	assert.True(t, cfg.Reset)
}

func TestSelectApprover(t *testing.T) {
	approver, err := selectApprover(true, true, false, false)
	require.NoError(t, err)
	assert.IsType(t, &ui.ForcedApprover{}, approver)

	approver, err = selectApprover(true, false, true, false)
	require.NoError(t, err)
	assert.IsType(t, &ui.InteractiveApprover{}, approver)

	approver, err = selectApprover(false, false, false, false)
	require.NoError(t, err)
	assert.IsType(t, &ui.InteractiveApprover{}, approver)

	_, err = selectApprover(true, false, false, false)
	assert.ErrorIs(t, err, pgetl.ErrInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	logger, flush, err := newLogger("text", false)
	require.NoError(t, err)
	assert.IsType(t, &logging.ConsoleLogger{}, logger)
	flush()

	logger, flush, err = newLogger("json", true)
	require.NoError(t, err)
	assert.IsType(t, &logging.ZapLogger{}, logger)
	flush()

	_, _, err = newLogger("xml", false)
	assert.ErrorIs(t, err, pgetl.ErrInvalidConfig)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"load", "provision", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
