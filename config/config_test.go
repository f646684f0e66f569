package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, "ServiceHub", cfg.System.Appid)
	assert.Equal(t, 8000, cfg.Web.Port)
	assert.Equal(t, 1, cfg.Web.PageSize)
	assert.Equal(t, 24, cfg.Web.JwtExpireHours)
	assert.Equal(t, 365, cfg.System.AuditDays)
	assert.Equal(t, "0.0.0.0:8000", cfg.WebListen())
}

func TestLoadConfigFromFile(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "servicehub.yml")
	content := `
system:
  workdir: /tmp/servicehub-test
  audit_days: 30
web:
  port: 9000
  page_size: 6
database:
  type: sqlite
  name: test.db
`
	require.NoError(t, os.WriteFile(cfile, []byte(content), 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, "/tmp/servicehub-test", cfg.System.Workdir)
	assert.Equal(t, 30, cfg.System.AuditDays)
	assert.Equal(t, 9000, cfg.Web.Port)
	assert.Equal(t, 6, cfg.Web.PageSize)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "test.db", cfg.Database.Name)
	// untouched sections keep their defaults
	assert.Equal(t, "development", cfg.Logger.Mode)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVICEHUB_WEB_PORT", "8088")
	t.Setenv("SERVICEHUB_DB_TYPE", "sqlite")
	t.Setenv("SERVICEHUB_SYSTEM_DEBUG", "on")

	cfg := LoadConfig("")
	assert.Equal(t, 8088, cfg.Web.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.True(t, cfg.System.Debug)
}

func TestLoadConfigRepairsBadValues(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "servicehub.yml")
	content := `
web:
  page_size: 0
  jwt_expire_hours: -1
`
	require.NoError(t, os.WriteFile(cfile, []byte(content), 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, 1, cfg.Web.PageSize)
	assert.Equal(t, 24, cfg.Web.JwtExpireHours)
}

func TestDirHelpers(t *testing.T) {
	cfg := LoadConfig("")
	cfg.System.Workdir = t.TempDir()
	cfg.InitDirs()
	assert.DirExists(t, cfg.GetLogDir())
	assert.DirExists(t, cfg.GetDataDir())
}
