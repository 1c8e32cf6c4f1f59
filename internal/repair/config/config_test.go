package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	require.NotEmpty(t, cfg.DatabaseDSN)
	require.Equal(t, "backups", cfg.BackupDir)
	require.Equal(t, "mirufix_audit.jsonl", cfg.AuditLogPath)
	require.Empty(t, cfg.S3Bucket, "uploads are disabled by default")
}

func TestLoad_JsonOverlaysOnlyNamedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"database_dsn": "postgres://repair:x@db:5432/mirubato",
		"s3_bucket": "mirubato-backups"
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://repair:x@db:5432/mirubato", cfg.DatabaseDSN)
	require.Equal(t, "mirubato-backups", cfg.S3Bucket)
	// Fields the file does not name keep their defaults.
	require.Equal(t, "backups", cfg.BackupDir)
	require.Equal(t, "us-east-1", cfg.S3Region)
}

func TestLoad_EnvWinsOverJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"backup_dir": "/from/json"}`), 0o600))
	t.Setenv("MIRUFIX_BACKUP_DIR", "/from/env")
	t.Setenv("MIRUFIX_S3_ACCESS_KEY", "AKIA-TEST")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/from/env", cfg.BackupDir)
	require.Equal(t, "AKIA-TEST", cfg.S3AccessKey)
}

func TestLoad_EmptyPathSkipsJson(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "backups", cfg.BackupDir)
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = Load(path)
	require.Error(t, err)
}
