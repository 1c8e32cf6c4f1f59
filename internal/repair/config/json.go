package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. After parsing,
// non-empty values are copied into the runtime Config, so a partial file only
// overrides what it names.
type JsonConfig struct {
	DatabaseDSN    string `json:"database_dsn"`
	BackupDir      string `json:"backup_dir"`
	AuditLogPath   string `json:"audit_log_path"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`
}

// parseJson overlays Config with values from a JSON file. An empty path means
// no file is loaded and is not an error.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	overlay(&cfg.DatabaseDSN, jc.DatabaseDSN)
	overlay(&cfg.BackupDir, jc.BackupDir)
	overlay(&cfg.AuditLogPath, jc.AuditLogPath)
	overlay(&cfg.S3Bucket, jc.S3Bucket)
	overlay(&cfg.S3Region, jc.S3Region)
	overlay(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	overlay(&cfg.S3AccessKey, jc.S3AccessKey)
	overlay(&cfg.S3SecretKey, jc.S3SecretKey)
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
