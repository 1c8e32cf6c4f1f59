package config

import "os"

// parseEnv overlays Config with MIRUFIX_* environment variables. Unset or
// empty variables leave the current value alone.
func parseEnv(cfg *Config) {
	overlay(&cfg.DatabaseDSN, os.Getenv("MIRUFIX_DATABASE_DSN"))
	overlay(&cfg.BackupDir, os.Getenv("MIRUFIX_BACKUP_DIR"))
	overlay(&cfg.AuditLogPath, os.Getenv("MIRUFIX_AUDIT_LOG"))
	overlay(&cfg.S3Bucket, os.Getenv("MIRUFIX_S3_BUCKET"))
	overlay(&cfg.S3Region, os.Getenv("MIRUFIX_S3_REGION"))
	overlay(&cfg.S3BaseEndpoint, os.Getenv("MIRUFIX_S3_BASE_ENDPOINT"))
	overlay(&cfg.S3AccessKey, os.Getenv("MIRUFIX_S3_ACCESS_KEY"))
	overlay(&cfg.S3SecretKey, os.Getenv("MIRUFIX_S3_SECRET_KEY"))
}
