package repair

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mirubato/mirubato/internal/filex"
	"github.com/mirubato/mirubato/internal/models"
)

// Uploader pushes a finished backup artifact to off-host storage. Optional;
// a nil uploader keeps backups local only.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte) error
}

// backupSnapshot is the on-disk shape of one pre-mutation backup.
type backupSnapshot struct {
	TransactionID string               `json:"transactionId"`
	UserID        string               `json:"userId"`
	TakenAt       time.Time            `json:"takenAt"`
	Records       []*models.SyncRecord `json:"records"`
}

// BackupWriter persists a full pre-mutation snapshot of a user's sync rows
// to a timestamped file, and optionally uploads it.
type BackupWriter struct {
	dir      string
	uploader Uploader
	clock    func() time.Time
}

// NewBackupWriter creates the backup directory if needed. Relative dirs are
// resolved against the working directory.
func NewBackupWriter(dir string, uploader Uploader) (*BackupWriter, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("creating backup dir: %w", err)
	}
	return &BackupWriter{dir: abs, uploader: uploader, clock: time.Now}, nil
}

// Write persists the snapshot and returns the backup file path.
func (b *BackupWriter) Write(ctx context.Context, txID, userID string, recs []*models.SyncRecord) (string, error) {
	now := b.clock().UTC()
	snapshot := backupSnapshot{
		TransactionID: txID,
		UserID:        userID,
		TakenAt:       now,
		Records:       recs,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling backup snapshot: %w", err)
	}

	name := fmt.Sprintf("backup_%s_%s_%s.json", userID, now.Format("20060102T150405Z"), txID)
	path := filepath.Join(b.dir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("writing backup %s: %w", path, err)
	}

	if b.uploader != nil {
		if err := b.uploader.Upload(ctx, name, data); err != nil {
			return "", fmt.Errorf("uploading backup %s: %w", name, err)
		}
	}
	return path, nil
}
