package repair

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mirubato/mirubato/internal/models"
)

// AuditEntry records one applied mutation with full before/after snapshots,
// tagged with the run's transaction id. One JSON object per line.
type AuditEntry struct {
	TransactionID string             `json:"transactionId"`
	UserID        string             `json:"userId"`
	FixType       string             `json:"fixType"`
	Action        string             `json:"action"`
	RecordID      string             `json:"recordId"`
	Before        *models.SyncRecord `json:"before,omitempty"`
	After         *models.SyncRecord `json:"after,omitempty"`
	AppliedAt     time.Time          `json:"appliedAt"`
}

// AuditLog appends entries to a JSONL sink.
type AuditLog struct {
	mu sync.Mutex
	w  io.Writer
}

// NewAuditLog wraps an arbitrary writer, typically a file opened in append
// mode.
func NewAuditLog(w io.Writer) *AuditLog {
	return &AuditLog{w: w}
}

// OpenAuditLog opens (creating if needed) an append-only audit file. The
// caller owns the returned file handle.
func OpenAuditLog(path string) (*AuditLog, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, nil, fmt.Errorf("opening audit log %s: %w", path, err)
	}
	return NewAuditLog(f), f, nil
}

// Record appends one entry. A failed audit write fails the mutation's run:
// an unaudited fix is worse than a stopped one.
func (l *AuditLog) Record(e AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling audit entry: %w", err)
	}
	if _, err := l.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	return nil
}
