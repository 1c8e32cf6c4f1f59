package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mirubato/mirubato/internal/common"
)

// EntityType names the kind of entity wrapped by a SyncRecord.
type EntityType string

const (
	EntityTypeLogbook    EntityType = "logbook"
	EntityTypeRepertoire EntityType = "repertoire"
)

// SyncRecord is the persistence envelope stored in the remote sync_records
// table. One record wraps exactly one LogbookEntry or RepertoireItem
// snapshot; Checksum is a content hash of Data used to detect divergence
// without deserializing.
type SyncRecord struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`

	// Data is the serialized entity snapshot (JSON).
	Data     string `json:"data"`
	Checksum string `json:"checksum"`

	// Version is incremented on every mutation, including repair fixes.
	Version int64 `json:"version"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`

	// DeviceID identifies the client that last wrote the record, when known.
	DeviceID string `json:"deviceId,omitempty"`
}

// ComputeChecksum returns the hex-encoded SHA-256 of a serialized payload.
func ComputeChecksum(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// SetData replaces the serialized payload and recomputes the checksum.
func (r *SyncRecord) SetData(data string) {
	r.Data = data
	r.Checksum = ComputeChecksum(data)
}

// DecodeEntry deserializes the wrapped payload as a LogbookEntry. The record
// must have EntityType logbook.
func (r *SyncRecord) DecodeEntry() (*LogbookEntry, error) {
	if r.EntityType != EntityTypeLogbook {
		return nil, fmt.Errorf("%w: record %s is %s, not logbook", common.ErrValidation, r.ID, r.EntityType)
	}
	var e LogbookEntry
	if err := json.Unmarshal([]byte(r.Data), &e); err != nil {
		return nil, fmt.Errorf("decoding entry payload of record %s: %w", r.ID, err)
	}
	return &e, nil
}

// DecodeRepertoireItem deserializes the wrapped payload as a RepertoireItem.
func (r *SyncRecord) DecodeRepertoireItem() (*RepertoireItem, error) {
	if r.EntityType != EntityTypeRepertoire {
		return nil, fmt.Errorf("%w: record %s is %s, not repertoire", common.ErrValidation, r.ID, r.EntityType)
	}
	var item RepertoireItem
	if err := json.Unmarshal([]byte(r.Data), &item); err != nil {
		return nil, fmt.Errorf("decoding repertoire payload of record %s: %w", r.ID, err)
	}
	return &item, nil
}
