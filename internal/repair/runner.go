package repair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mirubato/mirubato/internal/common"
	"github.com/mirubato/mirubato/internal/logging"
	"github.com/mirubato/mirubato/internal/models"
	"github.com/mirubato/mirubato/internal/repair/records"
)

// AutoApplyThreshold is the minimum detector confidence for a fix to be
// applied without interactive confirmation. Lower-confidence findings are
// skipped and counted separately.
const AutoApplyThreshold = 0.85

// DefaultBatchSize caps applied fixes per invocation when the caller does
// not set one.
const DefaultBatchSize = 50

// Options configures one repair run.
type Options struct {
	// UserID scopes the run. Required.
	UserID string

	// BatchSize caps the number of fixes applied in this invocation.
	// Zero means DefaultBatchSize.
	BatchSize int

	// Interactive asks for confirmation per fix (or per group of fixes
	// sharing a root cause) instead of applying by confidence.
	Interactive bool

	// AutoBackup snapshots all of the user's rows before the first mutation.
	AutoBackup bool

	// DryRun counts and logs every fix as "would apply" without issuing
	// any mutation.
	DryRun bool
}

// Runner drives one fix type end to end:
// prepare, backup, fix, report.
type Runner struct {
	repo   records.Repository
	backup *BackupWriter
	audit  *AuditLog
	prompt Prompter
	log    logging.Logger
	clock  func() time.Time
	newID  func() string
}

// NewRunner wires a runner. backup may be nil when backups are disabled at
// construction time; audit and prompt are required.
func NewRunner(repo records.Repository, backup *BackupWriter, audit *AuditLog, prompt Prompter, log logging.Logger) *Runner {
	return &Runner{
		repo:   repo,
		backup: backup,
		audit:  audit,
		prompt: prompt,
		log:    log,
		clock:  time.Now,
		newID:  uuid.NewString,
	}
}

// runState carries one run's working set between the shared driver and the
// fix implementations.
type runState struct {
	opts      Options
	batchSize int
	report    *Report

	// Decoded working set, tombstoned records excluded from entries.
	recs       []*models.SyncRecord
	entries    []*models.LogbookEntry
	entryRecs  map[string]*models.SyncRecord // entry id -> record
	repertoire []*models.RepertoireItem
	repRecs    map[string]*models.SyncRecord // score id -> record
}

// FixDuplicates tombstones entries flagged as likely duplicates, keeping the
// canonical (earliest created) entry of each group.
func (r *Runner) FixDuplicates(ctx context.Context, opts Options) (*Report, error) {
	return r.run(ctx, opts, "duplicates", r.fixDuplicates)
}

// FixScoreIDs rewrites legacy score-id references to their canonical form.
func (r *Runner) FixScoreIDs(ctx context.Context, opts Options) (*Report, error) {
	return r.run(ctx, opts, "score-ids", r.fixScoreIDs)
}

// FixOrphans resolves entries referencing scores absent from the catalog.
func (r *Runner) FixOrphans(ctx context.Context, opts Options) (*Report, error) {
	return r.run(ctx, opts, "orphans", r.fixOrphans)
}

func (r *Runner) run(ctx context.Context, opts Options, fixType string, fix func(context.Context, *runState) error) (*Report, error) {
	if opts.UserID == "" {
		return nil, common.ErrUserIDEmpty
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	report := &Report{
		TransactionID: r.newID(),
		FixType:       fixType,
		UserID:        opts.UserID,
		DryRun:        opts.DryRun,
		StartedAt:     r.clock().UTC(),
	}
	log := r.log.With("tx", report.TransactionID, "fix", fixType, "user", opts.UserID)
	log.Info(ctx, "repair run starting", "dry_run", opts.DryRun, "batch_size", batchSize)

	recs, err := r.repo.ListByUser(ctx, opts.UserID)
	if err != nil {
		report.FinishedAt = r.clock().UTC()
		return report, fmt.Errorf("loading sync records: %w", err)
	}

	if opts.AutoBackup && !opts.DryRun && len(recs) > 0 {
		if r.backup == nil {
			report.FinishedAt = r.clock().UTC()
			return report, errors.New("auto-backup requested but no backup writer configured")
		}
		path, err := r.backup.Write(ctx, report.TransactionID, opts.UserID, recs)
		if err != nil {
			report.FinishedAt = r.clock().UTC()
			return report, fmt.Errorf("writing backup: %w", err)
		}
		report.BackupPath = path
		log.Info(ctx, "backup written", "path", path)
	}

	st := &runState{
		opts:      opts,
		batchSize: batchSize,
		report:    report,
		recs:      recs,
	}
	r.decode(ctx, st)

	err = fix(ctx, st)
	if errors.Is(err, common.ErrBatchLimit) {
		report.BatchLimited = true
		err = nil
	}
	report.FinishedAt = r.clock().UTC()
	if err != nil {
		return report, err
	}

	log.Info(ctx, "repair run finished",
		"fixed", report.Fixed, "skipped", report.Skipped, "failed", report.Failed,
		"batch_limited", report.BatchLimited)
	return report, nil
}

// decode splits the raw records into typed collections. Records that fail to
// decode are logged and left alone; tombstoned logbook records are excluded
// from detection input.
func (r *Runner) decode(ctx context.Context, st *runState) {
	st.entryRecs = make(map[string]*models.SyncRecord)
	st.repRecs = make(map[string]*models.SyncRecord)

	for _, rec := range st.recs {
		switch rec.EntityType {
		case models.EntityTypeLogbook:
			entry, err := rec.DecodeEntry()
			if err != nil {
				r.log.Warn(ctx, "skipping undecodable logbook record", "record", rec.ID, "error", err)
				continue
			}
			st.entryRecs[entry.ID] = rec
			if rec.DeletedAt == nil && entry.DeletedAt == nil {
				st.entries = append(st.entries, entry)
			}
		case models.EntityTypeRepertoire:
			item, err := rec.DecodeRepertoireItem()
			if err != nil {
				r.log.Warn(ctx, "skipping undecodable repertoire record", "record", rec.ID, "error", err)
				continue
			}
			st.repRecs[item.ScoreID] = rec
			st.repertoire = append(st.repertoire, item)
		default:
			r.log.Warn(ctx, "skipping record with unknown entity type",
				"record", rec.ID, "entity_type", string(rec.EntityType))
		}
	}
}

// shouldApply decides one proposed fix: interactive runs ask the operator,
// non-interactive runs compare confidence against the auto-apply threshold.
func (r *Runner) shouldApply(st *runState, confidence float64, description string) (bool, error) {
	if st.opts.Interactive {
		return r.prompt.Confirm(description)
	}
	return confidence >= AutoApplyThreshold, nil
}

// applyUpdate issues one row update, honoring batch cap, dry-run and audit.
func (r *Runner) applyUpdate(ctx context.Context, st *runState, action string, before, after *models.SyncRecord) error {
	if st.report.Fixed >= st.batchSize {
		return common.ErrBatchLimit
	}
	if st.opts.DryRun {
		st.report.Fixed++
		r.log.Info(ctx, "would apply", "action", action, "record", before.ID)
		return nil
	}
	if err := r.repo.Update(ctx, after); err != nil {
		st.report.Failed++
		return fmt.Errorf("applying %s to record %s: %w", action, before.ID, err)
	}
	if err := r.audit.Record(AuditEntry{
		TransactionID: st.report.TransactionID,
		UserID:        st.opts.UserID,
		FixType:       st.report.FixType,
		Action:        action,
		RecordID:      before.ID,
		Before:        before,
		After:         after,
		AppliedAt:     r.clock().UTC(),
	}); err != nil {
		st.report.Failed++
		return err
	}
	st.report.Fixed++
	return nil
}

// applyDelete issues one row deletion, honoring batch cap, dry-run and audit.
func (r *Runner) applyDelete(ctx context.Context, st *runState, action string, before *models.SyncRecord) error {
	if st.report.Fixed >= st.batchSize {
		return common.ErrBatchLimit
	}
	if st.opts.DryRun {
		st.report.Fixed++
		r.log.Info(ctx, "would apply", "action", action, "record", before.ID)
		return nil
	}
	if err := r.repo.Delete(ctx, before.ID); err != nil {
		st.report.Failed++
		return fmt.Errorf("applying %s to record %s: %w", action, before.ID, err)
	}
	if err := r.audit.Record(AuditEntry{
		TransactionID: st.report.TransactionID,
		UserID:        st.opts.UserID,
		FixType:       st.report.FixType,
		Action:        action,
		RecordID:      before.ID,
		Before:        before,
		AppliedAt:     r.clock().UTC(),
	}); err != nil {
		st.report.Failed++
		return err
	}
	st.report.Fixed++
	return nil
}

// updatedCopy clones a record and applies a new entity payload to the clone,
// bumping version and update time.
func (r *Runner) updatedCopy(rec *models.SyncRecord, entity any) (*models.SyncRecord, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("marshaling entity for record %s: %w", rec.ID, err)
	}
	after := *rec
	after.SetData(string(data))
	after.Version++
	after.UpdatedAt = r.clock().UTC()
	return &after, nil
}
