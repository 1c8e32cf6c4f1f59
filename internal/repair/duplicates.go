package repair

import (
	"context"
	"fmt"

	"github.com/mirubato/mirubato/internal/detect"
)

// fixDuplicates tombstones flagged duplicate entries. The canonical entry of
// each group (earliest created) is never touched; the duplicates keep their
// payload and gain a deletion marker, so the fix is reversible from the
// record itself.
func (r *Runner) fixDuplicates(ctx context.Context, st *runState) error {
	dups := detect.DetectDuplicates(st.entries)
	if len(dups) == 0 {
		r.log.Info(ctx, "no duplicate entries found")
		return nil
	}

	for _, dup := range dups {
		desc := fmt.Sprintf("tombstone entry %s as duplicate of %s (confidence %.2f: %s)",
			dup.ID, dup.DuplicateOf, dup.Confidence, dup.Reason)

		apply, err := r.shouldApply(st, dup.Confidence, desc)
		if err != nil {
			return err
		}
		if !apply {
			st.report.Skipped++
			r.log.Info(ctx, "skipping duplicate", "entry", dup.ID, "confidence", dup.Confidence)
			continue
		}

		rec, ok := st.entryRecs[dup.ID]
		if !ok {
			st.report.Skipped++
			continue
		}

		entry := *dup.Entry
		now := r.clock().UTC()
		entry.DeletedAt = &now
		entry.UpdatedAt = now

		after, err := r.updatedCopy(rec, &entry)
		if err != nil {
			return err
		}
		after.DeletedAt = &now

		if err := r.applyUpdate(ctx, st, "tombstone_duplicate", rec, after); err != nil {
			return err
		}
	}
	return nil
}
