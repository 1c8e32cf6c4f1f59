package repair

import (
	"context"
	"fmt"

	"github.com/mirubato/mirubato/internal/detect"
)

// fixScoreIDs rewrites every reference to a legacy score id to its canonical
// form. Mismatches are grouped by old id, so one confirmation covers all
// affected rows; the rewrite itself is deterministic and auto-applies in
// non-interactive mode.
func (r *Runner) fixScoreIDs(ctx context.Context, st *runState) error {
	mismatches := detect.DetectScoreIDMismatches(st.entries, st.repertoire)
	if len(mismatches) == 0 {
		r.log.Info(ctx, "no score-id mismatches found")
		return nil
	}

	for _, m := range mismatches {
		desc := fmt.Sprintf("rewrite score id %q to %q (%d entries, %d repertoire rows)",
			m.OldID, m.NewID, len(m.AffectedEntries), len(m.AffectedRepertoire))

		apply, err := r.shouldApply(st, 1.0, desc)
		if err != nil {
			return err
		}
		if !apply {
			st.report.Skipped += len(m.AffectedEntries) + len(m.AffectedRepertoire)
			r.log.Info(ctx, "skipping score-id group", "old_id", m.OldID)
			continue
		}

		for _, entryID := range m.AffectedEntries {
			rec, ok := st.entryRecs[entryID]
			if !ok {
				st.report.Skipped++
				continue
			}
			entry, err := rec.DecodeEntry()
			if err != nil {
				st.report.Skipped++
				continue
			}
			if entry.ScoreID == m.OldID {
				entry.ScoreID = m.NewID
			}
			for i := range entry.Pieces {
				if entry.Pieces[i].ID == m.OldID {
					entry.Pieces[i].ID = m.NewID
				}
			}
			entry.UpdatedAt = r.clock().UTC()

			after, err := r.updatedCopy(rec, entry)
			if err != nil {
				return err
			}
			if err := r.applyUpdate(ctx, st, "rewrite_score_id", rec, after); err != nil {
				return err
			}
		}

		for _, oldScoreID := range m.AffectedRepertoire {
			rec, ok := st.repRecs[oldScoreID]
			if !ok {
				st.report.Skipped++
				continue
			}
			item, err := rec.DecodeRepertoireItem()
			if err != nil {
				st.report.Skipped++
				continue
			}
			item.ScoreID = m.NewID
			item.UpdatedAt = r.clock().UTC()

			after, err := r.updatedCopy(rec, item)
			if err != nil {
				return err
			}
			// The repertoire row is keyed by its score id.
			after.EntityID = m.NewID

			if err := r.applyUpdate(ctx, st, "rewrite_score_id", rec, after); err != nil {
				return err
			}
		}
	}
	return nil
}
