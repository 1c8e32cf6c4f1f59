package repair

import (
	"context"
	"fmt"

	"github.com/mirubato/mirubato/internal/detect"
)

// Orphan resolutions, in the order presented interactively. Non-interactive
// runs default to stripping the dangling reference, which loses the least.
var orphanResolutions = []string{
	"strip the score reference",
	"delete the entry",
	"skip",
}

const (
	orphanStrip = iota
	orphanDelete
	orphanSkip
)

// fixOrphans resolves entries whose score reference points at a score absent
// from the catalog. The catalog is the set of score ids present in the
// user's repertoire rows.
func (r *Runner) fixOrphans(ctx context.Context, st *runState) error {
	catalog := make(map[string]struct{}, len(st.repertoire))
	for _, item := range st.repertoire {
		catalog[item.ScoreID] = struct{}{}
	}

	orphans := detect.DetectOrphans(st.entries, catalog)
	if len(orphans) == 0 {
		r.log.Info(ctx, "no orphaned score references found")
		return nil
	}

	for _, o := range orphans {
		resolution := orphanStrip
		if st.opts.Interactive {
			msg := fmt.Sprintf("entry %s references missing score %q", o.EntryID, o.ScoreID)
			choice, err := r.prompt.Choose(msg, orphanResolutions)
			if err != nil {
				return err
			}
			resolution = choice
		}

		rec, ok := st.entryRecs[o.EntryID]
		if !ok {
			st.report.Skipped++
			continue
		}

		switch resolution {
		case orphanStrip:
			entry := *o.Entry
			entry.ScoreID = ""
			entry.UpdatedAt = r.clock().UTC()

			after, err := r.updatedCopy(rec, &entry)
			if err != nil {
				return err
			}
			if err := r.applyUpdate(ctx, st, "strip_score_reference", rec, after); err != nil {
				return err
			}

		case orphanDelete:
			if err := r.applyDelete(ctx, st, "delete_orphaned_entry", rec); err != nil {
				return err
			}

		default:
			st.report.Skipped++
			r.log.Info(ctx, "skipping orphan", "entry", o.EntryID)
		}
	}
	return nil
}
