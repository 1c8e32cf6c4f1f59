package repair

import (
	"fmt"
	"strings"
	"time"
)

// Report summarizes one repair run. It is printed even when the run stops
// early, whether on the batch cap (a normal stop) or on a failure.
type Report struct {
	TransactionID string    `json:"transactionId"`
	FixType       string    `json:"fixType"`
	UserID        string    `json:"userId"`
	DryRun        bool      `json:"dryRun"`
	Fixed         int       `json:"fixed"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	BatchLimited  bool      `json:"batchLimited"`
	BackupPath    string    `json:"backupPath,omitempty"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
}

// Summary renders the human-readable end-of-run report.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "repair run %s (%s) for user %s\n", r.TransactionID, r.FixType, r.UserID)
	if r.DryRun {
		fmt.Fprintf(&b, "  mode:    dry run (no mutations issued)\n")
	}
	fmt.Fprintf(&b, "  fixed:   %d\n", r.Fixed)
	fmt.Fprintf(&b, "  skipped: %d\n", r.Skipped)
	fmt.Fprintf(&b, "  failed:  %d\n", r.Failed)
	if r.BatchLimited {
		fmt.Fprintf(&b, "  stopped at batch limit; re-run to continue\n")
	}
	if r.BackupPath != "" {
		fmt.Fprintf(&b, "  backup:  %s\n", r.BackupPath)
	}
	return b.String()
}
