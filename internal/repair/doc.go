// Package repair orchestrates the data-integrity detectors against the
// remote sync store: it backs up affected rows, applies fixes in batches
// (interactively confirmed or auto-applied above a confidence threshold),
// records an audit trail and prints a report.
//
// The remote store offers no cross-statement transactions: each call is an
// independent connection. Applied fixes are therefore never rolled back
// automatically; the pre-mutation backup and the audit log, both tagged with
// the run's transaction id, are the recovery path.
package repair
