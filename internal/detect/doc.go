// Package detect implements the data-integrity detectors shared by the
// repair tooling: likely-duplicate logbook entries, legacy score-id
// references and orphaned score references. Detectors are pure functions
// over in-memory collections; applying fixes is the repair runner's job.
package detect
