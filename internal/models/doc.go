// Package models defines the practice-tracking entities shared by the sync
// engine and the repair tooling: logbook entries, goals, repertoire items and
// the persistence envelope used by the remote sync store.
package models
