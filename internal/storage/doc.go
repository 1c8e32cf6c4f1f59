// Package storage provides the local key-value store used by the sync
// engine: a Store interface, a SQLite-backed implementation with optional
// per-key TTL, and an in-memory implementation for tests.
package storage
