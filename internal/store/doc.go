// Package store provides the in-memory recording registry.
// Recordings live from capture until explicit deletion or process exit;
// growth is intentionally unbounded and surfaced through store statistics.
package store
