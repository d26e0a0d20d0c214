// Package duplicates buckets hashed files into groups sharing a digest.
//
// Groups are derived data: recomputed from a path-to-digest map on every
// search and never persisted. Output order is deterministic for identical
// inputs.
package duplicates
