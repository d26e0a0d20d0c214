// Package hashcache persists file digests in SQLite so unchanged files skip
// re-hashing across runs.
//
// A row is keyed by (path, algorithm) and records the size and modification
// time observed at hash time; a lookup hits only when both still match. The
// data is disposable: a schema version bump wipes the table instead of
// migrating. Connections are not safe for concurrent writers — a Cache must
// be opened, used, and closed by a single goroutine, and an flock sidecar
// keeps separate processes out.
package hashcache
