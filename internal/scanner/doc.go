// Package scanner walks a directory tree and collects records for supported
// image files.
//
// Per-file stat and permission failures are classified and counted, never
// fatal; only a missing or non-directory root aborts a scan. Statistics are
// returned as an immutable snapshot alongside the records, so a scan result
// can be inspected without racing a reused scanner.
package scanner
