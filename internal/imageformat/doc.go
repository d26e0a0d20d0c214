// Package imageformat decides which files count as images.
//
// The supported set is fixed: formats the rest of the pipeline can hash and
// group. Membership is decided purely on the file extension; no I/O happens
// here, so the filter is safe to call from any goroutine.
package imageformat
