// Package events defines the tagged union emitted by long-running scan and
// hash jobs. The coordinator goroutine is the only sender; the controlling
// caller drains the channel on its own schedule and never touches job
// internals directly.
package events
