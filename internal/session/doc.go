// Package session runs scan and hash operations as cancellable background
// jobs that publish their lifecycle on an event stream.
package session
