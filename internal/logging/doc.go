// Package logging builds the slog loggers used across picdup.
//
// Two output formats are supported: a compact single-line console format for
// interactive use and JSON for machine consumption. Attribute helpers mirror
// the slog constructors so call sites stay terse, and a no-op logger is
// available for tests and wiring code that cannot fail.
package logging
