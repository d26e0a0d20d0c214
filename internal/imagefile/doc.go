// Package imagefile defines the immutable record describing one discovered
// image file. Records are created by the scanner and consumed by the hash
// engine and duplicate grouper; a renamed or rewritten file gets a fresh
// record rather than a mutation.
package imagefile
