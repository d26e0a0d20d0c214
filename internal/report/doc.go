// Package report serializes duplicate groups into a plain-text report for
// sharing or offline review.
package report
