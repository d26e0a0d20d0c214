// Package fileops implements the file management actions a duplicate review
// needs: rename within a directory, delete, and lossless-enough 90 degree
// rotation with an atomic overwrite. Precondition failures (bad names,
// unknown rotation direction) surface synchronously as sentinel errors.
package fileops
