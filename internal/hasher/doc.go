// Package hasher computes content digests for batches of image files.
//
// The engine runs two levels of parallelism: the caller's coordinator
// goroutine, which owns cache I/O and event emission, and a bounded worker
// pool that hashes cache misses. Workers hold no shared state beyond their
// digest accumulator, so cancellation only has to stop the coordinator loop.
package hasher
