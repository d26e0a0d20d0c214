package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"picdup/internal/events"
	"picdup/internal/hashcache"
	"picdup/internal/hasher"
	"picdup/internal/imagefile"
	"picdup/internal/logging"
	"picdup/internal/scanner"
)

// eventBuffer sizes each job's event channel. The producer blocks once the
// consumer falls this far behind.
const eventBuffer = 64

// Job is a running scan or hash operation. Events arrive on Events until the
// channel closes; accessors are valid after that.
type Job struct {
	id     string
	events chan events.Event
	cancel context.CancelFunc

	mu      sync.Mutex
	result  *scanner.Result
	digests map[string]string
	summary hasher.Summary
	err     error
}

func newJob(parent context.Context) (*Job, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &Job{
		id:     uuid.NewString(),
		events: make(chan events.Event, eventBuffer),
		cancel: cancel,
	}, ctx
}

// ID returns the job's unique identifier.
func (j *Job) ID() string { return j.id }

// Events returns the job's event stream. The channel closes when the job
// ends; a Complete event precedes the close only on clean completion.
func (j *Job) Events() <-chan events.Event { return j.events }

// Cancel requests cooperative cancellation. In-flight work stops at the next
// checkpoint and partial results remain accessible.
func (j *Job) Cancel() { j.cancel() }

// Result returns the scan outcome. Nil until a scan job finishes.
func (j *Job) Result() *scanner.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Digests returns the path-to-digest map accumulated by a hash job, including
// partial results after cancellation.
func (j *Job) Digests() map[string]string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.digests
}

// Summary returns the hash batch summary.
func (j *Job) Summary() hasher.Summary {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.summary
}

// Err returns the job's terminal error, context.Canceled after cancellation,
// or nil on clean completion.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *Job) emit(event events.Event) {
	j.events <- event
}

func (j *Job) finish(err error) {
	j.mu.Lock()
	j.err = err
	j.mu.Unlock()

	// Cancellation ends the stream silently; anything else is surfaced.
	if err != nil && !errors.Is(err, context.Canceled) {
		j.emit(events.Error{Message: err.Error()})
	}
	close(j.events)
}

// StartScan launches a directory scan job. Discovered files surface as
// FileFound events with periodic ScanProgress updates, followed by a Complete
// event carrying the found count.
func StartScan(ctx context.Context, logger *slog.Logger, root string, recursive bool) *Job {
	if logger == nil {
		logger = logging.NewNop()
	}
	job, jobCtx := newJob(ctx)

	go func() {
		start := time.Now()
		scan := scanner.New(logger,
			scanner.WithFoundCallback(func(file imagefile.File) {
				job.emit(events.FileFound{File: file})
			}),
			scanner.WithProgressCallback(func(scanned, found int) {
				job.emit(events.ScanProgress{Scanned: scanned, Found: found})
			}))

		result, err := scan.Scan(jobCtx, root, recursive)
		if err != nil {
			job.finish(err)
			return
		}

		job.mu.Lock()
		job.result = result
		job.mu.Unlock()

		job.emit(events.Complete{Count: result.Stats.Found, Elapsed: time.Since(start)})
		job.finish(nil)
	}()

	return job
}

// StartHash launches a hashing job over files. When cachePath is non-empty
// the identity cache there is opened for the job's duration; the cache handle
// never leaves the job goroutine.
func StartHash(ctx context.Context, logger *slog.Logger, files []imagefile.File, algorithm hasher.Algorithm, workers int, cachePath string) *Job {
	if logger == nil {
		logger = logging.NewNop()
	}
	job, jobCtx := newJob(ctx)

	go func() {
		opts := []hasher.Option{
			hasher.WithLogger(logger),
			hasher.WithWorkers(workers),
			hasher.WithEventSink(job.emit),
		}

		if cachePath != "" {
			cache, err := hashcache.Open(cachePath, logger)
			if err != nil {
				// The cache is an accelerator; hashing proceeds without it.
				logger.Warn("hash cache unavailable", logging.String("path", cachePath), logging.Error(err))
			} else {
				defer func() {
					if err := cache.Close(); err != nil {
						logger.Warn("hash cache close failed", logging.Error(err))
					}
				}()
				opts = append(opts, hasher.WithCache(cache))
			}
		}

		engine := hasher.NewEngine(algorithm, opts...)
		digests, summary, err := engine.HashAll(jobCtx, files)

		job.mu.Lock()
		job.digests = digests
		job.summary = summary
		job.mu.Unlock()

		if err != nil {
			job.finish(err)
			return
		}

		job.emit(events.Complete{Count: summary.Succeeded(), Elapsed: summary.Elapsed})
		job.finish(nil)
	}()

	return job
}
