package hasher

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"picdup/internal/events"
	"picdup/internal/hashcache"
	"picdup/internal/imagefile"
	"picdup/internal/logging"
)

// readChunkSize is the fixed buffer size for folding file contents into the
// hash state.
const readChunkSize = 8 * 1024

// maxDefaultWorkers caps the automatic pool size; beyond this the pool is
// I/O bound and extra goroutines only add scheduling overhead.
const maxDefaultWorkers = 8

// DefaultWorkerCount returns min(NumCPU, 8).
func DefaultWorkerCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	return min(n, maxDefaultWorkers)
}

// Option customizes engine construction.
type Option func(*Engine)

// WithWorkers overrides the pool size. Values below one fall back to
// DefaultWorkerCount.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithCache supplies an identity cache consulted before hashing and updated
// afterwards. The engine only touches it from the calling goroutine.
func WithCache(cache *hashcache.Cache) Option {
	return func(e *Engine) { e.cache = cache }
}

// WithLogger supplies a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithEventSink registers a sink for Hashed and Progress events. The sink is
// invoked on the calling goroutine only.
func WithEventSink(sink func(events.Event)) Option {
	return func(e *Engine) { e.sink = sink }
}

// Engine hashes batches of files with a bounded worker pool.
type Engine struct {
	algorithm Algorithm
	workers   int
	cache     *hashcache.Cache
	logger    *slog.Logger
	sink      func(events.Event)
}

// NewEngine constructs an Engine for the given algorithm.
func NewEngine(algorithm Algorithm, opts ...Option) *Engine {
	e := &Engine{algorithm: algorithm, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summary reports what happened to a batch.
type Summary struct {
	Total     int
	CacheHits int
	Computed  int
	Failed    int
	Elapsed   time.Duration
}

// Succeeded returns the number of files with a digest in the result map.
func (s Summary) Succeeded() int {
	return s.CacheHits + s.Computed
}

type workerResult struct {
	path   string
	digest string
	err    error
}

// HashAll digests every file and returns a path-to-digest map. Cache hits are
// surfaced first without touching the pool; misses are hashed by workers and
// persisted afterwards. Per-file failures are logged, counted in the summary,
// and excluded from the map. On cancellation the partial map is returned
// along with the context error and no results of unfinished work are stored.
func (e *Engine) HashAll(ctx context.Context, files []imagefile.File) (map[string]string, Summary, error) {
	start := time.Now()
	summary := Summary{Total: len(files)}
	results := make(map[string]string, len(files))
	done := 0

	toHash := files
	if e.cache != nil {
		hits, misses, err := e.cache.LookupBatch(ctx, files, e.algorithm.String())
		if err != nil {
			// A broken cache never fails the batch; hash everything instead.
			e.logger.Warn("cache lookup failed, hashing all files", logging.Error(err))
		} else {
			toHash = misses
			for _, file := range files {
				digest, ok := hits[file.Path]
				if !ok {
					continue
				}
				if ctx.Err() != nil {
					summary.Elapsed = time.Since(start)
					return results, summary, ctx.Err()
				}
				results[file.Path] = digest
				summary.CacheHits++
				done++
				e.emit(events.Hashed{Path: file.Path, Digest: digest})
				e.emit(events.Progress{Done: done, Total: summary.Total})
			}
		}
	}

	fresh := make(map[string]string, len(toHash))
	if len(toHash) > 0 {
		if err := e.hashMisses(ctx, toHash, fresh, results, &summary, &done); err != nil {
			summary.Elapsed = time.Since(start)
			return results, summary, err
		}
	}

	if e.cache != nil && len(fresh) > 0 {
		if err := e.cache.StoreBatch(ctx, fresh, toHash, e.algorithm.String()); err != nil {
			e.logger.Warn("cache store failed", logging.Error(err))
		}
	}

	summary.Elapsed = time.Since(start)
	e.logger.Info("hash batch finished",
		logging.String("algorithm", e.algorithm.String()),
		logging.Int("total", summary.Total),
		logging.Int("cache_hits", summary.CacheHits),
		logging.Int("computed", summary.Computed),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed))
	return results, summary, nil
}

// hashMisses fans toHash out to the worker pool and folds results back on the
// coordinator goroutine.
func (e *Engine) hashMisses(ctx context.Context, toHash []imagefile.File, fresh, results map[string]string, summary *Summary, done *int) error {
	workers := e.workers
	if workers < 1 {
		workers = DefaultWorkerCount()
	}
	workers = min(workers, len(toHash))

	jobs := make(chan imagefile.File)
	out := make(chan workerResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				digest, err := hashFile(file.Path, e.algorithm)
				select {
				case out <- workerResult{path: file.Path, digest: digest, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, file := range toHash {
			select {
			case jobs <- file:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	for result := range out {
		if result.err != nil {
			summary.Failed++
			e.logger.Debug("hash failed", logging.String("path", result.path), logging.Error(result.err))
		} else {
			results[result.path] = result.digest
			fresh[result.path] = result.digest
			summary.Computed++
			e.emit(events.Hashed{Path: result.path, Digest: result.digest})
		}
		*done++
		e.emit(events.Progress{Done: *done, Total: summary.Total})

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return ctx.Err()
}

func (e *Engine) emit(event events.Event) {
	if e.sink != nil {
		e.sink(event)
	}
}

// hashFile reads path in fixed-size chunks and folds each into the hash
// state, returning the lowercase hex digest.
func hashFile(path string, algorithm Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	state := algorithm.New()
	buf := make([]byte, readChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			state.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(state.Sum(nil)), nil
}
