package events

import (
	"time"

	"picdup/internal/imagefile"
)

// Event is one message on a job's event stream.
type Event interface {
	isEvent()
}

// FileFound reports a supported image discovered during a scan.
type FileFound struct {
	File imagefile.File
}

// ScanProgress carries running scan counters.
type ScanProgress struct {
	Scanned int
	Found   int
}

// Hashed reports one file's digest, whether served from cache or computed.
type Hashed struct {
	Path   string
	Digest string
}

// Progress carries hash completion counts. Done is monotonically
// non-decreasing and reaches Total only when the batch finishes.
type Progress struct {
	Done  int
	Total int
}

// Complete signals a clean end of the operation. It never fires after
// cancellation.
type Complete struct {
	Count   int
	Elapsed time.Duration
}

// Error reports an operation-level failure. Per-file failures are aggregated
// into counters instead and never produce an Error event.
type Error struct {
	Message string
}

func (FileFound) isEvent()    {}
func (ScanProgress) isEvent() {}
func (Hashed) isEvent()       {}
func (Progress) isEvent()     {}
func (Complete) isEvent()     {}
func (Error) isEvent()        {}
