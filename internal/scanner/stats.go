package scanner

import (
	"errors"
	"io/fs"

	"golang.org/x/sys/unix"

	"picdup/internal/imagefile"
)

// Stats is the snapshot of counters accumulated during one scan.
type Stats struct {
	// Scanned counts every regular file visited, supported or not.
	Scanned int
	// Found counts supported files that produced a record.
	Found int
	// Errors is the total of all classified per-file failures.
	Errors           int
	PermissionErrors int
	NetworkErrors    int
	OtherErrors      int
	// ByFormat counts found files per lowercase extension.
	ByFormat map[string]int
	// TotalBytes sums the sizes of found files.
	TotalBytes int64
}

func newStats() Stats {
	return Stats{ByFormat: make(map[string]int)}
}

func (st *Stats) recordFound(file imagefile.File) {
	st.Found++
	st.ByFormat[file.Format]++
	st.TotalBytes += file.Size
}

// recordError buckets a per-file failure. Stale NFS handles and I/O errors
// land in the network bucket; everything that is not a permission problem
// falls through to other.
func (st *Stats) recordError(err error) {
	st.Errors++
	switch {
	case errors.Is(err, fs.ErrPermission):
		st.PermissionErrors++
	case errors.Is(err, unix.ESTALE), errors.Is(err, unix.EIO), errors.Is(err, unix.ENOTCONN):
		st.NetworkErrors++
	default:
		st.OtherErrors++
	}
}
