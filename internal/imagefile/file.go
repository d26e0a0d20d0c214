package imagefile

import (
	"io/fs"
	"os"
	"syscall"
	"time"

	"picdup/internal/imageformat"
)

// File describes one image file at the moment it was stat'ed.
type File struct {
	Path     string
	Size     int64
	Created  time.Time
	Modified time.Time
	Format   string
}

// FromInfo builds a File from a path and its stat result. The format is
// derived from the extension.
func FromInfo(path string, info fs.FileInfo) File {
	return File{
		Path:     path,
		Size:     info.Size(),
		Created:  createdTime(info),
		Modified: info.ModTime(),
		Format:   imageformat.Format(path),
	}
}

// Stat stats path and builds the corresponding File.
func Stat(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	return FromInfo(path, info), nil
}

// createdTime extracts the inode change time where the platform exposes one.
// Creation time is not reliably available on Linux filesystems, so ctime is
// the closest stable stand-in; callers that cannot get it see mtime.
func createdTime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
	}
	return info.ModTime()
}
