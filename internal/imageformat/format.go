package imageformat

import (
	"path/filepath"
	"sort"
	"strings"
)

var supported = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"heic": {},
	"heif": {},
	"webp": {},
	"tiff": {},
	"tif":  {},
}

// Format returns the lowercase extension of path without the leading dot.
// Files without an extension yield an empty string.
func Format(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return strings.TrimPrefix(ext, ".")
}

// IsSupported reports whether the path's extension belongs to the supported
// image-format set.
func IsSupported(path string) bool {
	_, ok := supported[Format(path)]
	return ok
}

// Supported returns the supported format names in sorted order.
func Supported() []string {
	names := make([]string, 0, len(supported))
	for name := range supported {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
