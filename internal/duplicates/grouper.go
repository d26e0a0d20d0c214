package duplicates

import (
	"path/filepath"
	"sort"

	"picdup/internal/imagefile"
)

// Group is a set of two or more files with identical content. All members
// share the digest and therefore the size.
type Group struct {
	Digest string
	Files  []imagefile.File
	Size   int64
}

// Count returns the number of members.
func (g Group) Count() int {
	return len(g.Files)
}

// Filename returns the base name of the first member.
func (g Group) Filename() string {
	if len(g.Files) == 0 {
		return ""
	}
	return filepath.Base(g.Files[0].Path)
}

// Find buckets files by digest and returns groups with at least two members.
// Files without an entry in digests (failed hashes) are skipped. Members keep
// the order they appear in files; groups are sorted by descending member
// count, then ascending first filename, then digest, so identical inputs
// always produce identical output.
func Find(digests map[string]string, files []imagefile.File) []Group {
	byDigest := make(map[string]int)
	var groups []Group

	for _, file := range files {
		digest, ok := digests[file.Path]
		if !ok {
			continue
		}
		idx, seen := byDigest[digest]
		if !seen {
			byDigest[digest] = len(groups)
			groups = append(groups, Group{Digest: digest, Size: file.Size})
			idx = len(groups) - 1
		}
		groups[idx].Files = append(groups[idx].Files, file)
	}

	filtered := groups[:0]
	for _, group := range groups {
		if group.Count() >= 2 {
			filtered = append(filtered, group)
		}
	}
	groups = filtered

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count() != groups[j].Count() {
			return groups[i].Count() > groups[j].Count()
		}
		if groups[i].Filename() != groups[j].Filename() {
			return groups[i].Filename() < groups[j].Filename()
		}
		return groups[i].Digest < groups[j].Digest
	})
	return groups
}

// TotalDuplicates counts redundant files across groups: one member of each
// group is the original and is not counted.
func TotalDuplicates(groups []Group) int {
	total := 0
	for _, group := range groups {
		total += group.Count() - 1
	}
	return total
}

// WastedBytes sums the space occupied by redundant copies.
func WastedBytes(groups []Group) int64 {
	var total int64
	for _, group := range groups {
		total += group.Size * int64(group.Count()-1)
	}
	return total
}
