package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"picdup/internal/duplicates"
)

const ruleWidth = 80

// Write renders the duplicate groups as a human-readable text report.
func Write(w io.Writer, groups []duplicates.Group, generated time.Time) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", ruleWidth)
	thin := strings.Repeat("-", ruleWidth)

	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, "Duplicate Files Report")
	fmt.Fprintf(bw, "Generated: %s\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "SUMMARY")
	fmt.Fprintln(bw, thin)
	fmt.Fprintf(bw, "Duplicate Groups: %d\n", len(groups))
	fmt.Fprintf(bw, "Duplicate Files: %d\n", duplicates.TotalDuplicates(groups))
	fmt.Fprintf(bw, "Wasted Space: %s\n", humanize.IBytes(uint64(duplicates.WastedBytes(groups))))
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw)

	for i, group := range groups {
		fmt.Fprintf(bw, "[%d] %s\n", i+1, group.Filename())
		fmt.Fprintf(bw, "    Hash: %s\n", group.Digest)
		fmt.Fprintf(bw, "    Size: %s\n", humanize.IBytes(uint64(group.Size)))
		fmt.Fprintf(bw, "    Count: %d files\n", group.Count())
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "    Locations:")
		for _, file := range group.Files {
			fmt.Fprintf(bw, "      - %s\n", file.Path)
		}
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, thin)
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// Export writes the report to path, creating or truncating the file.
func Export(path string, groups []duplicates.Group) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Write(f, groups, time.Now()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}
