package main

import (
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// countPrinter groups digits for large file counts (12,480 not 12480).
var countPrinter = message.NewPrinter(language.English)

func formatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
