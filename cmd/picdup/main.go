package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// An interrupted scan or hash job is not a failure worth printing;
		// exit with the conventional SIGINT status instead.
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "picdup:", err)
		os.Exit(1)
	}
}
