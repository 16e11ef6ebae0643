// Package main provides the entry point for the clickplan CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/clickplan/internal/cli"
)

// Set via ldflags at build time.
//
//nolint:gochecknoglobals // build metadata
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	os.Exit(cli.ExitCodeForError(err))
}
