// Package main is the entry point for gdbmi.
package main

import (
	"os"

	"github.com/dshills/gdbmi/internal/cmd"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	root := cmd.NewRootCommand(cmd.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
