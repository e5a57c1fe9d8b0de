package main

import (
	"os"

	"github.com/swiftconvert/server/cmd"
)

// Version information - set during build time via ldflags
var (
	Version   = "dev"
	GitCommit = "none"
	BuildTime = "unknown"
)

func main() {
	cmd.SetVersionInfo(Version, GitCommit, BuildTime)

	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
