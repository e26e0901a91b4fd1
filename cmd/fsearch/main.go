// Command fsearch is the CLI entrypoint: --version, --updatedb, and a
// query subcommand for exercising the engine without a GUI.
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	SetVersionInfo(version, commit, date)
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
