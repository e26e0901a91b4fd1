package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cboxdoerfer/fsearch-sub000/internal/fsdb"
	"github.com/cboxdoerfer/fsearch-sub000/internal/scanner"
)

var updatedbIncludes []string

var updatedbCmd = &cobra.Command{
	Use:     "updatedb",
	Aliases: []string{"--updatedb"},
	Short:   "Scan include paths and write a fresh database",
	RunE:    runUpdatedb,
}

func init() {
	updatedbCmd.Flags().StringSliceVar(&updatedbIncludes, "include", nil,
		"path to index (repeatable); defaults to every mounted partition")
}

// runUpdatedb builds a Database, scans it, saves it, and prints a one-line
// summary. On a TTY it also shows a live-updating \r progress line (the
// teacher's go-isatty gate decided whether to emit VT escapes; here it
// decides whether \r is safe); otherwise no progress is printed.
func runUpdatedb(cmd *cobra.Command, args []string) error {
	db := fsdb.New(updatedbIncludes, scanner.Policy{ExcludeHidden: false})

	var interactive bool
	if f, ok := cmd.OutOrStdout().(interface{ Fd() uintptr }); ok {
		interactive = isatty.IsTerminal(f.Fd())
	}
	var lastPrint time.Time
	progress := func(path string) {
		if !interactive {
			return
		}
		if time.Since(lastPrint) < 150*time.Millisecond {
			return
		}
		lastPrint = time.Now()
		fmt.Fprintf(cmd.OutOrStdout(), "\r%s", styleMuted.Render(truncate(path, 100)))
	}

	start := time.Now()
	if err := db.Scan(context.Background(), progress); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\r")
		cmd.Println(styleErr.Render("scan failed: " + err.Error()))
		return err
	}
	if interactive {
		fmt.Fprintf(cmd.OutOrStdout(), "\r")
	}

	if err := db.Save(); err != nil {
		cmd.Println(styleErr.Render("save failed: " + err.Error()))
		return err
	}

	snap := db.Acquire()
	defer db.Release(snap)
	stats := snap.Stats()
	cmd.Println(styleOK.Render(fmt.Sprintf(
		"indexed %d entries (%d folders, %d files) in %s",
		stats.NumEntries, stats.NumFolders, stats.NumFiles, time.Since(start).Round(time.Millisecond))))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
