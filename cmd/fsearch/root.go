package main

import (
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/cboxdoerfer/fsearch-sub000/internal/fsearchlog"
)

// Palette mirrors the teacher's status/view.go AdaptiveColor set, trimmed to
// the handful of tones a scan/query summary line actually needs.
var (
	clrGreen = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	clrRed   = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	clrMuted = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}

	styleOK    = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)
	styleErr   = lipgloss.NewStyle().Foreground(clrRed).Bold(true)
	styleMuted = lipgloss.NewStyle().Foreground(clrMuted)
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information, mirroring the
// teacher's cmd.SetVersionInfo(version, commit, date) called from main().
func SetVersionInfo(v, c, d string) {
	appVersion = v
	appCommit = c
	appDate = d
}

var (
	debugLogging bool
	updatedbFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "fsearch",
	Short: "Index and search the local filesystem",
	Long: `fsearch builds an in-memory index of one or more directory
trees and runs fast substring, wildcard and regex queries against it.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugLogging {
			fsearchlog.SetLevel(slog.LevelDebug)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if updatedbFlag {
			return runUpdatedb(cmd, args)
		}
		return cmd.Help()
	},
}

// Execute runs the root command. rootCmd.Version is set here (not at var
// init time) so it picks up whatever SetVersionInfo was called with from
// main(), enabling cobra's automatic "--version" flag alongside the
// explicit "version" subcommand.
func Execute() error {
	rootCmd.Version = appVersion
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "enable debug-level logging")
	rootCmd.Flags().BoolVar(&updatedbFlag, "updatedb", false, "scan the default include paths and write a fresh database")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updatedbCmd)
	rootCmd.AddCommand(queryCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("fsearch %s (%s, %s)\n", appVersion, appCommit, appDate)
	},
}
