package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/qmmzzdx/gperf-gcc-tracing/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "gperf",
	Short: "GCC compile-time trace toolkit",
	Long:  `gperf renders recorded compiler lifecycle captures into Chrome Tracing artifacts`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
