package commands

import (
	"github.com/spf13/cobra"
)

// Global flags
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "callbridge",
	Short: "Realtime telephony to speech-model audio bridge",
	Long: `callbridge bridges PSTN phone calls to a realtime speech model.

It accepts telephony media-stream websockets, opens a realtime model
session per call and relays μ-law audio in both directions. The model
speaks a configurable greeting, handles barge-in, and only hangs up
after the caller explicitly confirms.

Example:
  callbridge serve --config /etc/callbridge/config.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
