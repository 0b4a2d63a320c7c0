// Package cmd wires the notate CLI: subcommands that read a YAML score
// description and emit notation or MIDI.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/robmorgan/notate/logger"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "notate",
	Short: "quantize free-timed events into notated music",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
