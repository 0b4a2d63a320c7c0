package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robmorgan/notate/logger"
	"github.com/robmorgan/notate/midifile"
	"github.com/robmorgan/notate/scorefile"
)

var (
	midiOut        string
	midiResolution uint16
	midiChannel    uint8
)

func init() {
	midiCmd.Flags().StringVarP(&midiOut, "output", "o", "", "output file (default: score file name with .mid)")
	midiCmd.Flags().Uint16Var(&midiResolution, "resolution", 960, "ticks per quarter note")
	midiCmd.Flags().Uint8Var(&midiChannel, "channel", 0, "MIDI channel of the note track")
	rootCmd.AddCommand(midiCmd)
}

var midiCmd = &cobra.Command{
	Use:   "midi <score.yaml>",
	Short: "render a score file to a standard MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := scorefile.Load(args[0])
		if err != nil {
			return err
		}

		w, err := midifile.NewWriter(
			midifile.WithResolution(midiResolution),
			midifile.WithChannel(midiChannel),
		)
		if err != nil {
			return err
		}

		path := midiOut
		if path == "" {
			path = strings.TrimSuffix(args[0], ".yaml") + ".mid"
		}
		out, err := os.Create(path)
		if err != nil {
			return err
		}
		defer out.Close()

		if err := w.WriteTo(out, f.Title, f.Events, f.TimeSignatures, f.Tempo); err != nil {
			return err
		}
		logger.GetProjectLogger().Infof("wrote %s", path)
		return nil
	},
}
