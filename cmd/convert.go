package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robmorgan/notate/faults"
	"github.com/robmorgan/notate/quantize"
	"github.com/robmorgan/notate/scorefile"
	"github.com/robmorgan/notate/tree"
	"github.com/robmorgan/notate/voice"
)

var (
	strategy       string
	maxDots        int
	noBeams        bool
	durationLines  bool
	referenceTempo float64
	convertOut     string
)

func init() {
	convertCmd.Flags().StringVarP(&strategy, "strategy", "s", "direct", "quantization strategy (direct or search)")
	convertCmd.Flags().IntVar(&maxDots, "max-dots", 1, "maximum augmentation dots per note")
	convertCmd.Flags().BoolVar(&noBeams, "no-beams", false, "skip the beaming pass")
	convertCmd.Flags().BoolVar(&durationLines, "duration-lines", false, "draw duration lines instead of tied note chains")
	convertCmd.Flags().Float64Var(&referenceTempo, "reference-tempo", 0, "grid tempo for the search strategy")
	convertCmd.Flags().StringVarP(&convertOut, "output", "o", "", "write the rendering to a file instead of stdout")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <score.yaml>",
	Short: "quantize a score file and print the notated voice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := scorefile.Load(args[0])
		if err != nil {
			return err
		}
		v, err := assemble(f)
		if err != nil {
			return err
		}

		rendering := v.String()
		if convertOut == "" {
			fmt.Fprintln(cmd.OutOrStdout(), rendering)
			return nil
		}
		return os.WriteFile(convertOut, []byte(rendering+"\n"), 0644)
	},
}

// assemble builds the pipeline the flags describe and runs it.
func assemble(f *scorefile.File) (*tree.Voice, error) {
	q, err := buildQuantizer(f)
	if err != nil {
		return nil, err
	}
	var opts []voice.Option
	if f.Tempo != nil {
		opts = append(opts, voice.WithTempo(f.Tempo))
	}
	return voice.NewAssembler(q, opts...).Assemble(f.Events)
}

func buildQuantizer(f *scorefile.File) (quantize.Quantizer, error) {
	var q quantize.Quantizer
	var err error
	switch strategy {
	case "direct":
		opts := []quantize.DirectOption{quantize.WithMaxDots(maxDots)}
		if noBeams {
			opts = append(opts, quantize.WithoutBeams())
		}
		q, err = quantize.NewDirectQuantizer(f.TimeSignatures, opts...)
	case "search":
		var opts []quantize.SearchOption
		if referenceTempo > 0 {
			opts = append(opts, quantize.WithReferenceTempo(referenceTempo))
		}
		q, err = quantize.NewSearchQuantizer(f.TimeSignatures, opts...)
	default:
		return nil, faults.Configf("unknown strategy %q", strategy)
	}
	if err != nil {
		return nil, err
	}
	if durationLines {
		q = quantize.WithDurationLines(q)
	}
	return q, nil
}
