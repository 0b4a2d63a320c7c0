// Package quantize turns free-timed sequential events into a notated tree.
// Two strategies are provided: DirectQuantizer keeps the events' exact
// rational durations and rewrites them against the meter, SearchQuantizer
// snaps attack points onto the best-scoring subdivision grid of each bar.
// Both report which leaves each input event ended up in.
package quantize

import (
	"math/big"

	"github.com/robmorgan/notate/faults"
	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tree"
)

// EventMap records, per input event, the ordered leaf paths the event was
// notated into. Zero-duration events keep an empty path list.
type EventMap [][]tree.Path

// Quantizer converts a sequential event list into a voice of bars.
type Quantizer interface {
	Quantize(events []score.Event) (*tree.Voice, EventMap, error)
}

// event durations are counted in beats, tree durations in whole notes
var beatsPerWhole = big.NewRat(4, 1)

func validateSignatures(signatures []score.TimeSignature) error {
	if len(signatures) == 0 {
		return faults.Configf("time signature list is empty")
	}
	for _, ts := range signatures {
		if ts.Numerator <= 0 || ts.Denominator <= 0 {
			return faults.Configf("degenerate time signature %s", ts)
		}
		// the meter rewrite only terminates on dyadic bar durations
		if ts.Denominator&(ts.Denominator-1) != 0 {
			return faults.Configf("time signature %s has a non-power-of-two denominator", ts)
		}
	}
	return nil
}

func validateDurations(events []score.Event) error {
	for i, e := range events {
		if e.Duration == nil || e.Duration.Sign() < 0 {
			return faults.Configf("event %d has no valid duration", i)
		}
	}
	return nil
}

// wholeDuration converts a beat-counted event duration to whole notes.
func wholeDuration(beats *big.Rat) *big.Rat {
	return new(big.Rat).Quo(beats, beatsPerWhole)
}

// barsCovering consumes the signature list in order until the bars cover at
// least the total duration (in whole notes); once the list is exhausted the
// last signature repeats for the remaining bars. At least one bar is always
// produced.
func barsCovering(signatures []score.TimeSignature, total *big.Rat) []score.TimeSignature {
	var bars []score.TimeSignature
	covered := new(big.Rat)
	for i := 0; covered.Cmp(total) < 0 || i == 0; i++ {
		idx := i
		if idx >= len(signatures) {
			idx = len(signatures) - 1
		}
		ts := signatures[idx]
		bars = append(bars, ts)
		covered.Add(covered, ts.Duration())
	}
	return bars
}

// oddPart strips every factor of two from n.
func oddPart(n int) int {
	for n%2 == 0 {
		n /= 2
	}
	return n
}

// floorPow2 returns the largest power of two not greater than n.
func floorPow2(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// notatable reports whether a written duration can be drawn as a single
// note with at most maxDots dots.
func notatable(d *big.Rat, maxDots int) bool {
	if d.Sign() <= 0 {
		return false
	}
	den := d.Denom().Int64()
	if den&(den-1) != 0 {
		return false
	}
	// the odd part of num must read 0b1, 0b11, 0b111, ... with at most
	// maxDots+1 bits; the stripped power of two only scales the glyph
	num := int64(oddPart(int(d.Num().Int64())))
	for dots := 0; dots <= maxDots; dots++ {
		if num == int64(1)<<(dots+1)-1 {
			// nothing longer than a breve
			return d.Cmp(big.NewRat(2, 1)) <= 0
		}
	}
	return false
}

// aligned reports whether offset is an integer multiple of duration.
func aligned(offset, duration *big.Rat) bool {
	if offset.Sign() == 0 {
		return true
	}
	return new(big.Rat).Quo(offset, duration).IsInt()
}

