package quantize

import (
	"math/big"

	"github.com/robmorgan/notate/faults"
	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tree"
)

// DirectQuantizer notates each event with its exact rational duration.
// Events are cut at bar boundaries (the last time signature repeats once
// the list is exhausted), rewritten
// against the meter with a bounded dot count, and wrapped in tuplets where
// their durations demand an odd subdivision. The final bar is padded with
// rests.
type DirectQuantizer struct {
	signatures []score.TimeSignature
	maxDots    int
	beams      bool
}

// DirectOption adjusts a DirectQuantizer.
type DirectOption func(*DirectQuantizer)

// WithMaxDots bounds the number of augmentation dots a single leaf may
// carry. The default is 1.
func WithMaxDots(n int) DirectOption {
	return func(q *DirectQuantizer) { q.maxDots = n }
}

// WithoutBeams disables the explicit beaming pass.
func WithoutBeams() DirectOption {
	return func(q *DirectQuantizer) { q.beams = false }
}

// NewDirectQuantizer builds the quantizer for a time-signature list.
func NewDirectQuantizer(signatures []score.TimeSignature, opts ...DirectOption) (*DirectQuantizer, error) {
	if err := validateSignatures(signatures); err != nil {
		return nil, err
	}
	q := &DirectQuantizer{
		signatures: append([]score.TimeSignature(nil), signatures...),
		maxDots:    1,
		beams:      true,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.maxDots < 0 {
		return nil, faults.Configf("negative dot count %d", q.maxDots)
	}
	return q, nil
}

// Quantize implements Quantizer.
func (q *DirectQuantizer) Quantize(events []score.Event) (*tree.Voice, EventMap, error) {
	if err := validateDurations(events); err != nil {
		return nil, nil, err
	}

	// one segment per sounding slice of the timeline, in whole notes
	var segs []*segment
	cursor := new(big.Rat)
	for i, e := range events {
		d := wholeDuration(e.Duration)
		if d.Sign() == 0 {
			continue
		}
		end := new(big.Rat).Add(cursor, d)
		segs = append(segs, &segment{
			event:   i,
			start:   cursor,
			end:     end,
			rest:    e.IsRest(),
			pitches: e.Pitches,
		})
		cursor = end
	}
	total := cursor

	bars := barsCovering(q.signatures, total)
	barsEnd := new(big.Rat)
	for _, ts := range bars {
		barsEnd.Add(barsEnd, ts.Duration())
	}
	if barsEnd.Cmp(total) > 0 {
		segs = append(segs, &segment{event: -1, start: total, end: barsEnd, rest: true})
	}

	voice := &tree.Voice{}
	attacks := make(map[*tree.Leaf]int)
	barStart := new(big.Rat)
	for _, ts := range bars {
		barEnd := new(big.Rat).Add(barStart, ts.Duration())
		e := newEmitter(q.maxDots, attacks)
		var metas []leafMeta
		e.meta = &metas
		e.barBase = barStart
		if err := q.rewriteSpan(e, overlapping(segs, barStart, barEnd), barStart, barEnd, ts.Numerator); err != nil {
			return nil, nil, err
		}
		bar := &tree.Bar{Signature: ts, Children: e.nodes}
		mergeAdjacentTuplets(bar)
		if q.beams {
			beamBar(bar, metas, barStart, barEnd)
		}
		voice.Bars = append(voice.Bars, bar)
		barStart = barEnd
	}

	if err := voice.Check(); err != nil {
		return nil, nil, err
	}

	m, err := assignGroups(groupTieAdjacent(voice, attacks), events)
	if err != nil {
		return nil, nil, err
	}
	return voice, m, nil
}

func overlapping(segs []*segment, lo, hi *big.Rat) []*segment {
	var out []*segment
	for _, s := range segs {
		if s.start.Cmp(hi) < 0 && s.end.Cmp(lo) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// covering returns the single segment spanning all of [lo, hi), if any.
func covering(segs []*segment, lo, hi *big.Rat) *segment {
	for _, s := range segs {
		if s.start.Cmp(lo) <= 0 && s.end.Cmp(hi) >= 0 {
			return s
		}
	}
	return nil
}

// rewriteSpan notates [lo, hi), a span of nBeats equal beats, against the
// metric hierarchy: whole covered spans become single leaves when their
// duration is notatable, otherwise the span splits into halves (or single
// beats for odd counts) and recurses. A beat whose interior boundaries need
// an odd subdivision is wrapped in a tuplet and rewritten in its written
// domain.
func (q *DirectQuantizer) rewriteSpan(e *emitter, segs []*segment, lo, hi *big.Rat, nBeats int) error {
	if s := covering(segs, lo, hi); s != nil {
		if d := new(big.Rat).Sub(hi, lo); notatable(d, q.maxDots) {
			e.piece(s, lo, hi)
			return nil
		}
	}

	if nBeats > 1 {
		if nBeats%2 == 0 {
			mid := midpoint(lo, hi)
			if err := q.rewriteSpan(e, overlapping(segs, lo, mid), lo, mid, nBeats/2); err != nil {
				return err
			}
			return q.rewriteSpan(e, overlapping(segs, mid, hi), mid, hi, nBeats/2)
		}
		span := new(big.Rat).Sub(hi, lo)
		beat := new(big.Rat).Quo(span, big.NewRat(int64(nBeats), 1))
		beatLo := new(big.Rat).Set(lo)
		for i := 0; i < nBeats; i++ {
			beatHi := new(big.Rat).Add(beatLo, beat)
			if i == nBeats-1 {
				beatHi = new(big.Rat).Set(hi)
			}
			if err := q.rewriteSpan(e, overlapping(segs, beatLo, beatHi), beatLo, beatHi, 1); err != nil {
				return err
			}
			beatLo = beatHi
		}
		return nil
	}

	m, err := tupletFactor(segs, lo, hi)
	if err != nil {
		return err
	}
	if m > 1 {
		return q.rewriteTuplet(e, segs, lo, hi, m)
	}

	mid := midpoint(lo, hi)
	if err := q.rewriteSpan(e, overlapping(segs, lo, mid), lo, mid, 1); err != nil {
		return err
	}
	return q.rewriteSpan(e, overlapping(segs, mid, hi), mid, hi, 1)
}

func midpoint(lo, hi *big.Rat) *big.Rat {
	sum := new(big.Rat).Add(lo, hi)
	return sum.Quo(sum, big.NewRat(2, 1))
}

// tupletFactor returns the odd part of the least common denominator of the
// segment boundaries inside (lo, hi), measured relative to the span.
func tupletFactor(segs []*segment, lo, hi *big.Rat) (int, error) {
	span := new(big.Rat).Sub(hi, lo)
	lcm := big.NewInt(1)
	for _, s := range segs {
		for _, b := range []*big.Rat{s.start, s.end} {
			if b.Cmp(lo) <= 0 || b.Cmp(hi) >= 0 {
				continue
			}
			rel := new(big.Rat).Sub(b, lo)
			rel.Quo(rel, span)
			den := rel.Denom()
			gcd := new(big.Int).GCD(nil, nil, lcm, den)
			lcm.Div(lcm, gcd)
			lcm.Mul(lcm, den)
		}
	}
	if !lcm.IsInt64() || lcm.Int64() > 1024 {
		return 0, faults.Configf("event durations need a finer grid than can be notated")
	}
	return oddPart(int(lcm.Int64())), nil
}

// rewriteTuplet wraps one beat in a tuplet of odd factor m and rewrites its
// contents in the tuplet's written domain, where every boundary is dyadic
// again.
func (q *DirectQuantizer) rewriteTuplet(e *emitter, segs []*segment, lo, hi *big.Rat, m int) error {
	pw := floorPow2(m)
	prolation := big.NewRat(int64(pw), int64(m))
	scale := big.NewRat(int64(m), int64(pw))
	span := new(big.Rat).Sub(hi, lo)
	writtenTotal := new(big.Rat).Mul(span, scale)
	inner := transformSegments(segs, lo, hi, scale)

	var err error
	e.tuplet(prolation, writtenTotal, func(child *emitter) {
		err = q.rewriteSpan(child, inner, new(big.Rat), writtenTotal, m)
	})
	return err
}

// mergeAdjacentTuplets joins horizontally adjacent tuplets that share a
// prolation.
func mergeAdjacentTuplets(bar *tree.Bar) {
	var out []tree.Node
	for _, n := range bar.Children {
		if t, ok := n.(*tree.Tuplet); ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*tree.Tuplet); ok && prev.Prolation.Cmp(t.Prolation) == 0 {
				prev.Children = append(prev.Children, t.Children...)
				continue
			}
		}
		out = append(out, n)
	}
	bar.Children = out
}

// beamBar beams the sub-quarter top-level leaves of every quarter-note span
// that is fully covered by a contiguous run of attacks starting on the
// span.
func beamBar(bar *tree.Bar, metas []leafMeta, barStart, barEnd *big.Rat) {
	quarter := big.NewRat(1, 4)
	spanLo := new(big.Rat).Set(barStart)
	for {
		spanHi := new(big.Rat).Add(spanLo, quarter)
		if spanHi.Cmp(barEnd) > 0 {
			return
		}
		beamSpan(metas, spanLo, spanHi)
		spanLo = spanHi
	}
}

func beamSpan(metas []leafMeta, lo, hi *big.Rat) {
	var run []leafMeta
	for _, m := range metas {
		if m.start.Cmp(lo) >= 0 && m.end.Cmp(hi) <= 0 {
			run = append(run, m)
		}
	}
	if len(run) < 2 {
		return
	}
	if run[0].start.Cmp(lo) != 0 || run[len(run)-1].end.Cmp(hi) != 0 {
		return
	}
	quarter := big.NewRat(1, 4)
	for i, m := range run {
		if !m.attack || m.rest || m.leaf.Written.Cmp(quarter) >= 0 {
			return
		}
		if i > 0 && run[i-1].end.Cmp(m.start) != 0 {
			return
		}
	}
	run[0].leaf.Attach(tree.Mark{Name: "beam-start"})
	run[len(run)-1].leaf.Attach(tree.Mark{Name: "beam-stop"})
}
