package quantize

import (
	"math"
	"math/big"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/robmorgan/notate/faults"
	"github.com/robmorgan/notate/logger"
	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tree"
	"github.com/robmorgan/notate/utils"
)

// SearchTree describes the subdivisions a beat may be cut into. Keys are
// division counts; a non-nil child tree allows the resulting cells to be
// subdivided further, which is where nested tuplets come from.
type SearchTree map[int]SearchTree

// DefaultSearchTree divides beats in twos down to sixteenth resolution and
// allows triplets, quintuplets and septuplets.
func DefaultSearchTree() SearchTree {
	return SearchTree{
		2: {2: {2: nil}},
		3: {2: {2: nil}},
		5: {2: nil},
		7: nil,
	}
}

// SearchQuantizer snaps event attacks onto the best-scoring subdivision
// grid of every beat. Attack times are read at a reference tempo (quarter =
// 60 by default), so one duration unit is one quarter note on the page.
// Events spanning grid cells are split and tied, including across tuplet
// boundaries.
type SearchQuantizer struct {
	signatures []score.TimeSignature
	search     SearchTree
	tempo      float64
	maxDots    int
}

// SearchOption adjusts a SearchQuantizer.
type SearchOption func(*SearchQuantizer)

// WithSearchTree replaces the default subdivision search tree.
func WithSearchTree(st SearchTree) SearchOption {
	return func(q *SearchQuantizer) { q.search = st }
}

// WithReferenceTempo reads attack times at the given quarter-note BPM
// instead of 60.
func WithReferenceTempo(bpm float64) SearchOption {
	return func(q *SearchQuantizer) { q.tempo = bpm }
}

// NewSearchQuantizer builds the quantizer for a time-signature list.
func NewSearchQuantizer(signatures []score.TimeSignature, opts ...SearchOption) (*SearchQuantizer, error) {
	if err := validateSignatures(signatures); err != nil {
		return nil, err
	}
	q := &SearchQuantizer{
		signatures: append([]score.TimeSignature(nil), signatures...),
		search:     DefaultSearchTree(),
		tempo:      60,
		maxDots:    1,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.tempo <= 0 {
		return nil, faults.Configf("non-positive reference tempo %v", q.tempo)
	}
	if len(q.search) == 0 {
		return nil, faults.Configf("empty search tree")
	}
	for d := range q.search {
		if d < 2 {
			return nil, faults.Configf("search tree division %d is not a subdivision", d)
		}
	}
	return q, nil
}

// plan is one chosen subdivision of a span: division 1 is an undivided
// cell, anything larger has one child plan per cell.
type plan struct {
	division int
	children []*plan
	cost     float64
}

// subdivisionPenalty is the cost of each extra cell per whole note of
// span, biasing the search toward simpler grids.
const subdivisionPenalty = 0.05

func searchSpan(lo, hi float64, onsets []float64, st SearchTree) *plan {
	best := &plan{division: 1, cost: atomicCost(lo, hi, onsets)}
	divisions := make([]int, 0, len(st))
	for d := range st {
		divisions = append(divisions, d)
	}
	slices.Sort(divisions)
	for _, d := range divisions {
		child := st[d]
		cell := (hi - lo) / float64(d)
		cost := float64(d-1) * (hi - lo) * subdivisionPenalty
		children := make([]*plan, d)
		for i := 0; i < d; i++ {
			cellLo := lo + float64(i)*cell
			cellHi := cellLo + cell
			cellOnsets := onsetsWithin(onsets, cellLo, cellHi)
			if child == nil {
				children[i] = &plan{division: 1, cost: atomicCost(cellLo, cellHi, cellOnsets)}
			} else {
				children[i] = searchSpan(cellLo, cellHi, cellOnsets, child)
			}
			cost += children[i].cost
		}
		if cost < best.cost {
			best = &plan{division: d, children: children, cost: cost}
		}
	}
	return best
}

func atomicCost(lo, hi float64, onsets []float64) float64 {
	cost := 0.0
	for _, o := range onsets {
		cost += math.Min(o-lo, hi-o)
	}
	return cost
}

func onsetsWithin(onsets []float64, lo, hi float64) []float64 {
	var out []float64
	for _, o := range onsets {
		if o >= lo && o < hi {
			out = append(out, o)
		}
	}
	return out
}

// gridPoints appends the span start plus every interior cell boundary of
// the plan, in order. The span end belongs to the following span.
func gridPoints(lo, hi *big.Rat, p *plan, out *[]*big.Rat) {
	*out = append(*out, new(big.Rat).Set(lo))
	interiorPoints(lo, hi, p, out)
}

func interiorPoints(lo, hi *big.Rat, p *plan, out *[]*big.Rat) {
	if p.division <= 1 {
		return
	}
	span := new(big.Rat).Sub(hi, lo)
	cell := new(big.Rat).Quo(span, big.NewRat(int64(p.division), 1))
	cellLo := new(big.Rat).Set(lo)
	for i := 0; i < p.division; i++ {
		cellHi := new(big.Rat).Add(cellLo, cell)
		if i > 0 {
			*out = append(*out, new(big.Rat).Set(cellLo))
		}
		interiorPoints(cellLo, cellHi, p.children[i], out)
		cellLo = cellHi
	}
}

// Quantize implements Quantizer.
func (q *SearchQuantizer) Quantize(events []score.Event) (*tree.Voice, EventMap, error) {
	if err := validateDurations(events); err != nil {
		return nil, nil, err
	}
	log := logger.GetProjectLogger()

	// attack onsets in whole notes, read at the reference tempo
	tempoScale := new(big.Rat).SetFloat64(60 / q.tempo)
	type attack struct {
		event int
		onset *big.Rat
		until *big.Rat
	}
	var attacksIn []attack
	cursor := new(big.Rat)
	for i, e := range events {
		d := wholeDuration(e.Duration)
		d.Mul(d, tempoScale)
		if d.Sign() == 0 {
			continue
		}
		end := new(big.Rat).Add(cursor, d)
		attacksIn = append(attacksIn, attack{event: i, onset: cursor, until: end})
		cursor = end
	}
	total := cursor

	bars := barsCovering(q.signatures, total)

	// choose one subdivision plan per beat and gather the global grid
	type beatPlan struct {
		lo, hi *big.Rat
		plan   *plan
	}
	var beats [][]beatPlan
	var grid []*big.Rat
	onsetFloats := make([]float64, len(attacksIn))
	for i, a := range attacksIn {
		onsetFloats[i] = utils.RatFloat(a.onset)
	}
	barLo := new(big.Rat)
	for _, ts := range bars {
		barHi := new(big.Rat).Add(barLo, ts.Duration())
		beatDur := big.NewRat(1, int64(ts.Denominator))
		var barBeats []beatPlan
		beatLo := new(big.Rat).Set(barLo)
		for b := 0; b < ts.Numerator; b++ {
			beatHi := new(big.Rat).Add(beatLo, beatDur)
			onsets := onsetsWithin(onsetFloats, utils.RatFloat(beatLo), utils.RatFloat(beatHi))
			p := searchSpan(utils.RatFloat(beatLo), utils.RatFloat(beatHi), onsets, q.search)
			barBeats = append(barBeats, beatPlan{lo: beatLo, hi: beatHi, plan: p})
			gridPoints(beatLo, beatHi, p, &grid)
			beatLo = beatHi
		}
		beats = append(beats, barBeats)
		barLo = barHi
	}
	barsEnd := barLo
	grid = append(grid, new(big.Rat).Set(barsEnd))
	gridFloats := make([]float64, len(grid))
	for i, g := range grid {
		gridFloats[i] = utils.RatFloat(g)
	}

	// snap every attack to the nearest grid point, keeping onsets strictly
	// increasing; an attack pushed off the grid loses its event
	var segs []*segment
	prevIdx := -1
	for n, a := range attacksIn {
		idx := utils.FindClosestIndex(onsetFloats[n], gridFloats)
		if idx <= prevIdx {
			idx = prevIdx + 1
		}
		if idx >= len(grid) {
			log.WithFields(logrus.Fields{
				"event": a.event,
				"onset": a.onset.RatString(),
			}).Warn("attack collides beyond the grid, dropping event")
			continue
		}
		e := events[a.event]
		segs = append(segs, &segment{
			event:   a.event,
			start:   grid[idx],
			rest:    e.IsRest(),
			pitches: e.Pitches,
		})
		prevIdx = idx
	}
	for n := range segs {
		if n+1 < len(segs) {
			segs[n].end = segs[n+1].start
		}
	}
	// the last event ends on the grid point closest to its natural end
	if len(segs) > 0 {
		last := segs[len(segs)-1]
		natural := total
		for _, a := range attacksIn {
			if a.event == last.event {
				natural = a.until
			}
		}
		idx := utils.FindClosestIndex(utils.RatFloat(natural), gridFloats)
		for idx < len(grid) && grid[idx].Cmp(last.start) <= 0 {
			idx++
		}
		if idx < len(grid) {
			last.end = grid[idx]
		} else {
			last.end = barsEnd
		}
		if last.end.Cmp(barsEnd) < 0 {
			segs = append(segs, &segment{event: -1, start: last.end, end: barsEnd, rest: true})
		}
	} else {
		segs = append(segs, &segment{event: -1, start: new(big.Rat), end: barsEnd, rest: true})
	}

	voice := &tree.Voice{}
	attacks := make(map[*tree.Leaf]int)
	for barIndex, ts := range bars {
		e := newEmitter(q.maxDots, attacks)
		for _, bp := range beats[barIndex] {
			q.buildPlan(e, overlapping(segs, bp.lo, bp.hi), bp.lo, bp.hi, bp.plan)
		}
		bar := &tree.Bar{Signature: ts, Children: e.nodes}
		mergeAdjacentTuplets(bar)
		voice.Bars = append(voice.Bars, bar)
	}

	if err := voice.Check(); err != nil {
		return nil, nil, err
	}
	return voice, recoverAttacks(voice, attacks, len(events)), nil
}

// buildPlan renders one span of the chosen plan. Undivided cells hold at
// most one sounding segment because every attack sits on a cell boundary.
func (q *SearchQuantizer) buildPlan(e *emitter, segs []*segment, lo, hi *big.Rat, p *plan) {
	if p.division <= 1 {
		s := covering(segs, lo, hi)
		if s == nil {
			s = &segment{event: -1, start: lo, end: hi, rest: true}
		}
		e.piece(s, lo, hi)
		return
	}

	d := p.division
	m := oddPart(d)
	if m > 1 {
		pw := floorPow2(m)
		prolation := big.NewRat(int64(pw), int64(m))
		scale := big.NewRat(int64(m), int64(pw))
		span := new(big.Rat).Sub(hi, lo)
		writtenTotal := new(big.Rat).Mul(span, scale)
		inner := transformSegments(segs, lo, hi, scale)
		e.tuplet(prolation, writtenTotal, func(child *emitter) {
			cell := new(big.Rat).Quo(writtenTotal, big.NewRat(int64(d), 1))
			cellLo := new(big.Rat)
			for i := 0; i < d; i++ {
				cellHi := new(big.Rat).Add(cellLo, cell)
				q.buildPlan(child, overlapping(inner, cellLo, cellHi), cellLo, cellHi, p.children[i])
				cellLo = cellHi
			}
		})
		return
	}

	span := new(big.Rat).Sub(hi, lo)
	cell := new(big.Rat).Quo(span, big.NewRat(int64(d), 1))
	cellLo := new(big.Rat).Set(lo)
	for i := 0; i < d; i++ {
		cellHi := new(big.Rat).Add(cellLo, cell)
		q.buildPlan(e, overlapping(segs, cellLo, cellHi), cellLo, cellHi, p.children[i])
		cellLo = cellHi
	}
}
