package quantize

import (
	"math/big"

	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tree"
)

// segment is the slice of one input event that falls into the span
// currently being rewritten. Offsets are absolute, in whole notes (or in
// the local written domain inside a tuplet).
type segment struct {
	event   int // -1 for final-bar padding
	start   *big.Rat
	end     *big.Rat
	rest    bool
	pitches []score.Pitch
	// cut marks a segment whose end was clipped by the enclosing span, so
	// the underlying event keeps sounding beyond it. cutStart marks a
	// clipped beginning: the event attacked before the span.
	cut      bool
	cutStart bool
}

// leafMeta records placement data for top-level bar leaves, used by the
// beaming pass.
type leafMeta struct {
	leaf   *tree.Leaf
	start  *big.Rat
	end    *big.Rat
	rest   bool
	attack bool
}

// emitter builds one container's (bar or tuplet) child list left to right,
// merging adjacent pieces of the same segment back together whenever the
// merged value stays notatable and metrically aligned.
type emitter struct {
	nodes   []tree.Node
	maxDots int
	attacks map[*tree.Leaf]int

	cursor   *big.Rat // written offset after the last node
	lastLeaf *tree.Leaf
	lastSeg  *segment
	lastOff  *big.Rat // written offset of lastLeaf

	// bar-level only: sounding offset bookkeeping for beaming
	meta    *[]leafMeta
	barBase *big.Rat
}

func newEmitter(maxDots int, attacks map[*tree.Leaf]int) *emitter {
	return &emitter{
		maxDots: maxDots,
		attacks: attacks,
		cursor:  new(big.Rat),
	}
}

// leaf emits one written duration for seg. attack marks the piece that
// carries the event's onset; tie connects a non-final piece to its
// successor.
func (e *emitter) leaf(seg *segment, written *big.Rat, tie, attack bool) {
	if e.lastLeaf != nil && e.lastSeg == seg && len(e.nodes) > 0 {
		merged := new(big.Rat).Add(e.lastLeaf.Written, written)
		if notatable(merged, e.maxDots) && aligned(e.lastOff, merged) {
			e.lastLeaf.Written = merged
			e.lastLeaf.Tie = tie
			e.cursor = new(big.Rat).Add(e.cursor, written)
			if e.meta != nil {
				last := &(*e.meta)[len(*e.meta)-1]
				last.end = new(big.Rat).Add(last.end, written)
			}
			return
		}
	}
	l := &tree.Leaf{Written: new(big.Rat).Set(written)}
	if !seg.rest {
		l.Tie = tie
		l.Pitches = append(l.Pitches, seg.pitches...)
	}
	if attack && seg.event >= 0 {
		e.attacks[l] = seg.event
	}
	if e.meta != nil {
		start := new(big.Rat).Add(e.barBase, e.cursor)
		*e.meta = append(*e.meta, leafMeta{
			leaf:   l,
			start:  start,
			end:    new(big.Rat).Add(start, written),
			rest:   seg.rest,
			attack: attack && !seg.rest,
		})
	}
	e.lastLeaf = l
	e.lastSeg = seg
	e.lastOff = new(big.Rat).Set(e.cursor)
	e.cursor = new(big.Rat).Add(e.cursor, written)
	e.nodes = append(e.nodes, l)
}

// piece emits the [lo, hi) slice of seg as one leaf. The piece carrying the
// segment's own start is the attack; a clipped or non-final piece of a
// sounding segment ties forward.
func (e *emitter) piece(s *segment, lo, hi *big.Rat) {
	written := new(big.Rat).Sub(hi, lo)
	tie := !s.rest && (hi.Cmp(s.end) < 0 || (hi.Cmp(s.end) == 0 && s.cut))
	attack := lo.Cmp(s.start) == 0 && !s.cutStart
	e.leaf(s, written, tie, attack)
}

// transformSegments clips the segments to [lo, hi) and rescales them into a
// tuplet's written domain starting at zero.
func transformSegments(segs []*segment, lo, hi, scale *big.Rat) []*segment {
	var out []*segment
	for _, s := range segs {
		cs, ce := s.start, s.end
		cutStart := s.cutStart
		cut := s.cut
		if cs.Cmp(lo) < 0 {
			cs = lo
			cutStart = true
		}
		if ce.Cmp(hi) > 0 {
			ce = hi
			cut = true
		}
		start := new(big.Rat).Sub(cs, lo)
		start.Mul(start, scale)
		end := new(big.Rat).Sub(ce, lo)
		end.Mul(end, scale)
		out = append(out, &segment{
			event:    s.event,
			start:    start,
			end:      end,
			rest:     s.rest,
			pitches:  s.pitches,
			cut:      cut,
			cutStart: cutStart,
		})
	}
	return out
}

// tuplet opens a nested container with the given prolation, lets build fill
// it, and appends it. writtenTotal is the tuplet's inner written length.
func (e *emitter) tuplet(prolation, writtenTotal *big.Rat, build func(child *emitter)) {
	child := newEmitter(e.maxDots, e.attacks)
	build(child)
	t := &tree.Tuplet{Prolation: new(big.Rat).Set(prolation), Children: child.nodes}
	e.nodes = append(e.nodes, t)
	sounding := new(big.Rat).Mul(writtenTotal, prolation)
	e.cursor = new(big.Rat).Add(e.cursor, sounding)
	// merging never reaches across a tuplet boundary
	e.lastLeaf = nil
	e.lastSeg = nil
}
