package quantize

import (
	"github.com/robmorgan/notate/faults"
	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tree"
)

// groupTieAdjacent walks the leaves left to right and groups them the way
// the direct strategy relates leaves back to events: a new group starts
// unless the previous leaf carried a tie, or both the previous and the
// current leaf are rests. A leaf carrying an event's attack always opens a
// new group, so adjacent rest events stay separate while padding rests
// (which attack nothing) still merge into the preceding rest group.
func groupTieAdjacent(v *tree.Voice, attacks map[*tree.Leaf]int) [][]tree.Path {
	var groups [][]tree.Path
	var prev *tree.Leaf
	v.Walk(func(p tree.Path, l *tree.Leaf) {
		_, attacked := attacks[l]
		continues := !attacked && prev != nil && (prev.Tie || (prev.IsRest() && l.IsRest()))
		if !continues {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], p)
		prev = l
	})
	return groups
}

// assignGroups hands the leaf groups to the input events in order.
// Zero-duration events keep empty path lists; a trailing group made of
// final-bar padding rests stays unassigned.
func assignGroups(groups [][]tree.Path, events []score.Event) (EventMap, error) {
	m := make(EventMap, len(events))
	g := 0
	for i, e := range events {
		if e.Duration == nil || e.Duration.Sign() == 0 {
			continue
		}
		if g >= len(groups) {
			return nil, faults.Invariantf("event %d has no notated leaves", i)
		}
		m[i] = groups[g]
		g++
	}
	return m, nil
}

// recoverAttacks rebuilds the event map of the search strategy by walking
// the leaves in order while carrying the previous attack index and the
// previous leaf's tie flag. A leaf with an attack starts (or restarts) its
// event's path list; a tied-to leaf continues the previous attack's event;
// a leaf with neither is silently dropped.
func recoverAttacks(v *tree.Voice, attacks map[*tree.Leaf]int, eventCount int) EventMap {
	m := make(EventMap, eventCount)
	prev := -1
	tied := false
	v.Walk(func(p tree.Path, l *tree.Leaf) {
		if idx, ok := attacks[l]; ok {
			m[idx] = append(m[idx], p)
			prev = idx
		} else if tied && prev >= 0 {
			m[prev] = append(m[prev], p)
		}
		tied = l.Tie
	})
	return m
}
