// Package tree holds the notated result of quantization: a voice of bars
// whose children are leaves and (possibly nested) tuplets. Annotation never
// re-times the tree; it only attaches marks to leaves or replaces leaves in
// place.
package tree

import (
	"math/big"

	"github.com/robmorgan/notate/score"
)

// Mark is one opaque typesetting action bound to a leaf, e.g.
// {"articulation", "staccato"} or {"dynamic", "mf"}. Backends interpret the
// names; the pipeline only records them.
type Mark struct {
	Name  string
	Value string
}

// Node is a bar child: either a *Leaf or a *Tuplet.
type Node interface {
	// Duration is the sounding duration in whole notes, prolation applied.
	Duration() *big.Rat
}

// Leaf is a single notated duration: a note, chord, rest, invisible spacer
// or multi-measure rest.
type Leaf struct {
	// Written is the notated duration in whole notes, before any enclosing
	// tuplet prolation.
	Written *big.Rat
	// Pitches is empty for rests and spacers.
	Pitches []score.Pitch
	// Tie connects the leaf to the next sounding leaf.
	Tie   bool
	Marks []Mark
	// MultiMeasure renders the leaf as a full-bar multi-measure rest.
	MultiMeasure bool
	// Spacer renders the leaf as invisible filler.
	Spacer bool
}

// NewNote builds a sounding leaf.
func NewNote(written *big.Rat, pitches ...score.Pitch) *Leaf {
	return &Leaf{Written: written, Pitches: pitches}
}

// NewRest builds a silent leaf.
func NewRest(written *big.Rat) *Leaf {
	return &Leaf{Written: written}
}

func (l *Leaf) Duration() *big.Rat {
	return new(big.Rat).Set(l.Written)
}

// IsRest is true for silent leaves. Spacers are not rests: they occupy time
// without being typeset.
func (l *Leaf) IsRest() bool {
	return len(l.Pitches) == 0 && !l.Spacer
}

// Attach appends a mark to the leaf.
func (l *Leaf) Attach(m Mark) {
	l.Marks = append(l.Marks, m)
}

// Detach removes every mark with the given name and reports whether any was
// removed.
func (l *Leaf) Detach(name string) bool {
	kept := l.Marks[:0]
	removed := false
	for _, m := range l.Marks {
		if m.Name == name {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	l.Marks = kept
	return removed
}

// FindMark returns the first mark with the given name.
func (l *Leaf) FindMark(name string) (Mark, bool) {
	for _, m := range l.Marks {
		if m.Name == name {
			return m, true
		}
	}
	return Mark{}, false
}

// HasMark reports whether any mark with the given name is attached.
func (l *Leaf) HasMark(name string) bool {
	_, ok := l.FindMark(name)
	return ok
}

// Clone copies the leaf, its pitches and its marks.
func (l *Leaf) Clone() *Leaf {
	out := &Leaf{
		Written:      new(big.Rat).Set(l.Written),
		Tie:          l.Tie,
		MultiMeasure: l.MultiMeasure,
		Spacer:       l.Spacer,
	}
	out.Pitches = append(out.Pitches, l.Pitches...)
	out.Marks = append(out.Marks, l.Marks...)
	return out
}

// Tuplet scales the written durations of its children: sounding duration =
// written duration × Prolation. A triplet has prolation 2/3.
type Tuplet struct {
	Prolation *big.Rat
	Children  []Node
}

func (t *Tuplet) Duration() *big.Rat {
	sum := new(big.Rat)
	for _, child := range t.Children {
		sum.Add(sum, child.Duration())
	}
	return sum.Mul(sum, t.Prolation)
}

// Bar is one measure.
type Bar struct {
	Signature score.TimeSignature
	Children  []Node
}

// ContentDuration sums the sounding durations of the bar's children.
func (b *Bar) ContentDuration() *big.Rat {
	sum := new(big.Rat)
	for _, child := range b.Children {
		sum.Add(sum, child.Duration())
	}
	return sum
}

// Voice is an ordered sequence of bars. Voice-level marks apply to the
// whole voice (e.g. glyph suppression in duration-line notation).
type Voice struct {
	Bars  []*Bar
	Marks []Mark
}
