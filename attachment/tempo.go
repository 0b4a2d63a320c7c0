package attachment

import (
	"fmt"
	"math/big"

	"github.com/robmorgan/notate/tree"
)

// Tempo is one tempo annotation: an optional printed metronome mark plus an
// optional "acc."/"rit." change-span opening. Produced by the tempo
// annotator, never directly from event markers.
type Tempo struct {
	noToggle
	// ReferenceDuration is the written duration one unit refers to,
	// usually 1/4. Nil when no numeric mark is printed.
	ReferenceDuration *big.Rat
	UnitsPerMinute    float64
	// UnitsRange prints "low-high" instead of a single value when both
	// bounds are set.
	UnitsRange [2]float64
	// Textual is a verbal indication such as "a tempo".
	Textual string
	// ChangeIndication opens a gradual tempo change span ("acc." or
	// "rit.").
	ChangeIndication string
	// StopChange asks for the running change span to be closed one leaf
	// before this mark.
	StopChange bool
	// PrintMark is false when the mark repeats the previous tempo and is
	// elided.
	PrintMark bool
}

func (a Tempo) Kind() string   { return "tempo" }
func (a Tempo) Policy() Policy { return BangFirst }
func (a Tempo) Active() bool   { return true }

// MarkText renders the printed metronome mark.
func (a Tempo) MarkText() string {
	var numeric string
	if a.ReferenceDuration != nil {
		if a.UnitsRange[0] > 0 && a.UnitsRange[1] > a.UnitsRange[0] {
			numeric = fmt.Sprintf("%s=%g-%g", tree.WrittenName(a.ReferenceDuration), a.UnitsRange[0], a.UnitsRange[1])
		} else {
			numeric = fmt.Sprintf("%s=%g", tree.WrittenName(a.ReferenceDuration), a.UnitsPerMinute)
		}
	}
	switch {
	case a.Textual != "" && numeric != "":
		return a.Textual + " " + numeric
	case a.Textual != "":
		return a.Textual
	default:
		return numeric
	}
}

func (a Tempo) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	if a.ChangeIndication != "" {
		leaf.Attach(tree.Mark{Name: "tempo-change-start", Value: a.ChangeIndication})
	}
	if a.PrintMark {
		leaf.Attach(tree.Mark{Name: "metronome-mark", Value: a.MarkText()})
	}
	return leaf
}

// TempoSpanStop closes a running tempo-change span. The annotator binds it
// one leaf before the tempo mark that ends the span.
type TempoSpanStop struct {
	noToggle
}

func (a TempoSpanStop) Kind() string   { return "tempo-stop" }
func (a TempoSpanStop) Policy() Policy { return BangFirst }
func (a TempoSpanStop) Active() bool   { return true }
func (a TempoSpanStop) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "tempo-change-stop"})
	return leaf
}
