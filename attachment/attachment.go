// Package attachment binds event markers to leaves of the quantized tree.
// Every attachment kind carries one of four activation policies that
// decides which of an event's leaves receive it, and toggled kinds track
// the previously applied attachment so unchanged values are not repeated.
package attachment

import (
	"github.com/robmorgan/notate/tree"
)

// Policy is an activation policy.
type Policy int

const (
	// Toggle applies to the first leaf, but only when the value differs
	// from the previously applied attachment of the same kind.
	Toggle Policy = iota
	// BangEach applies to every leaf of the event.
	BangEach
	// BangFirst applies to the first leaf only.
	BangFirst
	// BangLast applies to the last leaf only.
	BangLast
)

// Attachment is one marker bound to an event, ready to be applied to the
// event's leaves.
type Attachment interface {
	// Kind names the attachment family; at most one attachment per kind is
	// applied per event.
	Kind() string
	Policy() Policy
	Active() bool
	// Equal reports whether applying the attachment after other would be
	// redundant. Only consulted for Toggle kinds.
	Equal(other Attachment) bool
	// SuppressAtStart reports whether the value matches the implicit
	// voice-start default, so the first occurrence stays silent.
	SuppressAtStart() bool
	// Apply decorates the leaf, or returns a replacement for it. prev is
	// the previously applied attachment of the same kind, possibly nil.
	Apply(leaf *tree.Leaf, prev Attachment) *tree.Leaf
}

// Kinds fixes the order attachment kinds are applied in. The order is
// declared statically: annotation runs one kind at a time over the whole
// voice, left to right.
var Kinds = []string{
	"clef",
	"ottava",
	"margin-markup",
	"rehearsal-mark",
	"dynamic",
	"hairpin",
	"arpeggio",
	"articulation",
	"artificial-harmonic",
	"natural-harmonic",
	"bartok-pizzicato",
	"string-contact-point",
	"pedal",
	"tremolo",
	"ornamentation",
	"prall",
	"fermata",
	"markup",
	"laissez-vibrer",
	"tie",
	"bar-line",
}

// Annotate applies att to the event's leaves according to its policy and
// reports whether it was applied (and should become the new "previous"
// attachment of its kind).
func Annotate(v *tree.Voice, paths []tree.Path, att, prev Attachment) (bool, error) {
	if att == nil || !att.Active() || len(paths) == 0 {
		return false, nil
	}
	switch att.Policy() {
	case Toggle:
		if prev != nil {
			if att.Equal(prev) {
				return true, nil
			}
		} else if att.SuppressAtStart() {
			return true, nil
		}
		return true, applyAt(v, paths[0], att, prev)
	case BangEach:
		for _, p := range paths {
			if err := applyAt(v, p, att, prev); err != nil {
				return false, err
			}
		}
		return true, nil
	case BangFirst:
		return true, applyAt(v, paths[0], att, prev)
	case BangLast:
		return true, applyAt(v, paths[len(paths)-1], att, prev)
	}
	return false, nil
}

func applyAt(v *tree.Voice, p tree.Path, att, prev Attachment) error {
	leaf, err := v.LeafAt(p)
	if err != nil {
		return err
	}
	if replacement := att.Apply(leaf, prev); replacement != leaf {
		return v.Replace(p, replacement)
	}
	return nil
}
