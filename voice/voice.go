// Package voice assembles the full conversion pipeline: rest preparation,
// marker extraction, quantization, attachment annotation, tempo marks and
// multi-measure rest consolidation, producing a finished notated voice from
// a free-timed event sequence.
package voice

import (
	"math/big"

	"github.com/robmorgan/notate/attachment"
	"github.com/robmorgan/notate/quantize"
	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tempo"
	"github.com/robmorgan/notate/tree"
	"github.com/robmorgan/notate/utils"
)

// Assembler runs the pipeline against one quantization strategy and one
// tempo curve. Extraction of pitches, volume and markers from events can be
// overridden per field; the defaults read the event's own fields.
type Assembler struct {
	quantizer quantize.Quantizer
	tempo     *tempo.Envelope
	kinds     []string
	pitches   func(score.Event) []score.Pitch
	volume    func(score.Event) score.Volume
	playing   func(score.Event) score.PlayingMarkers
	notation  func(score.Event) score.NotationMarkers
}

// Option adjusts an Assembler.
type Option func(*Assembler)

// WithTempo sets the tempo curve. The default is a constant quarter = 120.
func WithTempo(e *tempo.Envelope) Option {
	return func(a *Assembler) { a.tempo = e }
}

// WithKinds restricts and reorders the attachment kinds the assembler
// applies. The default is the full attachment.Kinds order.
func WithKinds(kinds ...string) Option {
	return func(a *Assembler) { a.kinds = kinds }
}

// WithPitchExtractor overrides where pitches are read from.
func WithPitchExtractor(f func(score.Event) []score.Pitch) Option {
	return func(a *Assembler) { a.pitches = f }
}

// WithVolumeExtractor overrides where the volume is read from.
func WithVolumeExtractor(f func(score.Event) score.Volume) Option {
	return func(a *Assembler) { a.volume = f }
}

// WithPlayingExtractor overrides where playing markers are read from.
func WithPlayingExtractor(f func(score.Event) score.PlayingMarkers) Option {
	return func(a *Assembler) { a.playing = f }
}

// WithNotationExtractor overrides where notation markers are read from.
func WithNotationExtractor(f func(score.Event) score.NotationMarkers) Option {
	return func(a *Assembler) { a.notation = f }
}

// NewAssembler builds an assembler around a quantizer.
func NewAssembler(q quantize.Quantizer, opts ...Option) *Assembler {
	a := &Assembler{
		quantizer: q,
		tempo:     tempo.Constant(120),
		kinds:     attachment.Kinds,
		pitches:   func(e score.Event) []score.Pitch { return e.Pitches },
		volume:    func(e score.Event) score.Volume { return e.Volume },
		playing:   func(e score.Event) score.PlayingMarkers { return e.Playing },
		notation:  func(e score.Event) score.NotationMarkers { return e.Notation },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TieRests merges every run of adjacent rests into a single rest carrying
// the summed duration. The input is not modified. Calling it twice changes
// nothing.
func TieRests(events []score.Event) []score.Event {
	var out []score.Event
	for _, e := range events {
		if e.IsRest() && len(out) > 0 && out[len(out)-1].IsRest() {
			prev := &out[len(out)-1]
			prev.Duration = new(big.Rat).Add(prev.Duration, e.Duration)
			continue
		}
		out = append(out, e)
	}
	return out
}

// extracted is one event after field extraction, ready for the quantizer.
type extracted struct {
	event       score.Event
	attachments map[string]attachment.Attachment
}

func (a *Assembler) extract(events []score.Event) []extracted {
	out := make([]extracted, len(events))
	for i, e := range events {
		pitches := a.pitches(e)
		var volume score.Volume
		if len(pitches) > 0 {
			volume = a.volume(e)
		}
		// an explicit zero amplitude silences the event entirely
		if volume != nil && volume.Amplitude() <= 0 {
			pitches = nil
			volume = nil
		}
		norm := score.Event{Duration: e.Duration, Pitches: pitches, Volume: volume}
		out[i] = extracted{
			event:       norm,
			attachments: attachment.FromEvent(a.playing(e), a.notation(e), volume, norm.IsRest()),
		}
	}
	return out
}

// Assemble runs the whole pipeline on a sequential event list.
func (a *Assembler) Assemble(events []score.Event) (*tree.Voice, error) {
	prepared := a.extract(TieRests(events))

	quantizable := make([]score.Event, len(prepared))
	for i, p := range prepared {
		quantizable[i] = p.event
	}
	v, eventMap, err := a.quantizer.Quantize(quantizable)
	if err != nil {
		return nil, err
	}

	if err := a.annotate(v, prepared, eventMap); err != nil {
		return nil, err
	}
	if err := a.annotateTempo(v); err != nil {
		return nil, err
	}
	consolidateRestBars(v)
	return v, nil
}

// annotate applies attachments kind by kind in the fixed order, threading
// the previously applied attachment of each kind so toggles can elide
// repeats.
func (a *Assembler) annotate(v *tree.Voice, prepared []extracted, eventMap quantize.EventMap) error {
	for _, kind := range a.kinds {
		var prev attachment.Attachment
		for i, p := range prepared {
			att, ok := p.attachments[kind]
			if !ok || len(eventMap[i]) == 0 {
				continue
			}
			applied, err := attachment.Annotate(v, eventMap[i], att, prev)
			if err != nil {
				return err
			}
			if applied {
				prev = att
			}
		}
	}
	return nil
}

func (a *Assembler) annotateTempo(v *tree.Voice) error {
	paths := v.LeafPaths()
	onsets := make([]float64, len(paths))
	for i, o := range v.LeafOnsets() {
		// leaf onsets are in whole notes, the tempo curve counts beats
		onsets[i] = utils.RatFloat(o) * 4
	}
	for _, pl := range tempo.Annotate(a.tempo, onsets) {
		if _, err := attachment.Annotate(v, []tree.Path{paths[pl.Leaf]}, pl.Attachment, nil); err != nil {
			return err
		}
	}
	return nil
}

// consolidateRestBars replaces every bar that contains nothing but rests
// with a single multi-measure rest leaf. Marks the rests carried move onto
// the replacement.
func consolidateRestBars(v *tree.Voice) {
	for _, bar := range v.Bars {
		var marks []tree.Mark
		silent := true
		for _, l := range leavesOf(bar.Children) {
			if !l.IsRest() || l.Spacer {
				silent = false
				break
			}
			marks = append(marks, l.Marks...)
		}
		if !silent || len(bar.Children) == 0 {
			continue
		}
		rest := tree.NewRest(bar.ContentDuration())
		rest.MultiMeasure = true
		rest.Marks = marks
		bar.Children = []tree.Node{rest}
	}
}

func leavesOf(nodes []tree.Node) []*tree.Leaf {
	var out []*tree.Leaf
	for _, n := range nodes {
		switch t := n.(type) {
		case *tree.Leaf:
			out = append(out, t)
		case *tree.Tuplet:
			out = append(out, leavesOf(t.Children)...)
		}
	}
	return out
}
