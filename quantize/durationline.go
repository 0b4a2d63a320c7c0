package quantize

import (
	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tree"
)

// durationLine decorates another quantizer for duration-line notation:
// note heads are drawn once with a line extending for the sounding length,
// so the rhythm glyphs disappear and tie continuations become invisible
// spacers.
type durationLine struct {
	inner Quantizer
}

// WithDurationLines wraps a quantizer in the duration-line decorator.
func WithDurationLines(inner Quantizer) Quantizer {
	return &durationLine{inner: inner}
}

// voice-wide glyph suppression for duration-line output
var durationLineVoiceMarks = []tree.Mark{
	{Name: "omit", Value: "rest"},
	{Name: "omit", Value: "stem"},
	{Name: "omit", Value: "flag"},
	{Name: "omit", Value: "beam"},
	{Name: "omit", Value: "dots"},
}

func (q *durationLine) Quantize(events []score.Event) (*tree.Voice, EventMap, error) {
	voice, m, err := q.inner.Quantize(events)
	if err != nil {
		return nil, nil, err
	}
	voice.Marks = append(voice.Marks, durationLineVoiceMarks...)

	for i, paths := range m {
		if len(paths) == 0 {
			continue
		}
		first, err := voice.LeafAt(paths[0])
		if err != nil {
			return nil, nil, err
		}
		if !first.IsRest() {
			first.Attach(tree.Mark{Name: "duration-line"})
			first.Tie = false
			for _, p := range paths[1:] {
				leaf, err := voice.LeafAt(p)
				if err != nil {
					return nil, nil, err
				}
				spacer := &tree.Leaf{Written: leaf.Duration(), Spacer: true}
				if err := voice.Replace(p, spacer); err != nil {
					return nil, nil, err
				}
			}
		}
		m[i] = paths[:1]
	}
	return voice, m, nil
}
