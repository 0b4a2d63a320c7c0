package voice

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robmorgan/notate/quantize"
	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tempo"
	"github.com/robmorgan/notate/tree"
)

func fourFour(t *testing.T) *quantize.DirectQuantizer {
	t.Helper()
	q, err := quantize.NewDirectQuantizer([]score.TimeSignature{{Numerator: 4, Denominator: 4}})
	require.NoError(t, err)
	return q
}

func c4() score.NamedPitch {
	return score.NamedPitch{Step: "c", Octave: 4}
}

func TestTieRests(t *testing.T) {
	t.Parallel()

	events := []score.Event{
		score.Rest(big.NewRat(1, 1)),
		score.Rest(big.NewRat(1, 2)),
		score.Note(big.NewRat(1, 1), c4()),
		score.Rest(big.NewRat(1, 1)),
	}
	tied := TieRests(events)
	require.Len(t, tied, 3)
	require.Equal(t, big.NewRat(3, 2), tied[0].Duration)
	require.False(t, tied[1].IsRest())

	// already-merged input passes through unchanged
	require.Equal(t, tied, TieRests(tied))

	// the original slice keeps its rests separate
	require.Equal(t, big.NewRat(1, 1), events[0].Duration)
}

func TestAssembleQuarterNotes(t *testing.T) {
	t.Parallel()

	events := make([]score.Event, 4)
	for i := range events {
		events[i] = score.Note(big.NewRat(1, 1), c4())
		events[i].Volume = score.DynamicVolume("mf")
	}

	v, err := NewAssembler(fourFour(t)).Assemble(events)
	require.NoError(t, err)
	require.Len(t, v.Bars, 1)

	leaves := v.Leaves()
	require.Len(t, leaves, 4)
	for _, l := range leaves {
		require.False(t, l.IsRest())
		require.Equal(t, "c'", l.Pitches[0].Name())
	}

	// the repeated dynamic prints once, the default tempo once
	require.True(t, leaves[0].HasMark("dynamic"))
	m, _ := leaves[0].FindMark("metronome-mark")
	require.Equal(t, "4=120", m.Value)
	for _, l := range leaves[1:] {
		require.False(t, l.HasMark("dynamic"))
		require.False(t, l.HasMark("metronome-mark"))
	}
}

func TestAssemblePedalToggledTwice(t *testing.T) {
	t.Parallel()

	events := make([]score.Event, 4)
	for i := range events {
		events[i] = score.Note(big.NewRat(1, 1), c4())
		events[i].Playing.Pedal = score.Pedal{Kind: "sustain", Down: true, Set: true}
	}

	v, err := NewAssembler(fourFour(t)).Assemble(events)
	require.NoError(t, err)

	leaves := v.Leaves()
	require.True(t, leaves[0].HasMark("pedal-down"))
	for _, l := range leaves[1:] {
		require.False(t, l.HasMark("pedal-down"))
	}
}

func TestAssembleRestrictedKinds(t *testing.T) {
	t.Parallel()

	e := score.Note(big.NewRat(4, 1), c4())
	e.Playing.Articulation = score.Articulation{Name: "marcato"}
	e.Playing.Pedal = score.Pedal{Kind: "sustain", Down: true, Set: true}

	v, err := NewAssembler(fourFour(t), WithKinds("articulation")).Assemble([]score.Event{e})
	require.NoError(t, err)

	leaf := v.Leaves()[0]
	require.True(t, leaf.HasMark("articulation"))
	require.False(t, leaf.HasMark("pedal-down"))
}

func TestAssembleConsolidatesRestBars(t *testing.T) {
	t.Parallel()

	events := []score.Event{
		score.Rest(big.NewRat(4, 1)),
		score.Note(big.NewRat(4, 1), c4()),
	}
	v, err := NewAssembler(fourFour(t)).Assemble(events)
	require.NoError(t, err)
	require.Len(t, v.Bars, 2)

	require.Len(t, v.Bars[0].Children, 1)
	rest, ok := v.Bars[0].Children[0].(*tree.Leaf)
	require.True(t, ok)
	require.True(t, rest.MultiMeasure)
	require.True(t, rest.IsRest())
	// the opening tempo mark survives the consolidation
	require.True(t, rest.HasMark("metronome-mark"))

	note, ok := v.Bars[1].Children[0].(*tree.Leaf)
	require.True(t, ok)
	require.False(t, note.IsRest())
	require.False(t, note.MultiMeasure)
}

func TestAssembleZeroAmplitudeBecomesRest(t *testing.T) {
	t.Parallel()

	events := []score.Event{
		{Duration: big.NewRat(2, 1), Pitches: []score.Pitch{c4()}, Volume: score.AmplitudeVolume(0)},
		score.Note(big.NewRat(2, 1), c4()),
	}
	v, err := NewAssembler(fourFour(t)).Assemble(events)
	require.NoError(t, err)

	leaves := v.Leaves()
	require.Len(t, leaves, 2)
	require.True(t, leaves[0].IsRest())
	require.False(t, leaves[0].HasMark("dynamic"))
	require.False(t, leaves[1].IsRest())
}

func TestAssembleTempoChangeSpan(t *testing.T) {
	t.Parallel()

	curve, err := tempo.NewEnvelope(
		[]tempo.Point{{BPM: 120}, {BPM: 60}},
		[]float64{4},
	)
	require.NoError(t, err)

	events := make([]score.Event, 4)
	for i := range events {
		events[i] = score.Note(big.NewRat(1, 1), c4())
	}
	v, err := NewAssembler(fourFour(t), WithTempo(curve)).Assemble(events)
	require.NoError(t, err)

	leaves := v.Leaves()
	require.True(t, leaves[0].HasMark("metronome-mark"))
	m, ok := leaves[0].FindMark("tempo-change-start")
	require.True(t, ok)
	require.Equal(t, "rit.", m.Value)
}

func TestAssembleCustomExtractors(t *testing.T) {
	t.Parallel()

	// pitches live outside the event in this arrangement
	lookup := []score.Pitch{c4(), nil}
	i := 0
	extractor := func(score.Event) []score.Pitch {
		p := lookup[i]
		i++
		if p == nil {
			return nil
		}
		return []score.Pitch{p}
	}

	events := []score.Event{
		score.Note(big.NewRat(2, 1), score.NamedPitch{Step: "d", Octave: 4}),
		score.Note(big.NewRat(2, 1), score.NamedPitch{Step: "d", Octave: 4}),
	}
	v, err := NewAssembler(fourFour(t), WithPitchExtractor(extractor)).Assemble(events)
	require.NoError(t, err)

	leaves := v.Leaves()
	require.False(t, leaves[0].IsRest())
	require.True(t, leaves[1].IsRest())
}
