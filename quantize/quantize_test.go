package quantize

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robmorgan/notate/faults"
	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tree"
)

func sig(num, den int) score.TimeSignature {
	return score.TimeSignature{Numerator: num, Denominator: den}
}

func pitch(name string) score.NamedPitch {
	p, err := score.ParseNamedPitch(name)
	if err != nil {
		panic(err)
	}
	return p
}

func beats(num, den int64) *big.Rat {
	return big.NewRat(num, den)
}

func TestNotatable(t *testing.T) {
	t.Parallel()

	require.True(t, notatable(big.NewRat(1, 4), 1))
	require.True(t, notatable(big.NewRat(3, 8), 1))
	require.True(t, notatable(big.NewRat(2, 1), 1))
	require.False(t, notatable(big.NewRat(7, 8), 1))
	require.True(t, notatable(big.NewRat(7, 8), 2))
	require.False(t, notatable(big.NewRat(5, 8), 3))
	require.False(t, notatable(big.NewRat(1, 3), 1))
	require.False(t, notatable(new(big.Rat), 1))
}

func TestDirectBreveFillsFourTwoBar(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 2)})
	require.NoError(t, err)

	voice, m, err := q.Quantize([]score.Event{score.Note(beats(8, 1), pitch("c4"))})
	require.NoError(t, err)
	require.NoError(t, voice.Check())
	require.Len(t, voice.Bars, 1)

	leaves := voice.Leaves()
	require.Len(t, leaves, 1)
	require.Equal(t, big.NewRat(2, 1), leaves[0].Written)
	require.False(t, leaves[0].Tie)
	require.Equal(t, EventMap{{tree.Path{0, 0}}}, m)
}

func TestOddPartAndFloorPow2(t *testing.T) {
	t.Parallel()

	require.Equal(t, 3, oddPart(12))
	require.Equal(t, 1, oddPart(16))
	require.Equal(t, 4, floorPow2(7))
	require.Equal(t, 8, floorPow2(8))
}

func TestNewDirectQuantizerRejectsEmptySignatures(t *testing.T) {
	t.Parallel()

	_, err := NewDirectQuantizer(nil)
	require.Error(t, err)
	require.True(t, faults.IsConfig(err))
}

func TestQuantizersRejectNonDyadicDenominators(t *testing.T) {
	t.Parallel()

	_, err := NewDirectQuantizer([]score.TimeSignature{sig(1, 3)})
	require.True(t, faults.IsConfig(err))

	_, err = NewSearchQuantizer([]score.TimeSignature{sig(4, 6)})
	require.True(t, faults.IsConfig(err))
}

func TestDirectFourQuarters(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)

	events := []score.Event{
		score.Note(beats(1, 1), pitch("c4")),
		score.Note(beats(1, 1), pitch("d4")),
		score.Note(beats(1, 1), pitch("e4")),
		score.Note(beats(1, 1), pitch("f4")),
	}
	voice, m, err := q.Quantize(events)
	require.NoError(t, err)
	require.Len(t, voice.Bars, 1)
	require.Len(t, voice.Bars[0].Children, 4)

	require.Equal(t, EventMap{
		{tree.Path{0, 0}},
		{tree.Path{0, 1}},
		{tree.Path{0, 2}},
		{tree.Path{0, 3}},
	}, m)

	for i, n := range voice.Bars[0].Children {
		leaf := n.(*tree.Leaf)
		require.Equal(t, big.NewRat(1, 4), leaf.Written, i)
		require.False(t, leaf.Tie, i)
		require.Len(t, leaf.Pitches, 1, i)
	}
}

func TestDirectPadsFinalBarWithRests(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)

	voice, m, err := q.Quantize([]score.Event{score.Note(beats(1, 1), pitch("c4"))})
	require.NoError(t, err)
	require.Len(t, voice.Bars, 1)
	require.NoError(t, voice.Check())

	leaves := voice.Leaves()
	require.Len(t, leaves, 3) // c4 r4 r2
	require.False(t, leaves[0].IsRest())
	require.True(t, leaves[1].IsRest())
	require.Equal(t, big.NewRat(1, 4), leaves[1].Written)
	require.True(t, leaves[2].IsRest())
	require.Equal(t, big.NewRat(1, 2), leaves[2].Written)

	// the padding rests belong to no event
	require.Equal(t, EventMap{{tree.Path{0, 0}}}, m)
}

func TestDirectTieAcrossBars(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)

	voice, m, err := q.Quantize([]score.Event{score.Note(beats(6, 1), pitch("c4"))})
	require.NoError(t, err)
	require.Len(t, voice.Bars, 2)

	first, err := voice.LeafAt(tree.Path{0, 0})
	require.NoError(t, err)
	require.Equal(t, big.NewRat(1, 1), first.Written)
	require.True(t, first.Tie)

	second, err := voice.LeafAt(tree.Path{1, 0})
	require.NoError(t, err)
	require.Equal(t, big.NewRat(1, 2), second.Written)
	require.False(t, second.Tie)

	require.Equal(t, []tree.Path{{0, 0}, {1, 0}}, m[0])
}

func TestDirectTriplet(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)

	events := []score.Event{
		score.Note(beats(1, 3), pitch("c4")),
		score.Note(beats(1, 3), pitch("d4")),
		score.Note(beats(1, 3), pitch("e4")),
	}
	voice, m, err := q.Quantize(events)
	require.NoError(t, err)
	require.NoError(t, voice.Check())

	tuplet, ok := voice.Bars[0].Children[0].(*tree.Tuplet)
	require.True(t, ok)
	require.Equal(t, big.NewRat(2, 3), tuplet.Prolation)
	require.Len(t, tuplet.Children, 3)
	for _, n := range tuplet.Children {
		require.Equal(t, big.NewRat(1, 8), n.(*tree.Leaf).Written)
	}

	require.Equal(t, []tree.Path{{0, 0, 0}}, m[0])
	require.Equal(t, []tree.Path{{0, 0, 1}}, m[1])
	require.Equal(t, []tree.Path{{0, 0, 2}}, m[2])
}

func TestDirectTieIntoTuplet(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)

	events := []score.Event{
		score.Note(beats(8, 3), pitch("c4")),
		score.Note(beats(4, 3), pitch("d4")),
	}
	voice, m, err := q.Quantize(events)
	require.NoError(t, err)
	require.NoError(t, voice.Check())

	// c2~ \times 2/3 { c4 d8~ } d4
	require.Len(t, voice.Bars, 1)
	children := voice.Bars[0].Children
	require.Len(t, children, 3)

	head := children[0].(*tree.Leaf)
	require.Equal(t, big.NewRat(1, 2), head.Written)
	require.True(t, head.Tie)

	tuplet := children[1].(*tree.Tuplet)
	require.Equal(t, big.NewRat(2, 3), tuplet.Prolation)
	require.Len(t, tuplet.Children, 2)
	require.Equal(t, big.NewRat(1, 4), tuplet.Children[0].(*tree.Leaf).Written)
	require.False(t, tuplet.Children[0].(*tree.Leaf).Tie)
	require.True(t, tuplet.Children[1].(*tree.Leaf).Tie)

	tail := children[2].(*tree.Leaf)
	require.Equal(t, big.NewRat(1, 4), tail.Written)
	require.False(t, tail.Tie)

	require.Equal(t, []tree.Path{{0, 0}, {0, 1, 0}}, m[0])
	require.Equal(t, []tree.Path{{0, 1, 1}, {0, 2}}, m[1])
}

func TestDirectDotBudget(t *testing.T) {
	t.Parallel()

	events := []score.Event{score.Note(beats(7, 2), pitch("c4"))}

	oneDot, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)
	voice, _, err := oneDot.Quantize(events)
	require.NoError(t, err)
	leaves := voice.Leaves()
	// c2.~ c8 r8
	require.Equal(t, big.NewRat(3, 4), leaves[0].Written)
	require.True(t, leaves[0].Tie)
	require.Equal(t, big.NewRat(1, 8), leaves[1].Written)
	require.False(t, leaves[1].Tie)

	twoDots, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4)}, WithMaxDots(2))
	require.NoError(t, err)
	voice, _, err = twoDots.Quantize(events)
	require.NoError(t, err)
	leaves = voice.Leaves()
	// c2..~ r8
	require.Equal(t, big.NewRat(7, 8), leaves[0].Written)
	require.False(t, leaves[0].Tie)
}

func TestDirectBeamsEighths(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(2, 4)})
	require.NoError(t, err)

	events := []score.Event{
		score.Note(beats(1, 2), pitch("c4")),
		score.Note(beats(1, 2), pitch("d4")),
		score.Note(beats(1, 1), pitch("e4")),
	}
	voice, _, err := q.Quantize(events)
	require.NoError(t, err)

	leaves := voice.Leaves()
	require.Len(t, leaves, 3)
	require.True(t, leaves[0].HasMark("beam-start"))
	require.True(t, leaves[1].HasMark("beam-stop"))
	require.False(t, leaves[2].HasMark("beam-start"))

	plain, err := NewDirectQuantizer([]score.TimeSignature{sig(2, 4)}, WithoutBeams())
	require.NoError(t, err)
	voice, _, err = plain.Quantize(events)
	require.NoError(t, err)
	for _, l := range voice.Leaves() {
		require.Empty(t, l.Marks)
	}
}

func TestDirectRepeatsLastSignature(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(3, 4), sig(2, 4)})
	require.NoError(t, err)

	voice, _, err := q.Quantize([]score.Event{score.Note(beats(8, 1), pitch("c4"))})
	require.NoError(t, err)
	require.NoError(t, voice.Check())

	// the list is consumed once, then the final 2/4 repeats
	var sigs []score.TimeSignature
	for _, bar := range voice.Bars {
		sigs = append(sigs, bar.Signature)
	}
	require.Equal(t, []score.TimeSignature{sig(3, 4), sig(2, 4), sig(2, 4), sig(2, 4)}, sigs)

	// 8 beats of sound in 9 beats of bars leaves one padding rest
	last := voice.Bars[len(voice.Bars)-1].Children
	rest := last[len(last)-1].(*tree.Leaf)
	require.True(t, rest.IsRest())
	require.Equal(t, big.NewRat(1, 4), rest.Written)
}

func TestDirectAdjacentRestEvents(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)

	events := []score.Event{
		score.Rest(beats(1, 1)),
		score.Rest(beats(1, 1)),
	}
	voice, m, err := q.Quantize(events)
	require.NoError(t, err)
	require.NoError(t, voice.Check())

	// each rest event keeps its own leaf; the bar padding joins the second
	require.Equal(t, []tree.Path{{0, 0}}, m[0])
	require.NotEmpty(t, m[1])
	require.Equal(t, tree.Path{0, 1}, m[1][0])

	first, err := voice.LeafAt(tree.Path{0, 0})
	require.NoError(t, err)
	require.True(t, first.IsRest())
	require.Equal(t, big.NewRat(1, 4), first.Written)
}

func TestDirectEmptyEvents(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)

	voice, m, err := q.Quantize(nil)
	require.NoError(t, err)
	require.Len(t, voice.Bars, 1)
	require.Empty(t, m)
	leaves := voice.Leaves()
	require.Len(t, leaves, 1)
	require.True(t, leaves[0].IsRest())
}

func TestDirectZeroDurationEventKeepsEmptyPaths(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)

	events := []score.Event{
		score.Note(beats(1, 1), pitch("c4")),
		score.Note(new(big.Rat), pitch("d4")),
		score.Note(beats(1, 1), pitch("e4")),
	}
	_, m, err := q.Quantize(events)
	require.NoError(t, err)
	require.Len(t, m, 3)
	require.NotEmpty(t, m[0])
	require.Empty(t, m[1])
	require.NotEmpty(t, m[2])
}

func TestDirectDurationConservation(t *testing.T) {
	t.Parallel()

	q, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4), sig(3, 4)})
	require.NoError(t, err)

	events := []score.Event{
		score.Note(beats(3, 4), pitch("c4")),
		score.Rest(beats(1, 2)),
		score.Note(beats(5, 3), pitch("d4")),
		score.Note(beats(7, 4), pitch("e4")),
		score.Rest(beats(13, 8)),
	}
	voice, m, err := q.Quantize(events)
	require.NoError(t, err)
	require.NoError(t, voice.Check())

	// every event's leaves sum to its duration (in whole notes); the final
	// rest is skipped because it absorbs the bar padding
	for i, e := range events {
		if i == len(events)-1 {
			continue
		}
		sum := new(big.Rat)
		for _, p := range m[i] {
			leaf, err := voice.LeafAt(p)
			require.NoError(t, err)
			prolation := big.NewRat(1, 1)
			if len(p) > 2 {
				node := voice.Bars[p[0]].Children[p[1]]
				prolation = node.(*tree.Tuplet).Prolation
			}
			sounding := new(big.Rat).Mul(leaf.Written, prolation)
			sum.Add(sum, sounding)
		}
		want := new(big.Rat).Quo(e.Duration, big.NewRat(4, 1))
		require.Zero(t, sum.Cmp(want), "event %d: got %s want %s", i, sum.RatString(), want.RatString())
	}
}

func TestSearchFourQuarters(t *testing.T) {
	t.Parallel()

	q, err := NewSearchQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)

	events := []score.Event{
		score.Note(beats(1, 1), pitch("c4")),
		score.Note(beats(1, 1), pitch("d4")),
		score.Note(beats(1, 1), pitch("e4")),
		score.Note(beats(1, 1), pitch("f4")),
	}
	voice, m, err := q.Quantize(events)
	require.NoError(t, err)
	require.NoError(t, voice.Check())
	require.Len(t, voice.Bars, 1)

	require.Equal(t, EventMap{
		{tree.Path{0, 0}},
		{tree.Path{0, 1}},
		{tree.Path{0, 2}},
		{tree.Path{0, 3}},
	}, m)
}

func TestSearchTripletThenRest(t *testing.T) {
	t.Parallel()

	q, err := NewSearchQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)

	events := []score.Event{
		score.Note(beats(1, 3), pitch("c4")),
		score.Note(beats(1, 3), pitch("d4")),
		score.Note(beats(1, 3), pitch("e4")),
		score.Rest(beats(3, 1)),
	}
	voice, m, err := q.Quantize(events)
	require.NoError(t, err)
	require.NoError(t, voice.Check())

	children := voice.Bars[0].Children
	tuplet, ok := children[0].(*tree.Tuplet)
	require.True(t, ok)
	require.Equal(t, big.NewRat(2, 3), tuplet.Prolation)
	require.Len(t, tuplet.Children, 3)

	require.Equal(t, []tree.Path{{0, 0, 0}}, m[0])
	require.Equal(t, []tree.Path{{0, 0, 1}}, m[1])
	require.Equal(t, []tree.Path{{0, 0, 2}}, m[2])
	// the rest keeps its attack leaf; later rest continuations are dropped
	require.NotEmpty(t, m[3])
	require.Equal(t, tree.Path{0, 1}, m[3][0])
}

func TestSearchSnapsOffGridAttacks(t *testing.T) {
	t.Parallel()

	q, err := NewSearchQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)

	// a hair ahead of the third beat
	events := []score.Event{
		score.Note(beats(201, 100), pitch("c4")),
		score.Note(beats(199, 100), pitch("d4")),
	}
	voice, m, err := q.Quantize(events)
	require.NoError(t, err)
	require.NoError(t, voice.Check())

	leaves := voice.Leaves()
	require.Len(t, leaves, 2)
	require.Equal(t, big.NewRat(1, 2), leaves[0].Written)
	require.Equal(t, big.NewRat(1, 2), leaves[1].Written)
	require.Equal(t, []tree.Path{{0, 0}}, m[0])
	require.Equal(t, []tree.Path{{0, 1}}, m[1])
}

func TestSearchReferenceTempoScalesDurations(t *testing.T) {
	t.Parallel()

	// at quarter=120 a two-beat event takes one notated beat
	q, err := NewSearchQuantizer([]score.TimeSignature{sig(4, 4)}, WithReferenceTempo(120))
	require.NoError(t, err)

	events := []score.Event{
		score.Note(beats(2, 1), pitch("c4")),
		score.Note(beats(6, 1), pitch("d4")),
	}
	voice, _, err := q.Quantize(events)
	require.NoError(t, err)

	// c4 d4~ d2
	leaves := voice.Leaves()
	require.Len(t, leaves, 3)
	require.Equal(t, big.NewRat(1, 4), leaves[0].Written)
	require.Equal(t, big.NewRat(1, 4), leaves[1].Written)
	require.True(t, leaves[1].Tie)
	require.Equal(t, big.NewRat(1, 2), leaves[2].Written)
}

func TestSearchNestedTuplets(t *testing.T) {
	t.Parallel()

	st := SearchTree{2: nil, 3: {3: nil}}
	q, err := NewSearchQuantizer([]score.TimeSignature{sig(1, 4)}, WithSearchTree(st))
	require.NoError(t, err)

	// nine even attacks inside a single beat
	var events []score.Event
	for i := 0; i < 9; i++ {
		events = append(events, score.Note(beats(1, 9), pitch("c4")))
	}
	voice, m, err := q.Quantize(events)
	require.NoError(t, err)
	require.NoError(t, voice.Check())

	outer, ok := voice.Bars[0].Children[0].(*tree.Tuplet)
	require.True(t, ok)
	require.Len(t, outer.Children, 3)
	for _, child := range outer.Children {
		inner, ok := child.(*tree.Tuplet)
		require.True(t, ok)
		require.Len(t, inner.Children, 3)
	}
	for i := 0; i < 9; i++ {
		require.Len(t, m[i], 1, i)
		require.Len(t, m[i][0], 4, i)
	}
}

func TestSearchRejectsBadOptions(t *testing.T) {
	t.Parallel()

	_, err := NewSearchQuantizer(nil)
	require.True(t, faults.IsConfig(err))

	_, err = NewSearchQuantizer([]score.TimeSignature{sig(4, 4)}, WithReferenceTempo(0))
	require.True(t, faults.IsConfig(err))

	_, err = NewSearchQuantizer([]score.TimeSignature{sig(4, 4)}, WithSearchTree(SearchTree{}))
	require.True(t, faults.IsConfig(err))

	_, err = NewSearchQuantizer([]score.TimeSignature{sig(4, 4)}, WithSearchTree(SearchTree{1: nil}))
	require.True(t, faults.IsConfig(err))
}

func TestDurationLineDecorator(t *testing.T) {
	t.Parallel()

	inner, err := NewDirectQuantizer([]score.TimeSignature{sig(4, 4)})
	require.NoError(t, err)
	q := WithDurationLines(inner)

	events := []score.Event{
		score.Note(beats(6, 1), pitch("c4")),
		score.Rest(beats(2, 1)),
	}
	voice, m, err := q.Quantize(events)
	require.NoError(t, err)

	require.NotEmpty(t, voice.Marks)

	// path lists collapse to the head leaf
	require.Equal(t, []tree.Path{{0, 0}}, m[0])
	require.Len(t, m[1], 1)

	head, err := voice.LeafAt(tree.Path{0, 0})
	require.NoError(t, err)
	require.True(t, head.HasMark("duration-line"))
	require.False(t, head.Tie)

	continuation, err := voice.LeafAt(tree.Path{1, 0})
	require.NoError(t, err)
	require.True(t, continuation.Spacer)
	require.False(t, continuation.IsRest())
}
