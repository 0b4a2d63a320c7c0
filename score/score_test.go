package score

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robmorgan/notate/faults"
)

func TestParseNamedPitch(t *testing.T) {
	t.Parallel()

	p, err := ParseNamedPitch("cs4")
	require.NoError(t, err)
	require.Equal(t, NamedPitch{Step: "cs", Octave: 4}, p)

	p, err = ParseNamedPitch("bf3")
	require.NoError(t, err)
	require.Equal(t, NamedPitch{Step: "bf", Octave: 3}, p)

	_, err = ParseNamedPitch("h4")
	require.Error(t, err)
	require.True(t, faults.IsConfig(err))
}

func TestNamedPitchHertz(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 440.0, NamedPitch{Step: "a", Octave: 4}.Hertz(), 1e-9)
	require.InDelta(t, 261.626, NamedPitch{Step: "c", Octave: 4}.Hertz(), 1e-3)
	require.InDelta(t, 466.164, NamedPitch{Step: "as", Octave: 4}.Hertz(), 1e-3)
}

func TestNamedPitchName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "c'", NamedPitch{Step: "c", Octave: 4}.Name())
	require.Equal(t, "c", NamedPitch{Step: "c", Octave: 3}.Name())
	require.Equal(t, "ef,,", NamedPitch{Step: "ef", Octave: 1}.Name())
}

func TestFromHertzRoundTrip(t *testing.T) {
	t.Parallel()

	for _, p := range []NamedPitch{
		{Step: "a", Octave: 4},
		{Step: "c", Octave: 2},
		{Step: "fs", Octave: 6},
	} {
		require.Equal(t, p, FromHertz(p.Hertz()))
	}
}

func TestTranspose(t *testing.T) {
	t.Parallel()

	require.Equal(t, NamedPitch{Step: "f", Octave: 5}, NamedPitch{Step: "c", Octave: 4}.Transpose(17))
	require.Equal(t, NamedPitch{Step: "b", Octave: 3}, NamedPitch{Step: "c", Octave: 4}.Transpose(-1))
}

func TestRatioPitch(t *testing.T) {
	t.Parallel()

	fifth := RatioPitch{Numerator: 3, Denominator: 2}
	require.InDelta(t, 660.0, fifth.Hertz(), 1e-9)

	unison := RatioPitch{Numerator: 1, Denominator: 1, Concert: 220}
	require.InDelta(t, 220.0, unison.Hertz(), 1e-9)
	require.Equal(t, "a", unison.Name())
}

func TestDynamicVolume(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 1.0, DynamicVolume("fff").Amplitude(), 1e-9)
	require.Greater(t, DynamicVolume("f").Amplitude(), DynamicVolume("p").Amplitude())
	require.Equal(t, 0.0, DynamicVolume("xyz").Amplitude())
	require.True(t, IsValidDynamic("mp"))
	require.False(t, IsValidDynamic("mfff"))
}

func TestAmplitudeVolumeDynamicName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "fff", AmplitudeVolume(1).DynamicName())
	require.Equal(t, "", AmplitudeVolume(0).DynamicName())
	require.Equal(t, DynamicVolume("mf").DynamicName(),
		AmplitudeVolume(DynamicVolume("mf").Amplitude()).DynamicName())
}

func TestTimeSignature(t *testing.T) {
	t.Parallel()

	ts, err := ParseTimeSignature("6/8")
	require.NoError(t, err)
	require.Equal(t, TimeSignature{Numerator: 6, Denominator: 8}, ts)
	require.Equal(t, big.NewRat(3, 4), ts.Duration())

	for _, bad := range []string{"", "4", "4/5", "0/4", "x/4"} {
		_, err := ParseTimeSignature(bad)
		require.Error(t, err, bad)
	}
}

func TestEventIsRest(t *testing.T) {
	t.Parallel()

	require.True(t, Rest(big.NewRat(1, 1)).IsRest())
	require.False(t, Note(big.NewRat(1, 1), NamedPitch{Step: "c", Octave: 4}).IsRest())
}

func TestMarkerActivity(t *testing.T) {
	t.Parallel()

	require.False(t, Pedal{}.Active())
	require.True(t, Pedal{Kind: "sustain", Down: true, Set: true}.Active())
	require.False(t, Ottava{}.Active())
	require.True(t, Ottava{Octaves: 0, Set: true}.Active())
	require.True(t, Switch(true).Active())
	require.False(t, Articulation{}.Active())
}
