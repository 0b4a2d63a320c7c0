package score

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/robmorgan/notate/faults"
)

const concertPitchHertz = 440.0

// Pitch is anything with a frequency and a notated name.
type Pitch interface {
	Hertz() float64
	Name() string
}

var diatonicSemitones = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// NamedPitch is a western pitch: a diatonic step with an optional accidental
// suffix ("s" sharp, "f" flat, doubled for double accidentals, "qs"/"qf" for
// quartertones) and a scientific octave number (octave 4 holds middle c).
type NamedPitch struct {
	Step   string
	Octave int
}

// ParseNamedPitch parses strings like "c4", "cs5" or "bf3".
func ParseNamedPitch(s string) (NamedPitch, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	split := len(s)
	for split > 0 && (s[split-1] == '-' || (s[split-1] >= '0' && s[split-1] <= '9')) {
		split--
	}
	if split == 0 || split == len(s) {
		return NamedPitch{}, faults.Configf("malformed pitch name %q", s)
	}
	step := s[:split]
	if _, err := stepSemitones(step); err != nil {
		return NamedPitch{}, err
	}
	octave, err := strconv.Atoi(s[split:])
	if err != nil {
		return NamedPitch{}, faults.Configf("malformed pitch name %q", s)
	}
	return NamedPitch{Step: step, Octave: octave}, nil
}

func stepSemitones(step string) (float64, error) {
	if step == "" {
		return 0, faults.Configf("empty pitch step")
	}
	base, ok := diatonicSemitones[step[0]]
	if !ok {
		return 0, faults.Configf("unknown pitch step %q", step)
	}
	offset := float64(base)
	suffix := step[1:]
	for suffix != "" {
		switch {
		case strings.HasPrefix(suffix, "qs"):
			offset += 0.5
			suffix = suffix[2:]
		case strings.HasPrefix(suffix, "qf"):
			offset -= 0.5
			suffix = suffix[2:]
		case suffix[0] == 's':
			offset++
			suffix = suffix[1:]
		case suffix[0] == 'f':
			offset--
			suffix = suffix[1:]
		default:
			return 0, faults.Configf("unknown accidental in pitch step %q", step)
		}
	}
	return offset, nil
}

// Hertz converts the pitch to a frequency in equal temperament around a4=440.
func (p NamedPitch) Hertz() float64 {
	offset, err := stepSemitones(p.Step)
	if err != nil {
		return 0
	}
	midi := float64((p.Octave+1)*12) + offset
	return concertPitchHertz * math.Pow(2, (midi-69)/12)
}

// Name renders the pitch in lilypond style: octave 3 is unmarked, higher
// octaves append apostrophes and lower ones append commas.
func (p NamedPitch) Name() string {
	var b strings.Builder
	b.WriteString(p.Step)
	switch {
	case p.Octave > 3:
		b.WriteString(strings.Repeat("'", p.Octave-3))
	case p.Octave < 3:
		b.WriteString(strings.Repeat(",", 3-p.Octave))
	}
	return b.String()
}

var sharpSteps = [12]string{"c", "cs", "d", "ds", "e", "f", "fs", "g", "gs", "a", "as", "b"}

// FromHertz returns the equal-tempered NamedPitch closest to hz.
func FromHertz(hz float64) NamedPitch {
	if hz <= 0 {
		return NamedPitch{Step: "c", Octave: 4}
	}
	midi := int(math.Round(69 + 12*math.Log2(hz/concertPitchHertz)))
	octave := midi/12 - 1
	return NamedPitch{Step: sharpSteps[((midi%12)+12)%12], Octave: octave}
}

// Transpose moves the pitch by a number of semitones, respelling the result
// with sharps.
func (p NamedPitch) Transpose(semitones int) NamedPitch {
	offset, _ := stepSemitones(p.Step)
	midi := (p.Octave+1)*12 + int(math.Round(offset)) + semitones
	return NamedPitch{Step: sharpSteps[((midi%12)+12)%12], Octave: midi/12 - 1}
}

// RatioPitch is a just-intonation pitch: an interval ratio applied to a
// concert reference. A zero Concert field means the default 440 Hz.
type RatioPitch struct {
	Numerator   int64
	Denominator int64
	Concert     float64
}

func (p RatioPitch) reference() float64 {
	if p.Concert > 0 {
		return p.Concert
	}
	return concertPitchHertz
}

func (p RatioPitch) Hertz() float64 {
	if p.Denominator == 0 {
		return p.reference()
	}
	return p.reference() * float64(p.Numerator) / float64(p.Denominator)
}

// Name approximates the ratio with the closest equal-tempered name.
func (p RatioPitch) Name() string {
	return FromHertz(p.Hertz()).Name()
}

func (p RatioPitch) String() string {
	return fmt.Sprintf("%d/%d", p.Numerator, p.Denominator)
}
