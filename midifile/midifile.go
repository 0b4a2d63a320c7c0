// Package midifile renders an event sequence to a standard MIDI file: a
// conductor track carrying the meter and the sampled tempo curve, and a
// note track derived from the events' pitches and volumes.
package midifile

import (
	"io"
	"math"
	"math/big"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/robmorgan/notate/faults"
	"github.com/robmorgan/notate/logger"
	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tempo"
	"github.com/robmorgan/notate/utils"
)

// Writer renders event sequences to SMF format 1 files.
type Writer struct {
	resolution smf.MetricTicks
	channel    uint8
}

// Option adjusts a Writer.
type Option func(*Writer)

// WithResolution sets the ticks per quarter note. The default is 960.
func WithResolution(ticksPerQuarter uint16) Option {
	return func(w *Writer) { w.resolution = smf.MetricTicks(ticksPerQuarter) }
}

// WithChannel sets the MIDI channel of the note track.
func WithChannel(ch uint8) Option {
	return func(w *Writer) { w.channel = ch }
}

// NewWriter builds a writer.
func NewWriter(opts ...Option) (*Writer, error) {
	w := &Writer{resolution: smf.MetricTicks(960)}
	for _, opt := range opts {
		opt(w)
	}
	if w.resolution == 0 {
		return nil, faults.Configf("zero ticks-per-quarter resolution")
	}
	if w.channel > 15 {
		return nil, faults.Configf("MIDI channel %d out of range", w.channel)
	}
	return w, nil
}

// Encode builds the SMF object for an event sequence. The signature list's
// last entry repeats past its end; the tempo curve is sampled per beat so
// eased segments survive the conversion.
func (w *Writer) Encode(title string, events []score.Event, signatures []score.TimeSignature, curve *tempo.Envelope) (*smf.SMF, error) {
	if len(signatures) == 0 {
		return nil, faults.Configf("time signature list is empty")
	}
	if curve == nil {
		curve = tempo.Constant(120)
	}
	totalBeats := new(big.Rat)
	for i, e := range events {
		if e.Duration == nil || e.Duration.Sign() < 0 {
			return nil, faults.Configf("event %d has no valid duration", i)
		}
		totalBeats.Add(totalBeats, e.Duration)
	}

	s := smf.New()
	s.TimeFormat = w.resolution
	s.Add(w.conductorTrack(title, signatures, curve, utils.RatFloat(totalBeats)))
	s.Add(w.noteTrack(events))
	return s, nil
}

// WriteTo encodes the sequence and writes the file to w.
func (w *Writer) WriteTo(out io.Writer, title string, events []score.Event, signatures []score.TimeSignature, curve *tempo.Envelope) error {
	s, err := w.Encode(title, events, signatures, curve)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(out)
	return err
}

// conductorTrack carries the sequence name, one meter event per signature
// change and the beat-sampled tempo curve.
func (w *Writer) conductorTrack(title string, signatures []score.TimeSignature, curve *tempo.Envelope, totalBeats float64) smf.Track {
	var tr smf.Track
	if title != "" {
		tr.Add(0, smf.MetaTrackSequenceName(title))
	}

	type timed struct {
		tick uint32
		msg  []byte
	}
	var msgs []timed

	// meter changes at bar starts; the last signature repeats once the
	// list runs out
	beatCursor := new(big.Rat)
	total := new(big.Rat).SetFloat64(totalBeats)
	var prev score.TimeSignature
	for i := 0; beatCursor.Cmp(total) < 0 || i == 0; i++ {
		idx := i
		if idx >= len(signatures) {
			idx = len(signatures) - 1
		}
		ts := signatures[idx]
		if i == 0 || ts != prev {
			msgs = append(msgs, timed{
				tick: w.beatTicks(utils.RatFloat(beatCursor)),
				msg:  smf.MetaMeter(uint8(ts.Numerator), uint8(ts.Denominator)),
			})
		}
		prev = ts
		beatCursor.Add(beatCursor, new(big.Rat).Mul(ts.Duration(), big.NewRat(4, 1)))
	}

	// tempo samples, one per beat, deduplicated
	lastBPM := 0.0
	for beat := 0.0; beat <= totalBeats || beat == 0; beat++ {
		bpm := curve.At(beat)
		if bpm != lastBPM {
			msgs = append(msgs, timed{tick: w.beatTicks(beat), msg: smf.MetaTempo(bpm)})
			lastBPM = bpm
		}
	}

	// stable-sort by tick; meter events precede tempo events on equal ticks
	for i := 1; i < len(msgs); i++ {
		for j := i; j > 0 && msgs[j].tick < msgs[j-1].tick; j-- {
			msgs[j], msgs[j-1] = msgs[j-1], msgs[j]
		}
	}

	cursor := uint32(0)
	for _, m := range msgs {
		tr.Add(m.tick-cursor, m.msg)
		cursor = m.tick
	}
	tr.Close(0)
	return tr
}

func (w *Writer) noteTrack(events []score.Event) smf.Track {
	var tr smf.Track
	delta := uint32(0)
	beatCursor := 0.0
	for _, e := range events {
		startTick := w.beatTicks(beatCursor)
		beatCursor += utils.RatFloat(e.Duration)
		endTick := w.beatTicks(beatCursor)
		if e.IsRest() {
			delta += endTick - startTick
			continue
		}

		velocity := w.velocity(e.Volume)
		keys := make([]uint8, 0, len(e.Pitches))
		for _, p := range e.Pitches {
			key, ok := midiKey(p.Hertz())
			if !ok {
				logger.GetProjectLogger().Warnf("pitch %s is outside the MIDI range, dropping it", p.Name())
				continue
			}
			keys = append(keys, key)
		}

		for _, key := range keys {
			tr.Add(delta, midi.NoteOn(w.channel, key, velocity))
			delta = 0
		}
		delta += endTick - startTick
		for _, key := range keys {
			tr.Add(delta, midi.NoteOff(w.channel, key))
			delta = 0
		}
	}
	tr.Close(delta)
	return tr
}

func (w *Writer) beatTicks(beats float64) uint32 {
	return uint32(math.Round(beats * float64(w.resolution)))
}

// velocity maps an amplitude onto 1..127; events without a volume play
// mezzoforte.
func (w *Writer) velocity(v score.Volume) uint8 {
	if v == nil {
		v = score.DynamicVolume("mf")
	}
	return uint8(utils.Clamp(math.Round(v.Amplitude()*127), 1, 127))
}

// midiKey converts a frequency to the nearest MIDI key number.
func midiKey(hertz float64) (uint8, bool) {
	if hertz <= 0 {
		return 0, false
	}
	key := int(math.Round(69 + 12*math.Log2(hertz/440)))
	if key < 0 || key > 127 {
		return 0, false
	}
	return uint8(key), true
}
