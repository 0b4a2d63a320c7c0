// Package tempo models piecewise tempo curves and turns them into tempo
// annotations on a quantized voice: printed metronome marks, gradual
// "acc."/"rit." change spans, and "a tempo" returns.
package tempo

import (
	"github.com/fogleman/ease"

	"github.com/robmorgan/notate/faults"
)

// Point is one break-point of a tempo curve.
type Point struct {
	// BPM is the tempo in reference units per minute.
	BPM float64
	// Range prints and plays a tempo range instead of a single value when
	// both bounds are set; the lower bound is the effective tempo.
	Range [2]float64
	// Reference scales the unit the BPM counts: 1 means quarter notes
	// (the default), 2 means half notes.
	Reference float64
	// Label is a verbal indication printed with the mark.
	Label string
}

func (p Point) reference() float64 {
	if p.Reference > 0 {
		return p.Reference
	}
	return 1
}

func (p Point) effectiveBPM() float64 {
	if p.Range[0] > 0 && p.Range[1] > p.Range[0] {
		return p.Range[0]
	}
	return p.BPM
}

// AbsoluteBPM is the tempo in quarter notes per minute.
func (p Point) AbsoluteBPM() float64 {
	return p.effectiveBPM() * p.reference()
}

// Equal compares every printed property of the point.
func (p Point) Equal(other Point) bool {
	return p.BPM == other.BPM &&
		p.Range == other.Range &&
		p.reference() == other.reference() &&
		p.Label == other.Label
}

// Shape bends the interpolation of one envelope segment. The fogleman/ease
// curves satisfy it directly.
type Shape func(t float64) float64

// Envelope is a piecewise tempo curve: points joined by segments of the
// given durations (in beats), each interpolated by its shape (linear by
// default).
type Envelope struct {
	points    []Point
	durations []float64
	shapes    []Shape
}

// EnvelopeOption adjusts an Envelope.
type EnvelopeOption func(*Envelope)

// WithShapes sets one interpolation shape per segment.
func WithShapes(shapes ...Shape) EnvelopeOption {
	return func(e *Envelope) { e.shapes = shapes }
}

// NewEnvelope builds a tempo curve from points and the segment durations
// between them.
func NewEnvelope(points []Point, durations []float64, opts ...EnvelopeOption) (*Envelope, error) {
	if len(points) == 0 {
		return nil, faults.Configf("tempo envelope needs at least one point")
	}
	if len(durations) != len(points)-1 {
		return nil, faults.Configf("tempo envelope has %d points but %d segment durations",
			len(points), len(durations))
	}
	for i, d := range durations {
		if d < 0 {
			return nil, faults.Configf("tempo envelope segment %d has negative duration", i)
		}
	}
	for i, p := range points {
		if p.effectiveBPM() <= 0 {
			return nil, faults.Configf("tempo point %d has no positive tempo", i)
		}
	}
	e := &Envelope{
		points:    append([]Point(nil), points...),
		durations: append([]float64(nil), durations...),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.shapes != nil && len(e.shapes) != len(e.durations) {
		return nil, faults.Configf("tempo envelope has %d segments but %d shapes",
			len(e.durations), len(e.shapes))
	}
	return e, nil
}

// Constant builds a flat curve at the given quarter-note BPM.
func Constant(bpm float64) *Envelope {
	return &Envelope{
		points:    []Point{{BPM: bpm}, {BPM: bpm}},
		durations: []float64{1},
	}
}

// Points returns the curve's break-points.
func (e *Envelope) Points() []Point {
	return e.points
}

// Offsets returns the absolute offset of every point in beats.
func (e *Envelope) Offsets() []float64 {
	out := make([]float64, len(e.points))
	sum := 0.0
	for i := range e.points {
		out[i] = sum
		if i < len(e.durations) {
			sum += e.durations[i]
		}
	}
	return out
}

// Duration is the curve's total length in beats.
func (e *Envelope) Duration() float64 {
	sum := 0.0
	for _, d := range e.durations {
		sum += d
	}
	return sum
}

func (e *Envelope) shape(segment int) Shape {
	if e.shapes != nil && e.shapes[segment] != nil {
		return e.shapes[segment]
	}
	return ease.Linear
}

// At samples the absolute tempo (quarter notes per minute) at an offset in
// beats. Offsets outside the curve clamp to its ends.
func (e *Envelope) At(beats float64) float64 {
	offsets := e.Offsets()
	if beats <= offsets[0] || len(e.points) == 1 {
		return e.points[0].AbsoluteBPM()
	}
	last := len(e.points) - 1
	if beats >= offsets[last] {
		return e.points[last].AbsoluteBPM()
	}
	for i := last - 1; i >= 0; i-- {
		if beats < offsets[i] || e.durations[i] == 0 {
			continue
		}
		t := (beats - offsets[i]) / e.durations[i]
		from := e.points[i].AbsoluteBPM()
		to := e.points[i+1].AbsoluteBPM()
		return from + (to-from)*e.shape(i)(t)
	}
	return e.points[0].AbsoluteBPM()
}
