// Package score models the musical surface that the conversion pipeline
// consumes: sequential events with exact rational durations, pitch and
// volume objects, and the fixed sets of playing and notation markers.
package score

import "math/big"

// Event is one entry of a sequential voice. Durations are counted in beats
// (a duration of 1 is one quarter note). An event with no pitches is a rest.
type Event struct {
	Duration *big.Rat
	Pitches  []Pitch
	Volume   Volume
	Playing  PlayingMarkers
	Notation NotationMarkers
}

// Note builds a sounding event.
func Note(duration *big.Rat, pitches ...Pitch) Event {
	return Event{Duration: duration, Pitches: pitches}
}

// Rest builds a silent event.
func Rest(duration *big.Rat) Event {
	return Event{Duration: duration}
}

// IsRest is true when the event has no pitch content.
func (e Event) IsRest() bool {
	return len(e.Pitches) == 0
}
