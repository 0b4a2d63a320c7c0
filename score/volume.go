package score

import "math"

// Volume is anything with a physical amplitude and a dynamic name.
type Volume interface {
	Amplitude() float64
	DynamicName() string
}

// dynamicDecibels orders the supported dynamic names from quiet to loud.
var dynamicDecibels = []struct {
	name     string
	decibels float64
}{
	{"ppp", -36},
	{"pp", -30},
	{"p", -24},
	{"mp", -18},
	{"mf", -12},
	{"f", -6},
	{"ff", -3},
	{"fff", 0},
}

// DynamicVolume is a named western dynamic, "ppp" through "fff".
type DynamicVolume string

func (v DynamicVolume) Amplitude() float64 {
	for _, entry := range dynamicDecibels {
		if entry.name == string(v) {
			return math.Pow(10, entry.decibels/20)
		}
	}
	return 0
}

func (v DynamicVolume) DynamicName() string {
	return string(v)
}

// IsValidDynamic reports whether name is a supported dynamic.
func IsValidDynamic(name string) bool {
	for _, entry := range dynamicDecibels {
		if entry.name == name {
			return true
		}
	}
	return false
}

// AmplitudeVolume is a direct linear amplitude in [0, 1].
type AmplitudeVolume float64

func (v AmplitudeVolume) Amplitude() float64 {
	return float64(v)
}

// DynamicName maps the amplitude onto the closest named dynamic. Zero (or
// negative) amplitude has no dynamic name.
func (v AmplitudeVolume) DynamicName() string {
	if v <= 0 {
		return ""
	}
	decibels := 20 * math.Log10(float64(v))
	best := dynamicDecibels[0].name
	bestDistance := math.Abs(dynamicDecibels[0].decibels - decibels)
	for _, entry := range dynamicDecibels[1:] {
		distance := math.Abs(entry.decibels - decibels)
		if distance < bestDistance {
			best = entry.name
			bestDistance = distance
		}
	}
	return best
}
