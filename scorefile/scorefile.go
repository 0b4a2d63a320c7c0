// Package scorefile reads the YAML score description: a time-signature
// list (the last entry repeats past the end), an optional tempo curve and
// the sequential events with their pitches, dynamics and markers.
package scorefile

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robmorgan/notate/faults"
	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tempo"
)

// File is one parsed score description.
type File struct {
	Title          string
	TimeSignatures []score.TimeSignature
	Tempo          *tempo.Envelope
	Events         []score.Event
}

type rawFile struct {
	Title          string     `yaml:"title"`
	TimeSignatures []string   `yaml:"time_signatures"`
	Tempo          *rawTempo  `yaml:"tempo"`
	DefaultDynamic string     `yaml:"default_dynamic"`
	Events         []rawEvent `yaml:"events"`
}

type rawTempo struct {
	Points    []rawTempoPoint `yaml:"points"`
	Durations []float64       `yaml:"durations"`
}

type rawTempoPoint struct {
	BPM       float64   `yaml:"bpm"`
	Range     []float64 `yaml:"range"`
	Reference float64   `yaml:"reference"`
	Label     string    `yaml:"label"`
}

type rawEvent struct {
	Duration  string               `yaml:"duration"`
	Pitches   []string             `yaml:"pitches"`
	Dynamic   string               `yaml:"dynamic"`
	Amplitude *float64             `yaml:"amplitude"`
	Markers   map[string]yaml.Node `yaml:"markers"`
}

// Load reads and parses a score file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Configf("reading score file %s: %v", path, err)
	}
	return Parse(data)
}

// Parse parses a YAML score description.
func Parse(data []byte) (*File, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, faults.Configf("malformed score file: %v", err)
	}

	f := &File{Title: raw.Title}

	if len(raw.TimeSignatures) == 0 {
		return nil, faults.Configf("score file declares no time signatures")
	}
	for _, s := range raw.TimeSignatures {
		ts, err := score.ParseTimeSignature(s)
		if err != nil {
			return nil, err
		}
		f.TimeSignatures = append(f.TimeSignatures, ts)
	}

	if raw.Tempo != nil {
		env, err := parseTempo(raw.Tempo)
		if err != nil {
			return nil, err
		}
		f.Tempo = env
	}

	if raw.DefaultDynamic != "" && !score.IsValidDynamic(raw.DefaultDynamic) {
		return nil, faults.Configf("unknown default dynamic %q", raw.DefaultDynamic)
	}

	for i, re := range raw.Events {
		e, err := parseEvent(i, re)
		if err != nil {
			return nil, err
		}
		if e.Volume == nil && !e.IsRest() && raw.DefaultDynamic != "" {
			e.Volume = score.DynamicVolume(raw.DefaultDynamic)
		}
		f.Events = append(f.Events, e)
	}
	return f, nil
}

func parseTempo(raw *rawTempo) (*tempo.Envelope, error) {
	points := make([]tempo.Point, len(raw.Points))
	for i, rp := range raw.Points {
		p := tempo.Point{BPM: rp.BPM, Reference: rp.Reference, Label: rp.Label}
		switch len(rp.Range) {
		case 0:
		case 2:
			p.Range = [2]float64{rp.Range[0], rp.Range[1]}
		default:
			return nil, faults.Configf("tempo point %d: range needs exactly two values", i)
		}
		points[i] = p
	}
	return tempo.NewEnvelope(points, raw.Durations)
}

func parseEvent(i int, raw rawEvent) (score.Event, error) {
	var e score.Event

	d, err := parseDuration(raw.Duration)
	if err != nil {
		return e, faults.Configf("event %d: %v", i, err)
	}
	e.Duration = d

	for _, name := range raw.Pitches {
		p, err := parsePitch(name)
		if err != nil {
			return e, faults.Configf("event %d: %v", i, err)
		}
		e.Pitches = append(e.Pitches, p)
	}

	if raw.Dynamic != "" && raw.Amplitude != nil {
		return e, faults.Configf("event %d: dynamic and amplitude are mutually exclusive", i)
	}
	if raw.Dynamic != "" {
		if !score.IsValidDynamic(raw.Dynamic) {
			return e, faults.Configf("event %d: unknown dynamic %q", i, raw.Dynamic)
		}
		e.Volume = score.DynamicVolume(raw.Dynamic)
	}
	if raw.Amplitude != nil {
		e.Volume = score.AmplitudeVolume(*raw.Amplitude)
	}

	for name, node := range raw.Markers {
		if err := decodeMarker(&e, name, node); err != nil {
			return e, faults.Configf("event %d: %v", i, err)
		}
	}
	return e, nil
}

// parseDuration reads a beat count: "1", "3/2" or "0.5".
func parseDuration(s string) (*big.Rat, error) {
	if s == "" {
		return nil, fmt.Errorf("missing duration")
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok || r.Sign() < 0 {
		return nil, fmt.Errorf("invalid duration %q", s)
	}
	return r, nil
}

// parsePitch reads a note name in lilypond octave style ("cs'", "g,", bare
// "c" for octave 3), a scientific name ("cs5"), or a frequency ("440hz").
// Lilypond names round-trip with Pitch.Name.
func parsePitch(s string) (score.Pitch, error) {
	if strings.HasSuffix(s, "hz") {
		hz, err := strconv.ParseFloat(strings.TrimSuffix(s, "hz"), 64)
		if err != nil || hz <= 0 {
			return nil, fmt.Errorf("invalid frequency %q", s)
		}
		return score.FromHertz(hz), nil
	}
	if i := strings.IndexAny(s, "',"); i >= 0 {
		up := strings.Count(s[i:], "'")
		down := strings.Count(s[i:], ",")
		if up > 0 && down > 0 || up+down != len(s)-i {
			return nil, fmt.Errorf("malformed pitch name %q", s)
		}
		return score.ParseNamedPitch(s[:i] + strconv.Itoa(3+up-down))
	}
	if strings.IndexAny(s, "0123456789") < 0 {
		// a bare lilypond name sits in octave 3
		return score.ParseNamedPitch(s + "3")
	}
	return score.ParseNamedPitch(s)
}

func decodeMarker(e *score.Event, name string, node yaml.Node) error {
	bad := func(err error) error {
		return fmt.Errorf("marker %q: %v", name, err)
	}

	switch name {
	case "articulation":
		return decodeString(node, bad, func(s string) { e.Playing.Articulation.Name = s })
	case "tremolo":
		var flags int
		if err := node.Decode(&flags); err != nil {
			return bad(err)
		}
		e.Playing.Tremolo.Flags = flags
	case "arpeggio":
		return decodeString(node, bad, func(s string) {
			e.Playing.Arpeggio = score.Arpeggio{Direction: s, Set: true}
		})
	case "artificial-harmonic":
		var semitones int
		if err := node.Decode(&semitones); err != nil {
			return bad(err)
		}
		e.Playing.ArtificialHarmonic.Semitones = semitones
	case "bartok-pizzicato":
		return decodeSwitch(node, bad, &e.Playing.BartokPizzicato)
	case "fermata":
		return decodeString(node, bad, func(s string) { e.Playing.Fermata.Kind = s })
	case "hairpin":
		return decodeString(node, bad, func(s string) { e.Playing.Hairpin.Symbol = s })
	case "laissez-vibrer":
		return decodeSwitch(node, bad, &e.Playing.LaissezVibrer)
	case "natural-harmonic":
		return decodeSwitch(node, bad, &e.Playing.NaturalHarmonic)
	case "ornamentation":
		var o struct {
			Direction string `yaml:"direction"`
			Count     int    `yaml:"count"`
		}
		if err := node.Decode(&o); err != nil {
			return bad(err)
		}
		e.Playing.Ornamentation = score.Ornamentation{Direction: o.Direction, Count: o.Count}
	case "pedal":
		var p struct {
			Type string `yaml:"type"`
			Down bool   `yaml:"down"`
		}
		if err := node.Decode(&p); err != nil {
			return bad(err)
		}
		e.Playing.Pedal = score.Pedal{Kind: p.Type, Down: p.Down, Set: true}
	case "prall":
		return decodeSwitch(node, bad, &e.Playing.Prall)
	case "string-contact-point":
		return decodeString(node, bad, func(s string) { e.Playing.StringContactPoint.Contact = s })
	case "tie":
		return decodeSwitch(node, bad, &e.Playing.Tie)
	case "bar-line":
		return decodeString(node, bad, func(s string) { e.Notation.BarLine.Abbreviation = s })
	case "clef":
		return decodeString(node, bad, func(s string) { e.Notation.Clef.Name = s })
	case "margin-markup":
		var m struct {
			Content string `yaml:"content"`
			Context string `yaml:"context"`
		}
		if err := node.Decode(&m); err != nil {
			return bad(err)
		}
		e.Notation.MarginMarkup = score.MarginMarkup{Content: m.Content, Context: m.Context}
	case "markup":
		var m struct {
			Content   string `yaml:"content"`
			Direction string `yaml:"direction"`
		}
		if err := node.Decode(&m); err != nil {
			return bad(err)
		}
		e.Notation.Markup = score.Markup{Content: m.Content, Direction: m.Direction}
	case "ottava":
		var octaves int
		if err := node.Decode(&octaves); err != nil {
			return bad(err)
		}
		e.Notation.Ottava = score.Ottava{Octaves: octaves, Set: true}
	case "rehearsal-mark":
		return decodeString(node, bad, func(s string) { e.Notation.RehearsalMark.Content = s })
	default:
		return fmt.Errorf("unknown marker %q", name)
	}
	return nil
}

func decodeString(node yaml.Node, bad func(error) error, set func(string)) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return bad(err)
	}
	set(s)
	return nil
}

func decodeSwitch(node yaml.Node, bad func(error) error, sw *score.Switch) error {
	var on bool
	if err := node.Decode(&on); err != nil {
		return bad(err)
	}
	*sw = score.Switch(on)
	return nil
}
