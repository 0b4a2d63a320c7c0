package score

// Marker is a single notation or playing instruction carried by an event.
// The zero value of every marker is inactive; inactive markers are ignored
// by the annotation stage.
type Marker interface {
	Active() bool
}

// Switch is a plain on/off marker without a payload.
type Switch bool

func (s Switch) Active() bool { return bool(s) }

// Articulation names an articulation such as "staccato" or "marcato".
type Articulation struct {
	Name string
}

func (m Articulation) Active() bool { return m.Name != "" }

// Tremolo asks for an unmeasured stem tremolo with the given flag count.
type Tremolo struct {
	Flags int
}

func (m Tremolo) Active() bool { return m.Flags > 0 }

// Arpeggio rolls a chord in the given direction ("up", "down" or "").
type Arpeggio struct {
	Direction string
	Set       bool
}

func (m Arpeggio) Active() bool { return m.Set }

// ArtificialHarmonic adds a touch pitch the given number of semitones above
// the stopped pitch.
type ArtificialHarmonic struct {
	Semitones int
}

func (m ArtificialHarmonic) Active() bool { return m.Semitones > 0 }

// Fermata names a hold sign ("fermata", "shortfermata", "longfermata").
type Fermata struct {
	Kind string
}

func (m Fermata) Active() bool { return m.Kind != "" }

// Hairpin starts a crescendo ("<"), decrescendo (">") or stops one ("!").
type Hairpin struct {
	Symbol string
}

func (m Hairpin) Active() bool { return m.Symbol != "" }

// Ornamentation draws a numbered ornament above or below the note head.
type Ornamentation struct {
	Direction string
	Count     int
}

func (m Ornamentation) Active() bool { return m.Count > 0 }

// Pedal drives a piano pedal. Kind is "sustain", "sostenuto" or "corda";
// the zero value (pedal up, unset) is the voice-start default.
type Pedal struct {
	Kind string
	Down bool
	Set  bool
}

func (m Pedal) Active() bool { return m.Set }

// StringContactPoint names where the bow meets the string ("ordinario",
// "sul tasto", "sul ponticello", "pizzicato", ...).
type StringContactPoint struct {
	Contact string
}

func (m StringContactPoint) Active() bool { return m.Contact != "" }

// PlayingMarkers is the fixed set of playing instructions an event can
// carry. Field order is meaningless; the annotation order is declared by the
// voice assembler.
type PlayingMarkers struct {
	Articulation       Articulation
	Tremolo            Tremolo
	Arpeggio           Arpeggio
	ArtificialHarmonic ArtificialHarmonic
	BartokPizzicato    Switch
	Fermata            Fermata
	Hairpin            Hairpin
	LaissezVibrer      Switch
	NaturalHarmonic    Switch
	Ornamentation      Ornamentation
	Pedal              Pedal
	Prall              Switch
	StringContactPoint StringContactPoint
	Tie                Switch
}

// BarLine requests a special bar line after the event ("|.", "||", ...).
type BarLine struct {
	Abbreviation string
}

func (m BarLine) Active() bool { return m.Abbreviation != "" }

// Clef switches the staff clef ("treble", "bass", ...).
type Clef struct {
	Name string
}

func (m Clef) Active() bool { return m.Name != "" }

// Ottava transposes the staff by whole octaves. Zero octaves (the voice
// default) is active only when explicitly Set.
type Ottava struct {
	Octaves int
	Set     bool
}

func (m Ottava) Active() bool { return m.Set }

// Markup places free text near the note.
type Markup struct {
	Content   string
	Direction string
}

func (m Markup) Active() bool { return m.Content != "" }

// MarginMarkup places text in the staff margin (instrument names).
type MarginMarkup struct {
	Content string
	Context string
}

func (m MarginMarkup) Active() bool { return m.Content != "" }

// RehearsalMark places a boxed rehearsal letter or number.
type RehearsalMark struct {
	Content string
}

func (m RehearsalMark) Active() bool { return m.Content != "" }

// NotationMarkers is the fixed set of notation instructions an event can
// carry.
type NotationMarkers struct {
	BarLine       BarLine
	Clef          Clef
	MarginMarkup  MarginMarkup
	Markup        Markup
	Ottava        Ottava
	RehearsalMark RehearsalMark
}
