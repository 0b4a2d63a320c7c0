package attachment

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/robmorgan/notate/logger"
	"github.com/robmorgan/notate/score"
	"github.com/robmorgan/notate/tree"
)

// noToggle is embedded by attachments whose policy never consults toggle
// state.
type noToggle struct{}

func (noToggle) Equal(Attachment) bool { return false }
func (noToggle) SuppressAtStart() bool { return false }

// Clef switches the staff clef.
type Clef struct {
	noToggle
	Name string
}

func (a Clef) Kind() string   { return "clef" }
func (a Clef) Policy() Policy { return BangFirst }
func (a Clef) Active() bool   { return a.Name != "" }
func (a Clef) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "clef", Value: a.Name})
	return leaf
}

// Ottava shifts the staff by octaves. The zero shift is the voice default
// and stays silent at the voice start.
type Ottava struct {
	Octaves int
}

func (a Ottava) Kind() string   { return "ottava" }
func (a Ottava) Policy() Policy { return Toggle }
func (a Ottava) Active() bool   { return true }
func (a Ottava) SuppressAtStart() bool {
	return a.Octaves == 0
}
func (a Ottava) Equal(other Attachment) bool {
	o, ok := other.(Ottava)
	return ok && o.Octaves == a.Octaves
}
func (a Ottava) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "ottava", Value: strconv.Itoa(a.Octaves)})
	return leaf
}

// MarginMarkup prints text in the staff margin.
type MarginMarkup struct {
	noToggle
	Content string
	Context string
}

func (a MarginMarkup) Kind() string   { return "margin-markup" }
func (a MarginMarkup) Policy() Policy { return BangFirst }
func (a MarginMarkup) Active() bool   { return a.Content != "" }
func (a MarginMarkup) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	value := a.Content
	if a.Context != "" {
		value = a.Context + ": " + value
	}
	leaf.Attach(tree.Mark{Name: "margin-markup", Value: value})
	return leaf
}

// RehearsalMark prints a boxed rehearsal sign.
type RehearsalMark struct {
	noToggle
	Content string
}

func (a RehearsalMark) Kind() string   { return "rehearsal-mark" }
func (a RehearsalMark) Policy() Policy { return BangFirst }
func (a RehearsalMark) Active() bool   { return a.Content != "" }
func (a RehearsalMark) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "rehearsal-mark", Value: a.Content})
	return leaf
}

// Dynamic prints a dynamic name under the first leaf. Repeating the
// previous dynamic is elided.
type Dynamic struct {
	Value string
}

func (a Dynamic) Kind() string          { return "dynamic" }
func (a Dynamic) Policy() Policy        { return Toggle }
func (a Dynamic) Active() bool          { return a.Value != "" }
func (a Dynamic) SuppressAtStart() bool { return false }
func (a Dynamic) Equal(other Attachment) bool {
	o, ok := other.(Dynamic)
	return ok && o.Value == a.Value
}
func (a Dynamic) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "dynamic", Value: a.Value})
	return leaf
}

// Hairpin starts or stops a crescendo/decrescendo wedge.
type Hairpin struct {
	Symbol string
}

func (a Hairpin) Kind() string          { return "hairpin" }
func (a Hairpin) Policy() Policy        { return Toggle }
func (a Hairpin) Active() bool          { return a.Symbol != "" }
func (a Hairpin) SuppressAtStart() bool { return false }
func (a Hairpin) Equal(other Attachment) bool {
	o, ok := other.(Hairpin)
	return ok && o.Symbol == a.Symbol
}
func (a Hairpin) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "hairpin", Value: a.Symbol})
	return leaf
}

// Arpeggio rolls the chord.
type Arpeggio struct {
	noToggle
	Direction string
}

func (a Arpeggio) Kind() string   { return "arpeggio" }
func (a Arpeggio) Policy() Policy { return BangFirst }
func (a Arpeggio) Active() bool   { return true }
func (a Arpeggio) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "arpeggio", Value: a.Direction})
	return leaf
}

// Articulation repeats an articulation sign on every leaf of the event.
type Articulation struct {
	noToggle
	Value string
}

func (a Articulation) Kind() string   { return "articulation" }
func (a Articulation) Policy() Policy { return BangEach }
func (a Articulation) Active() bool   { return a.Value != "" }
func (a Articulation) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "articulation", Value: a.Value})
	return leaf
}

// ArtificialHarmonic replaces the leaf's single pitch with a stopped pitch
// plus a touch pitch the configured number of semitones above.
type ArtificialHarmonic struct {
	noToggle
	Semitones int
}

func (a ArtificialHarmonic) Kind() string   { return "artificial-harmonic" }
func (a ArtificialHarmonic) Policy() Policy { return BangEach }
func (a ArtificialHarmonic) Active() bool   { return a.Semitones > 0 }
func (a ArtificialHarmonic) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	if leaf.IsRest() || len(leaf.Pitches) != 1 {
		logger.GetProjectLogger().WithFields(logrus.Fields{
			"kind":    a.Kind(),
			"pitches": len(leaf.Pitches),
		}).Warn("artificial harmonic needs exactly one pitch, skipping")
		return leaf
	}
	stopped := leaf.Pitches[0]
	touch := score.FromHertz(stopped.Hertz() * math.Pow(2, float64(a.Semitones)/12))
	replacement := leaf.Clone()
	replacement.Pitches = []score.Pitch{stopped, touch}
	replacement.Attach(tree.Mark{Name: "harmonic-touch", Value: touch.Name()})
	return replacement
}

// NaturalHarmonic flags the note as a flageolet.
type NaturalHarmonic struct {
	noToggle
}

func (a NaturalHarmonic) Kind() string   { return "natural-harmonic" }
func (a NaturalHarmonic) Policy() Policy { return BangFirst }
func (a NaturalHarmonic) Active() bool   { return true }
func (a NaturalHarmonic) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "flageolet"})
	return leaf
}

// BartokPizzicato asks for a snap pizzicato.
type BartokPizzicato struct {
	noToggle
}

func (a BartokPizzicato) Kind() string   { return "bartok-pizzicato" }
func (a BartokPizzicato) Policy() Policy { return BangFirst }
func (a BartokPizzicato) Active() bool   { return true }
func (a BartokPizzicato) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "snap-pizzicato"})
	return leaf
}

// StringContactPoint names where the bow meets the string. "ordinario" is
// the voice-start default; returning from pizzicato prints "arco" with the
// new contact point.
type StringContactPoint struct {
	Contact string
}

func (a StringContactPoint) Kind() string          { return "string-contact-point" }
func (a StringContactPoint) Policy() Policy        { return Toggle }
func (a StringContactPoint) Active() bool          { return a.Contact != "" }
func (a StringContactPoint) SuppressAtStart() bool { return a.Contact == "ordinario" }
func (a StringContactPoint) Equal(other Attachment) bool {
	o, ok := other.(StringContactPoint)
	return ok && o.Contact == a.Contact
}
func (a StringContactPoint) Apply(leaf *tree.Leaf, prev Attachment) *tree.Leaf {
	value := a.Contact
	if p, ok := prev.(StringContactPoint); ok && p.Contact == "pizzicato" && a.Contact != "pizzicato" {
		value = "arco " + value
	}
	leaf.Attach(tree.Mark{Name: "string-contact-point", Value: value})
	return leaf
}

// Pedal raises or lowers a piano pedal. The raised pedal is the voice-start
// default.
type Pedal struct {
	Type string
	Down bool
}

func (a Pedal) Kind() string          { return "pedal" }
func (a Pedal) Policy() Policy        { return Toggle }
func (a Pedal) Active() bool          { return true }
func (a Pedal) SuppressAtStart() bool { return !a.Down }
func (a Pedal) Equal(other Attachment) bool {
	o, ok := other.(Pedal)
	return ok && o.Type == a.Type && o.Down == a.Down
}
func (a Pedal) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	name := "pedal-up"
	if a.Down {
		name = "pedal-down"
	}
	leaf.Attach(tree.Mark{Name: name, Value: a.Type})
	return leaf
}

// Tremolo draws an unmeasured stem tremolo on every sounding leaf.
type Tremolo struct {
	noToggle
	Flags int
}

func (a Tremolo) Kind() string   { return "tremolo" }
func (a Tremolo) Policy() Policy { return BangEach }
func (a Tremolo) Active() bool   { return a.Flags > 0 }
func (a Tremolo) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	if leaf.IsRest() {
		logger.GetProjectLogger().WithFields(logrus.Fields{
			"kind": a.Kind(),
		}).Warn("tremolo on a rest, skipping")
		return leaf
	}
	leaf.Attach(tree.Mark{Name: "tremolo", Value: strconv.Itoa(a.Flags)})
	return leaf
}

// Ornamentation draws a numbered ornament next to the note head.
type Ornamentation struct {
	noToggle
	Direction string
	Count     int
}

func (a Ornamentation) Kind() string   { return "ornamentation" }
func (a Ornamentation) Policy() Policy { return BangFirst }
func (a Ornamentation) Active() bool   { return a.Count > 0 }
func (a Ornamentation) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "ornamentation", Value: fmt.Sprintf("%s:%d", a.Direction, a.Count)})
	return leaf
}

// Prall draws a prall sign.
type Prall struct {
	noToggle
}

func (a Prall) Kind() string   { return "prall" }
func (a Prall) Policy() Policy { return BangFirst }
func (a Prall) Active() bool   { return true }
func (a Prall) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "prall"})
	return leaf
}

// Fermata holds the first leaf.
type Fermata struct {
	noToggle
	Type string
}

func (a Fermata) Kind() string   { return "fermata" }
func (a Fermata) Policy() Policy { return BangFirst }
func (a Fermata) Active() bool   { return a.Type != "" }
func (a Fermata) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "fermata", Value: a.Type})
	return leaf
}

// Markup prints free text above or below the first leaf.
type Markup struct {
	noToggle
	Content   string
	Direction string
}

func (a Markup) Kind() string   { return "markup" }
func (a Markup) Policy() Policy { return BangFirst }
func (a Markup) Active() bool   { return a.Content != "" }
func (a Markup) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	prefix := "^"
	if a.Direction == "down" {
		prefix = "_"
	}
	leaf.Attach(tree.Mark{Name: "markup", Value: prefix + a.Content})
	return leaf
}

// LaissezVibrer lets the last leaf ring.
type LaissezVibrer struct {
	noToggle
}

func (a LaissezVibrer) Kind() string   { return "laissez-vibrer" }
func (a LaissezVibrer) Policy() Policy { return BangLast }
func (a LaissezVibrer) Active() bool   { return true }
func (a LaissezVibrer) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "laissez-vibrer"})
	return leaf
}

// Tie connects the event's last leaf to the following event.
type Tie struct {
	noToggle
}

func (a Tie) Kind() string   { return "tie" }
func (a Tie) Policy() Policy { return BangLast }
func (a Tie) Active() bool   { return true }
func (a Tie) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Tie = true
	return leaf
}

// BarLine requests a special bar line after the event.
type BarLine struct {
	noToggle
	Abbreviation string
}

func (a BarLine) Kind() string   { return "bar-line" }
func (a BarLine) Policy() Policy { return BangLast }
func (a BarLine) Active() bool   { return a.Abbreviation != "" }
func (a BarLine) Apply(leaf *tree.Leaf, _ Attachment) *tree.Leaf {
	leaf.Attach(tree.Mark{Name: "bar-line", Value: a.Abbreviation})
	return leaf
}
