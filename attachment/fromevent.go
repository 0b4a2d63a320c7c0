package attachment

import "github.com/robmorgan/notate/score"

// FromEvent converts an event's markers and volume into attachments, keyed
// by kind. Inactive markers produce no entry; rests never get a dynamic.
func FromEvent(playing score.PlayingMarkers, notation score.NotationMarkers, volume score.Volume, rest bool) map[string]Attachment {
	out := make(map[string]Attachment)
	add := func(a Attachment) { out[a.Kind()] = a }

	if notation.Clef.Active() {
		add(Clef{Name: notation.Clef.Name})
	}
	if notation.Ottava.Active() {
		add(Ottava{Octaves: notation.Ottava.Octaves})
	}
	if notation.MarginMarkup.Active() {
		add(MarginMarkup{Content: notation.MarginMarkup.Content, Context: notation.MarginMarkup.Context})
	}
	if notation.RehearsalMark.Active() {
		add(RehearsalMark{Content: notation.RehearsalMark.Content})
	}
	if notation.Markup.Active() {
		add(Markup{Content: notation.Markup.Content, Direction: notation.Markup.Direction})
	}
	if notation.BarLine.Active() {
		add(BarLine{Abbreviation: notation.BarLine.Abbreviation})
	}

	if !rest && volume != nil {
		if name := volume.DynamicName(); name != "" {
			add(Dynamic{Value: name})
		}
	}

	if playing.Hairpin.Active() {
		add(Hairpin{Symbol: playing.Hairpin.Symbol})
	}
	if playing.Arpeggio.Active() {
		add(Arpeggio{Direction: playing.Arpeggio.Direction})
	}
	if playing.Articulation.Active() {
		add(Articulation{Value: playing.Articulation.Name})
	}
	if playing.ArtificialHarmonic.Active() {
		add(ArtificialHarmonic{Semitones: playing.ArtificialHarmonic.Semitones})
	}
	if playing.NaturalHarmonic.Active() {
		add(NaturalHarmonic{})
	}
	if playing.BartokPizzicato.Active() {
		add(BartokPizzicato{})
	}
	if playing.StringContactPoint.Active() {
		add(StringContactPoint{Contact: playing.StringContactPoint.Contact})
	}
	if playing.Pedal.Active() {
		add(Pedal{Type: playing.Pedal.Kind, Down: playing.Pedal.Down})
	}
	if playing.Tremolo.Active() {
		add(Tremolo{Flags: playing.Tremolo.Flags})
	}
	if playing.Ornamentation.Active() {
		add(Ornamentation{Direction: playing.Ornamentation.Direction, Count: playing.Ornamentation.Count})
	}
	if playing.Prall.Active() {
		add(Prall{})
	}
	if playing.Fermata.Active() {
		add(Fermata{Type: playing.Fermata.Kind})
	}
	if playing.LaissezVibrer.Active() {
		add(LaissezVibrer{})
	}
	if playing.Tie.Active() {
		add(Tie{})
	}

	return out
}
