package tempo

import (
	"math/big"

	"github.com/robmorgan/notate/attachment"
	"github.com/robmorgan/notate/utils"
)

// Placement binds a tempo attachment to a leaf, by index into the voice's
// leaf sequence.
type Placement struct {
	Leaf       int
	Attachment attachment.Attachment
}

// TimedAttachment is a tempo attachment at an absolute offset in beats,
// before it has been bound to a leaf.
type TimedAttachment struct {
	Offset     float64
	Attachment attachment.Tempo
}

// Attachments walks the curve and produces one tempo attachment per point
// that spans time. A mark is elided (PrintMark false) when the nearest
// previous time-spanning point already printed the same tempo; an elided
// mark that also closes a change span prints "a tempo" instead.
func (e *Envelope) Attachments() []TimedAttachment {
	offsets := e.Offsets()
	var out []TimedAttachment
	var produced []attachment.Tempo
	for i := range e.points {
		if i == len(e.points)-1 || e.durations[i] <= 0 {
			continue
		}
		att := e.pointAttachment(i, produced)
		out = append(out, TimedAttachment{Offset: offsets[i], Attachment: att})
		produced = append(produced, att)
	}
	return out
}

func (e *Envelope) pointAttachment(i int, produced []attachment.Tempo) attachment.Tempo {
	att := attachment.Tempo{
		ChangeIndication: e.changeIndication(i),
		StopChange:       len(produced) > 0 && produced[len(produced)-1].ChangeIndication != "",
	}
	p := e.points[i]
	switch {
	case e.shallWrite(i):
		// 1/(4/reference): a half-note reference prints "2=".
		att.ReferenceDuration = new(big.Rat).SetFloat64(p.reference() / 4)
		if p.Range[0] > 0 && p.Range[1] > p.Range[0] {
			att.UnitsRange = p.Range
		} else {
			att.UnitsPerMinute = p.BPM
		}
		att.Textual = p.Label
		att.PrintMark = true
	case att.StopChange:
		att.Textual = "a tempo"
		att.PrintMark = true
	}
	return att
}

// shallWrite reports whether point i prints a fresh metronome mark: it does
// unless the nearest previous point that spans time equals it.
func (e *Envelope) shallWrite(i int) bool {
	for j := i - 1; j >= 0; j-- {
		if e.durations[j] <= 0 {
			continue
		}
		return !e.points[j].Equal(e.points[i])
	}
	return true
}

// changeIndication compares absolute tempi of point i and its successor.
func (e *Envelope) changeIndication(i int) string {
	if i+1 >= len(e.points) {
		return ""
	}
	cur, next := e.points[i].AbsoluteBPM(), e.points[i+1].AbsoluteBPM()
	switch {
	case next > cur:
		return "acc."
	case next < cur:
		return "rit."
	default:
		return ""
	}
}

// Annotate binds the curve's attachments to leaves by onset. Onsets are the
// voice's leaf onsets in beats; each attachment lands on the leaf whose
// onset is closest to its offset (the earlier leaf on ties), and a span
// close lands one leaf before the mark that requests it.
func Annotate(e *Envelope, onsets []float64) []Placement {
	var out []Placement
	for _, ta := range e.Attachments() {
		idx := utils.FindClosestIndex(ta.Offset, onsets)
		if idx < 0 {
			continue
		}
		if ta.Attachment.StopChange && idx > 0 {
			out = append(out, Placement{Leaf: idx - 1, Attachment: attachment.TempoSpanStop{}})
		}
		out = append(out, Placement{Leaf: idx, Attachment: ta.Attachment})
	}
	return out
}
