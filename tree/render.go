package tree

import (
	"fmt"
	"math/big"
	"strings"
)

// WrittenName renders a written duration in lilypond style ("4" for a
// quarter, "4." for a dotted quarter). Durations without a notatable name
// fall back to their rational form.
func WrittenName(d *big.Rat) string {
	num := d.Num().Int64()
	den := d.Denom().Int64()
	switch num {
	case 1:
		return fmt.Sprintf("%d", den)
	case 2:
		return "\\breve"
	case 3:
		return fmt.Sprintf("%d.", den/2)
	case 7:
		return fmt.Sprintf("%d..", den/4)
	}
	return d.RatString()
}

func (l *Leaf) render(b *strings.Builder) {
	switch {
	case l.MultiMeasure:
		b.WriteString("R" + WrittenName(l.Written))
	case l.Spacer:
		b.WriteString("s" + WrittenName(l.Written))
	case l.IsRest():
		b.WriteString("r" + WrittenName(l.Written))
	case len(l.Pitches) == 1:
		b.WriteString(l.Pitches[0].Name() + WrittenName(l.Written))
	default:
		names := make([]string, len(l.Pitches))
		for i, p := range l.Pitches {
			names[i] = p.Name()
		}
		b.WriteString("<" + strings.Join(names, " ") + ">" + WrittenName(l.Written))
	}
	if l.Tie {
		b.WriteString("~")
	}
	for _, m := range l.Marks {
		if m.Value == "" {
			fmt.Fprintf(b, " \\%s", m.Name)
		} else {
			fmt.Fprintf(b, " \\%s{%s}", m.Name, m.Value)
		}
	}
}

func renderNodes(b *strings.Builder, nodes []Node) {
	for i, node := range nodes {
		if i > 0 {
			b.WriteString(" ")
		}
		switch n := node.(type) {
		case *Leaf:
			n.render(b)
		case *Tuplet:
			fmt.Fprintf(b, "\\times %s { ", n.Prolation.RatString())
			renderNodes(b, n.Children)
			b.WriteString(" }")
		}
	}
}

// String renders the voice in a stable, lilypond-flavored textual form used
// for debugging and CLI output.
func (v *Voice) String() string {
	var b strings.Builder
	for _, m := range v.Marks {
		if m.Value == "" {
			fmt.Fprintf(&b, "\\%s\n", m.Name)
		} else {
			fmt.Fprintf(&b, "\\%s{%s}\n", m.Name, m.Value)
		}
	}
	for i, bar := range v.Bars {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%%{%s%%} ", bar.Signature)
		renderNodes(&b, bar.Children)
	}
	return b.String()
}
