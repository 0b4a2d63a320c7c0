package tree

import (
	"fmt"
	"math/big"

	"github.com/robmorgan/notate/faults"
)

// Path addresses a leaf from the voice root: bar index first, then one child
// index per nesting level.
type Path []int

func (p Path) String() string {
	return fmt.Sprint([]int(p))
}

// Clone copies the path.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

func (v *Voice) nodeAt(p Path) (Node, error) {
	if len(p) < 2 {
		return nil, faults.Invariantf("path %v is too short", p)
	}
	if p[0] < 0 || p[0] >= len(v.Bars) {
		return nil, faults.Invariantf("path %v: no bar %d", p, p[0])
	}
	var node Node
	children := v.Bars[p[0]].Children
	for depth, index := range p[1:] {
		if index < 0 || index >= len(children) {
			return nil, faults.Invariantf("path %v dangles at depth %d", p, depth+1)
		}
		node = children[index]
		if tuplet, ok := node.(*Tuplet); ok {
			children = tuplet.Children
		} else if depth != len(p)-2 {
			return nil, faults.Invariantf("path %v descends into a leaf", p)
		}
	}
	return node, nil
}

// LeafAt resolves a path to its leaf.
func (v *Voice) LeafAt(p Path) (*Leaf, error) {
	node, err := v.nodeAt(p)
	if err != nil {
		return nil, err
	}
	leaf, ok := node.(*Leaf)
	if !ok {
		return nil, faults.Invariantf("path %v addresses a tuplet, not a leaf", p)
	}
	return leaf, nil
}

// Replace swaps the leaf at a path for another leaf.
func (v *Voice) Replace(p Path, leaf *Leaf) error {
	if _, err := v.LeafAt(p); err != nil {
		return err
	}
	children := v.Bars[p[0]].Children
	for _, index := range p[1 : len(p)-1] {
		children = children[index].(*Tuplet).Children
	}
	children[p[len(p)-1]] = leaf
	return nil
}

// Walk visits every leaf depth-first, left to right.
func (v *Voice) Walk(visit func(p Path, l *Leaf)) {
	for barIndex, bar := range v.Bars {
		walkNodes(Path{barIndex}, bar.Children, visit)
	}
}

func walkNodes(prefix Path, nodes []Node, visit func(p Path, l *Leaf)) {
	for i, node := range nodes {
		p := append(prefix.Clone(), i)
		switch n := node.(type) {
		case *Leaf:
			visit(p, n)
		case *Tuplet:
			walkNodes(p, n.Children, visit)
		}
	}
}

// Leaves returns every leaf in walk order.
func (v *Voice) Leaves() []*Leaf {
	var out []*Leaf
	v.Walk(func(_ Path, l *Leaf) {
		out = append(out, l)
	})
	return out
}

// LeafPaths returns the path of every leaf in walk order.
func (v *Voice) LeafPaths() []Path {
	var out []Path
	v.Walk(func(p Path, _ *Leaf) {
		out = append(out, p)
	})
	return out
}

// LeafOnsets returns the absolute sounding onset of every leaf in walk
// order, in whole notes from the voice start.
func (v *Voice) LeafOnsets() []*big.Rat {
	var out []*big.Rat
	onset := new(big.Rat)
	for _, bar := range v.Bars {
		onsetNodes(bar.Children, big.NewRat(1, 1), onset, &out)
	}
	return out
}

func onsetNodes(nodes []Node, scale, onset *big.Rat, out *[]*big.Rat) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *Leaf:
			*out = append(*out, new(big.Rat).Set(onset))
			step := new(big.Rat).Mul(n.Written, scale)
			onset.Add(onset, step)
		case *Tuplet:
			onsetNodes(n.Children, new(big.Rat).Mul(scale, n.Prolation), onset, out)
		}
	}
}

// Check verifies that every bar's content duration matches its time
// signature.
func (v *Voice) Check() error {
	for i, bar := range v.Bars {
		want := bar.Signature.Duration()
		got := bar.ContentDuration()
		if got.Cmp(want) != 0 {
			return faults.Invariantf("bar %d holds %s of content for a %s signature",
				i, got.RatString(), bar.Signature)
		}
	}
	return nil
}
