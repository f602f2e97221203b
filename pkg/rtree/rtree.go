// Package rtree implements an in-memory R-tree over graphics rectangles,
// using Guttman's quadratic split.
//
// The runtime keeps one tree of widget bounds per frame so region queries
// do not walk the whole widget tree.
package rtree

import (
	"math"

	"github.com/go-drift/weave/pkg/graphics"
)

const (
	// MaxEntries is the most entries a node holds before it splits.
	MaxEntries = 8
	// MinEntries is the fewest entries a non-root node keeps; underfull
	// nodes are dissolved on delete and their items reinserted.
	MinEntries = 3
)

type entry[T comparable] struct {
	bounds graphics.Rect
	child  *node[T] // nil in leaves
	item   T
}

type node[T comparable] struct {
	leaf    bool
	entries []entry[T]
}

func (n *node[T]) cover() graphics.Rect {
	if len(n.entries) == 0 {
		return graphics.Rect{}
	}
	r := n.entries[0].bounds
	for _, e := range n.entries[1:] {
		r = union(r, e.bounds)
	}
	return r
}

// Tree is an R-tree of items keyed by their bounds. The zero value is an
// empty tree ready to use. A Tree is not safe for concurrent use.
type Tree[T comparable] struct {
	root *node[T]
	size int
}

// New returns an empty tree.
func New[T comparable]() *Tree[T] {
	return &Tree[T]{root: &node[T]{leaf: true}}
}

func (t *Tree[T]) init() {
	if t.root == nil {
		t.root = &node[T]{leaf: true}
	}
}

// Len returns the number of items.
func (t *Tree[T]) Len() int {
	return t.size
}

// Bounds returns the rectangle covering every item, or the zero Rect for an
// empty tree.
func (t *Tree[T]) Bounds() graphics.Rect {
	if t.root == nil {
		return graphics.Rect{}
	}
	return t.root.cover()
}

// Clear removes every item.
func (t *Tree[T]) Clear() {
	t.root = &node[T]{leaf: true}
	t.size = 0
}

// Insert adds item with the given bounds. The same item may be inserted
// more than once under different bounds.
func (t *Tree[T]) Insert(bounds graphics.Rect, item T) {
	t.init()
	t.insertEntry(entry[T]{bounds: bounds, item: item})
	t.size++
}

func (t *Tree[T]) insertEntry(e entry[T]) {
	if sibling := t.insert(t.root, e); sibling != nil {
		old := t.root
		t.root = &node[T]{entries: []entry[T]{
			{bounds: old.cover(), child: old},
			{bounds: sibling.cover(), child: sibling},
		}}
	}
}

// insert places e in the subtree at n and returns a new sibling when n split.
func (t *Tree[T]) insert(n *node[T], e entry[T]) *node[T] {
	if n.leaf {
		n.entries = append(n.entries, e)
	} else {
		i := chooseSubtree(n, e.bounds)
		child := n.entries[i].child
		sibling := t.insert(child, e)
		n.entries[i].bounds = child.cover()
		if sibling != nil {
			n.entries = append(n.entries, entry[T]{bounds: sibling.cover(), child: sibling})
		}
	}
	if len(n.entries) > MaxEntries {
		return split(n)
	}
	return nil
}

// chooseSubtree picks the entry needing the least enlargement, breaking ties
// by smaller area.
func chooseSubtree[T comparable](n *node[T], r graphics.Rect) int {
	best := 0
	bestGrowth, bestArea := math.Inf(1), math.Inf(1)
	for i, e := range n.entries {
		a := area(e.bounds)
		growth := area(union(e.bounds, r)) - a
		if growth < bestGrowth || (growth == bestGrowth && a < bestArea) {
			best, bestGrowth, bestArea = i, growth, a
		}
	}
	return best
}

// split divides an overfull node in two. n keeps the first group and the
// returned node holds the second.
func split[T comparable](n *node[T]) *node[T] {
	entries := n.entries
	s1, s2 := pickSeeds(entries)

	g1 := []entry[T]{entries[s1]}
	g2 := []entry[T]{entries[s2]}
	b1, b2 := entries[s1].bounds, entries[s2].bounds

	rest := make([]entry[T], 0, len(entries)-2)
	for i, e := range entries {
		if i != s1 && i != s2 {
			rest = append(rest, e)
		}
	}

	for len(rest) > 0 {
		// One group must take everything left to reach the minimum.
		if len(g1)+len(rest) <= MinEntries {
			g1 = append(g1, rest...)
			break
		}
		if len(g2)+len(rest) <= MinEntries {
			g2 = append(g2, rest...)
			break
		}

		next, d1, d2 := pickNext(rest, b1, b2)
		e := rest[next]
		rest = append(rest[:next], rest[next+1:]...)

		toFirst := d1 < d2
		if d1 == d2 {
			a1, a2 := area(b1), area(b2)
			toFirst = a1 < a2 || (a1 == a2 && len(g1) <= len(g2))
		}
		if toFirst {
			g1 = append(g1, e)
			b1 = union(b1, e.bounds)
		} else {
			g2 = append(g2, e)
			b2 = union(b2, e.bounds)
		}
	}

	n.entries = g1
	return &node[T]{leaf: n.leaf, entries: g2}
}

// pickSeeds returns the pair that would waste the most area together.
func pickSeeds[T comparable](entries []entry[T]) (int, int) {
	s1, s2 := 0, 1
	worst := math.Inf(-1)
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i].bounds, entries[j].bounds
			waste := area(union(a, b)) - area(a) - area(b)
			if waste > worst {
				worst, s1, s2 = waste, i, j
			}
		}
	}
	return s1, s2
}

// pickNext returns the entry with the strongest preference for one group,
// with its enlargement cost for each.
func pickNext[T comparable](rest []entry[T], b1, b2 graphics.Rect) (int, float64, float64) {
	best, bestDiff := 0, -1.0
	var bestD1, bestD2 float64
	a1, a2 := area(b1), area(b2)
	for i, e := range rest {
		d1 := area(union(b1, e.bounds)) - a1
		d2 := area(union(b2, e.bounds)) - a2
		if diff := math.Abs(d1 - d2); diff > bestDiff {
			best, bestDiff, bestD1, bestD2 = i, diff, d1, d2
		}
	}
	return best, bestD1, bestD2
}

// Delete removes one occurrence of item stored under exactly bounds and
// reports whether it was found.
func (t *Tree[T]) Delete(bounds graphics.Rect, item T) bool {
	if t.root == nil {
		return false
	}
	var orphans []entry[T]
	if !t.remove(t.root, bounds, item, &orphans) {
		return false
	}
	t.size--

	for !t.root.leaf && len(t.root.entries) == 1 {
		t.root = t.root.entries[0].child
	}
	if !t.root.leaf && len(t.root.entries) == 0 {
		t.root = &node[T]{leaf: true}
	}
	for _, e := range orphans {
		t.insertEntry(e)
	}
	return true
}

// remove deletes item below n. Children left underfull are dissolved and
// their leaf entries appended to orphans for reinsertion.
func (t *Tree[T]) remove(n *node[T], bounds graphics.Rect, item T, orphans *[]entry[T]) bool {
	if n.leaf {
		for i, e := range n.entries {
			if e.item == item && e.bounds == bounds {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				return true
			}
		}
		return false
	}
	for i := range n.entries {
		e := &n.entries[i]
		if !encloses(e.bounds, bounds) {
			continue
		}
		if !t.remove(e.child, bounds, item, orphans) {
			continue
		}
		if len(e.child.entries) < MinEntries {
			collectLeaves(e.child, orphans)
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
		} else {
			e.bounds = e.child.cover()
		}
		return true
	}
	return false
}

func collectLeaves[T comparable](n *node[T], out *[]entry[T]) {
	if n.leaf {
		*out = append(*out, n.entries...)
		return
	}
	for _, e := range n.entries {
		collectLeaves(e.child, out)
	}
}

// Search returns the items whose bounds share area with r.
func (t *Tree[T]) Search(r graphics.Rect) []T {
	var out []T
	t.Visit(r, func(_ graphics.Rect, item T) bool {
		out = append(out, item)
		return true
	})
	return out
}

// Visit calls fn for each item whose bounds share area with r until fn
// returns false.
func (t *Tree[T]) Visit(r graphics.Rect, fn func(bounds graphics.Rect, item T) bool) {
	if t.root == nil {
		return
	}
	visit(t.root, fn, func(b graphics.Rect) bool { return touches(b, r) },
		func(b graphics.Rect) bool { return b.Overlaps(r) })
}

// SearchPoint returns the items whose bounds contain p, using the same
// half-open edges as graphics.Rect.Contains.
func (t *Tree[T]) SearchPoint(p graphics.Offset) []T {
	if t.root == nil {
		return nil
	}
	var out []T
	visit(t.root, func(_ graphics.Rect, item T) bool {
		out = append(out, item)
		return true
	}, func(b graphics.Rect) bool {
		return p.X >= b.Left && p.X <= b.Right && p.Y >= b.Top && p.Y <= b.Bottom
	}, func(b graphics.Rect) bool { return b.Contains(p) })
	return out
}

func visit[T comparable](n *node[T], fn func(graphics.Rect, T) bool, branch, leaf func(graphics.Rect) bool) bool {
	for _, e := range n.entries {
		if n.leaf {
			if leaf(e.bounds) && !fn(e.bounds, e.item) {
				return false
			}
			continue
		}
		if branch(e.bounds) && !visit(e.child, fn, branch, leaf) {
			return false
		}
	}
	return true
}

// union covers both rectangles, including degenerate ones, unlike
// graphics.Rect.Union which drops empty operands.
func union(a, b graphics.Rect) graphics.Rect {
	return graphics.Rect{
		Left:   math.Min(a.Left, b.Left),
		Top:    math.Min(a.Top, b.Top),
		Right:  math.Max(a.Right, b.Right),
		Bottom: math.Max(a.Bottom, b.Bottom),
	}
}

func area(r graphics.Rect) float64 {
	return math.Max(0, r.Width()) * math.Max(0, r.Height())
}

// touches is an edge-inclusive intersection test for pruning branches.
func touches(a, b graphics.Rect) bool {
	return a.Left <= b.Right && b.Left <= a.Right && a.Top <= b.Bottom && b.Top <= a.Bottom
}

func encloses(outer, inner graphics.Rect) bool {
	return outer.Left <= inner.Left && outer.Top <= inner.Top &&
		outer.Right >= inner.Right && outer.Bottom >= inner.Bottom
}
