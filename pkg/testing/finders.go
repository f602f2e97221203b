package testing

import (
	"fmt"
	"strings"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/graphics"
)

// Finder locates widgets in a tree.
type Finder interface {
	// Evaluate returns all matching widgets under root, depth-first pre-order.
	Evaluate(root core.Widget) []core.Widget
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	widgets []core.Widget
	finder  Finder
}

// First returns the first match. Panics if there is none.
func (r FinderResult) First() core.Widget {
	if len(r.widgets) == 0 {
		panic(fmt.Sprintf("finder found no widgets: %s", r.describe()))
	}
	return r.widgets[0]
}

// FirstOrNil returns the first match, or nil.
func (r FinderResult) FirstOrNil() core.Widget {
	if len(r.widgets) == 0 {
		return nil
	}
	return r.widgets[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) core.Widget {
	if index < 0 || index >= len(r.widgets) {
		panic(fmt.Sprintf("finder index %d out of range (found %d): %s", index, len(r.widgets), r.describe()))
	}
	return r.widgets[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []core.Widget {
	return r.widgets
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.widgets)
}

// Exists reports whether anything matched.
func (r FinderResult) Exists() bool {
	return len(r.widgets) > 0
}

// Bounds returns the surface bounds of the first match.
func (r FinderResult) Bounds() graphics.Rect {
	return r.First().Base().Bounds()
}

// Keys returns the keys of all matches.
func (r FinderResult) Keys() []string {
	keys := make([]string, len(r.widgets))
	for i, w := range r.widgets {
		keys[i] = w.Key()
	}
	return keys
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

type predicateFinder struct {
	fn   func(core.Widget) bool
	desc string
}

func (f *predicateFinder) Evaluate(root core.Widget) []core.Widget {
	var found []core.Widget
	root.Base().Walk(func(w core.Widget) bool {
		if f.fn(w) {
			found = append(found, w)
		}
		return true
	})
	return found
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate matches widgets satisfying fn.
func ByPredicate(fn func(core.Widget) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// ByKey matches widgets whose key equals key, explicit or automatic.
func ByKey(key string) Finder {
	return &predicateFinder{
		fn:   func(w core.Widget) bool { return w.Key() == key },
		desc: fmt.Sprintf("ByKey(%q)", key),
	}
}

// ByType matches widgets of a registered type name.
func ByType(typ string) Finder {
	return &predicateFinder{
		fn:   func(w core.Widget) bool { return w.Base().Type() == typ },
		desc: fmt.Sprintf("ByType(%s)", typ),
	}
}

// ByText matches Text widgets with exactly this content.
func ByText(text string) Finder {
	return &predicateFinder{
		fn:   func(w core.Widget) bool { return isText(w) && w.Base().Props().String("text", "") == text },
		desc: fmt.Sprintf("ByText(%q)", text),
	}
}

// ByTextContaining matches Text widgets whose content contains substring.
func ByTextContaining(substring string) Finder {
	return &predicateFinder{
		fn: func(w core.Widget) bool {
			return isText(w) && strings.Contains(w.Base().Props().String("text", ""), substring)
		},
		desc: fmt.Sprintf("ByTextContaining(%q)", substring),
	}
}

func isText(w core.Widget) bool {
	return w.Base().Type() == "Text"
}

type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root core.Widget) []core.Widget {
	var found []core.Widget
	seen := make(map[core.Widget]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		for _, child := range ancestor.Base().Children() {
			for _, match := range f.matching.Evaluate(child) {
				if !seen[match] {
					seen[match] = true
					found = append(found, match)
				}
			}
		}
	}
	return found
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant matches widgets satisfying matching below a widget matching of.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}
