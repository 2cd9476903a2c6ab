package selector

import (
	"strings"

	"github.com/3lfar7/tripadvparser/htmltree"
)

// Simple is a predicate over a single element.
type Simple interface {
	Match(e *htmltree.Element) bool
	String() string
}

type Tag struct {
	Name string
}

func (s Tag) Match(e *htmltree.Element) bool {
	return strings.EqualFold(e.Name, s.Name)
}

func (s Tag) String() string {
	return s.Name
}

type Class struct {
	Name string
}

func (s Class) Match(e *htmltree.Element) bool {
	return e.HasClass(s.Name)
}

func (s Class) String() string {
	return "." + s.Name
}

// Attr matches on attribute presence, or on an exact value when HasValue
// is set.
type Attr struct {
	Name     string
	Value    string
	HasValue bool
}

func (s Attr) Match(e *htmltree.Element) bool {
	if s.HasValue {
		return e.AttrEquals(s.Name, s.Value)
	}
	return e.HasAttr(s.Name)
}

func (s Attr) String() string {
	if s.HasValue {
		q := `"`
		if strings.Contains(s.Value, q) {
			q = "'"
		}
		return "[" + s.Name + "=" + q + s.Value + q + "]"
	}
	return "[" + s.Name + "]"
}

// Not matches elements matched by none of its items.
type Not struct {
	Items []Simple
}

func (s Not) Match(e *htmltree.Element) bool {
	for _, item := range s.Items {
		if item.Match(e) {
			return false
		}
	}
	return true
}

func (s Not) String() string {
	items := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, item.String())
	}
	return ":not(" + strings.Join(items, ", ") + ")"
}

// Chain is a conjunction of predicates on one element. The first entry is
// always a Tag.
type Chain []Simple

func (c Chain) Match(e *htmltree.Element) bool {
	for _, s := range c {
		if !s.Match(e) {
			return false
		}
	}
	return true
}

func (c Chain) String() string {
	var b strings.Builder
	for _, s := range c {
		b.WriteString(s.String())
	}
	return b.String()
}

// Path is a descendant path of chains.
type Path []Chain

// Match anchors the last chain on the innermost element of stack and then
// walks the ancestors upward, letting each remaining chain skip over
// ancestors it does not match.
func (p Path) Match(stack []*htmltree.Element) bool {
	if len(p) == 0 {
		return false
	}
	i := len(p) - 1
	for j := len(stack) - 1; j >= 0; j-- {
		if p[i].Match(stack[j]) {
			i--
			if i < 0 {
				return true
			}
		} else if j == len(stack)-1 {
			return false
		}
	}
	return false
}

func (p Path) String() string {
	chains := make([]string, 0, len(p))
	for _, c := range p {
		chains = append(chains, c.String())
	}
	return strings.Join(chains, " ")
}

// Selector is a compiled, immutable list of alternative paths.
type Selector struct {
	alts []Path
	text string
}

// Match returns the index of the first alternative matching stack.
func (s *Selector) Match(stack []*htmltree.Element) (int, bool) {
	for i, p := range s.alts {
		if p.Match(stack) {
			return i, true
		}
	}
	return -1, false
}

// Len returns the number of alternatives.
func (s *Selector) Len() int {
	return len(s.alts)
}

func (s *Selector) Alternatives() []Path {
	return s.alts
}

// Source returns the text the selector was compiled from.
func (s *Selector) Source() string {
	return s.text
}

// String renders the selector in canonical form.
func (s *Selector) String() string {
	alts := make([]string, 0, len(s.alts))
	for _, p := range s.alts {
		alts = append(alts, p.String())
	}
	return strings.Join(alts, ", ")
}
