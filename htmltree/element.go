package htmltree

import "strings"

// 没有结束标签的元素
var voidTags = map[string]struct{}{
	"area":   {},
	"base":   {},
	"br":     {},
	"col":    {},
	"embed":  {},
	"hr":     {},
	"img":    {},
	"input":  {},
	"keygen": {},
	"link":   {},
	"meta":   {},
	"param":  {},
	"source": {},
	"track":  {},
	"wbr":    {},
}

// IsVoid reports whether the tag never receives an end tag.
func IsVoid(name string) bool {
	_, ok := voidTags[strings.ToLower(name)]
	return ok
}

type Attribute struct {
	Key string
	Val string
}

// Element is one opened tag. It is only valid until the close callback
// that pops it returns.
type Element struct {
	Name    string
	Attrs   map[string]string
	Classes map[string]struct{}
	Texts   []string // 直接子文本节点，按文档顺序
}

// NewElement builds an element from the attributes of a start tag.
// Repeated attributes keep the last value.
func NewElement(name string, attrs []Attribute) *Element {
	e := &Element{
		Name:  name,
		Attrs: make(map[string]string, len(attrs)),
	}
	for _, a := range attrs {
		e.Attrs[a.Key] = a.Val
	}

	fields := strings.Fields(e.Attrs["class"])
	e.Classes = make(map[string]struct{}, len(fields))
	for _, c := range fields {
		e.Classes[c] = struct{}{}
	}

	return e
}

func (e *Element) HasClass(name string) bool {
	_, ok := e.Classes[name]
	return ok
}

func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attrs[name]
	return ok
}

func (e *Element) AttrEquals(name, value string) bool {
	v, ok := e.Attrs[name]
	return ok && v == value
}

// Text returns the text node at index i. Negative indexes count from the end.
func (e *Element) Text(i int) (string, bool) {
	if i < 0 {
		i += len(e.Texts)
	}
	if i < 0 || i >= len(e.Texts) {
		return "", false
	}

	return e.Texts[i], true
}

func (e *Element) String() string {
	return "<" + e.Name + ">"
}
