package collect

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/3lfar7/tripadvparser/htmltree"
	"github.com/3lfar7/tripadvparser/script"
)

// Handler turns a matched element into a field value. A nil value with a
// nil error records nothing.
type Handler interface {
	Handle(field string, e *htmltree.Element) (interface{}, error)
}

type HandlerFunc func(field string, e *htmltree.Element) (interface{}, error)

func (f HandlerFunc) Handle(field string, e *htmltree.Element) (interface{}, error) {
	return f(field, e)
}

// TextHandler returns the trimmed text node at Index. Negative indexes count
// from the last text node.
type TextHandler struct {
	Index      int
	AllowEmpty bool
}

func (h TextHandler) Handle(field string, e *htmltree.Element) (interface{}, error) {
	return h.text(field, e)
}

func (h TextHandler) text(field string, e *htmltree.Element) (string, error) {
	if len(e.Texts) == 0 {
		return "", fieldError(field, "element does not contain data nodes")
	}
	s, ok := e.Text(h.Index)
	if !ok {
		return "", fieldError(field, "element does not contain data node with index %d", h.Index)
	}
	s = strings.TrimSpace(s)
	if s == "" && !h.AllowEmpty {
		return "", fieldError(field, "data cannot be empty")
	}

	return s, nil
}

type AttrHandler struct {
	Name       string
	AllowEmpty bool
}

func (h AttrHandler) Handle(field string, e *htmltree.Element) (interface{}, error) {
	v, ok := e.Attr(h.Name)
	if !ok {
		return nil, fieldError(field, "element does not contain attr '%s'", h.Name)
	}
	if v == "" && !h.AllowEmpty {
		return nil, fieldError(field, "attr '%s' cannot be empty", h.Name)
	}

	return v, nil
}

// IntHandler parses the value of Inner as a decimal integer.
type IntHandler struct {
	Inner Handler
}

func (h IntHandler) Handle(field string, e *htmltree.Element) (interface{}, error) {
	v, err := h.Inner.Handle(field, e)
	if err != nil || v == nil {
		return v, err
	}

	switch v := v.(type) {
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, &FieldError{Field: field, Msg: "value from enclosed handler is not integer", Err: err}
		}
		return n, nil
	}

	return nil, fieldError(field, "value from enclosed handler is not integer")
}

// ScriptHandler evaluates the text node at Index as a script and returns what
// it wrote. Run defaults to the built-in interpreter.
type ScriptHandler struct {
	Index int
	Run   script.Runner
}

func (h ScriptHandler) Handle(field string, e *htmltree.Element) (interface{}, error) {
	src, err := TextHandler{Index: h.Index}.text(field, e)
	if err != nil {
		return nil, err
	}

	run := h.Run
	if run == nil {
		run = script.Run
	}
	out, err := run(src)
	if err != nil {
		return nil, &FieldError{Field: field, Msg: "script failed", Err: err}
	}

	return out, nil
}

// ClassPatternHandler returns the first capture group of the first class
// that fully matches Pattern, or the whole class without groups. Classes are
// tried in lexical order.
type ClassPatternHandler struct {
	Pattern *regexp.Regexp
}

func (h ClassPatternHandler) Handle(field string, e *htmltree.Element) (interface{}, error) {
	classes := make([]string, 0, len(e.Classes))
	for c := range e.Classes {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	for _, c := range classes {
		m := h.Pattern.FindStringSubmatchIndex(c)
		if m == nil || m[0] != 0 || m[1] != len(c) {
			continue
		}
		if len(m) > 2 && m[2] >= 0 {
			return c[m[2]:m[3]], nil
		}
		return c, nil
	}

	return nil, fieldError(field, "element does not contain class that match pattern")
}

// JSONHandler decodes the text node at Index as JSON. With Fields set it
// returns a map of dotted-path lookups where missing paths are nil;
// otherwise it returns the value at Path, or the whole document when Path
// is empty.
type JSONHandler struct {
	Index  int
	Path   string
	Fields map[string]string
}

func (h JSONHandler) Handle(field string, e *htmltree.Element) (interface{}, error) {
	text, err := TextHandler{Index: h.Index}.text(field, e)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &FieldError{Field: field, Msg: "json is not valid", Err: err}
	}

	if len(h.Fields) > 0 {
		res := make(map[string]interface{}, len(h.Fields))
		for k, path := range h.Fields {
			res[k], _ = lookup(doc, path)
		}
		return res, nil
	}

	v, ok := lookup(doc, h.Path)
	if !ok {
		return nil, fieldError(field, "json has no value at '%s'", h.Path)
	}

	return v, nil
}

func lookup(doc interface{}, path string) (interface{}, bool) {
	if path == "" {
		return doc, true
	}
	cur := doc
	for _, key := range strings.Split(path, ".") {
		switch v := cur.(type) {
		case map[string]interface{}:
			next, ok := v[key]
			if !ok {
				return nil, false
			}
			cur = next
		case []interface{}:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			cur = v[i]
		default:
			return nil, false
		}
	}

	return cur, true
}

// MatchHandler requires the string value of Inner to match Pattern. A
// non-empty Template rewrites the value from the match, using the syntax of
// regexp.Regexp.Expand.
type MatchHandler struct {
	Inner    Handler
	Pattern  *regexp.Regexp
	Template string
}

func (h MatchHandler) Handle(field string, e *htmltree.Element) (interface{}, error) {
	v, err := h.Inner.Handle(field, e)
	if err != nil || v == nil {
		return v, err
	}
	s, ok := v.(string)
	if !ok {
		return nil, fieldError(field, "value from enclosed handler is not a string")
	}

	m := h.Pattern.FindStringSubmatchIndex(s)
	if m == nil {
		return nil, fieldError(field, "value '%s' does not match '%s'", s, h.Pattern)
	}
	if h.Template == "" {
		return s, nil
	}

	return string(h.Pattern.ExpandString(nil, h.Template, s, m)), nil
}

// TupleHandler runs every handler on the same element and returns their
// values in order.
type TupleHandler []Handler

func (h TupleHandler) Handle(field string, e *htmltree.Element) (interface{}, error) {
	res := make([]interface{}, 0, len(h))
	for _, item := range h {
		v, err := item.Handle(field, e)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}

	return res, nil
}
