package collect

import (
	"errors"
	"fmt"

	"github.com/3lfar7/tripadvparser/htmltree"
	"github.com/3lfar7/tripadvparser/selector"
)

type options struct {
	handlers     []Handler
	perAlt       bool
	minPassCount int
	limit        int
	defaultValue interface{}
}

var defaultOptions = options{}

type Option func(opts *options)

// WithHandler applies h to every match.
func WithHandler(h Handler) Option {
	return func(opts *options) {
		opts.handlers = []Handler{h}
		opts.perAlt = false
	}
}

// WithHandlers binds one handler to each alternative of the selector, in
// order.
func WithHandlers(hs ...Handler) Option {
	return func(opts *options) {
		opts.handlers = hs
		opts.perAlt = true
	}
}

func WithMinPassCount(n int) Option {
	return func(opts *options) {
		opts.minPassCount = n
	}
}

// WithLimit sets the result shape: 1 returns a single value, more truncates
// the value list, 0 keeps all values.
func WithLimit(n int) Option {
	return func(opts *options) {
		opts.limit = n
	}
}

func WithDefault(v interface{}) Option {
	return func(opts *options) {
		opts.defaultValue = v
	}
}

// Collector extracts one schema field.
type Collector struct {
	options
	sel *selector.Selector
}

func NewCollector(sel string, opts ...Option) (*Collector, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	s, err := selector.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", sel, err)
	}
	if options.perAlt && len(options.handlers) != s.Len() {
		return nil, fmt.Errorf("selector %q has %d alternatives but %d handlers are bound",
			sel, s.Len(), len(options.handlers))
	}
	for i, h := range options.handlers {
		if h == nil {
			return nil, fmt.Errorf("handler %d of selector %q is nil", i, sel)
		}
	}

	return &Collector{options: options, sel: s}, nil
}

func (c *Collector) Selector() *selector.Selector {
	return c.sel
}

// HasHandler reports whether matches produce values rather than a count.
func (c *Collector) HasHandler() bool {
	return len(c.handlers) > 0
}

// Match tests stack against the selector and runs the bound handler on the
// innermost element.
func (c *Collector) Match(field string, stack []*htmltree.Element) (interface{}, bool, error) {
	i, ok := c.sel.Match(stack)
	if !ok {
		return nil, false, nil
	}
	if !c.HasHandler() {
		return nil, true, nil
	}

	h := c.handlers[0]
	if c.perAlt {
		h = c.handlers[i]
	}
	v, err := h.Handle(field, stack[len(stack)-1])
	if err != nil {
		var fe *FieldError
		if !errors.As(err, &fe) {
			err = &FieldError{Field: field, Msg: "handler failed", Err: err}
		}
		return nil, true, err
	}

	return v, true, nil
}

// Clean resolves the values gathered for field into its final value.
func (c *Collector) Clean(field string, values []interface{}) (interface{}, error) {
	if c.minPassCount > len(values) {
		return nil, &SchemaViolationError{Field: field, Count: len(values), Min: c.minPassCount}
	}

	if len(values) > 0 {
		switch {
		case c.limit == 1:
			return values[0], nil
		case c.limit > 1 && len(values) > c.limit:
			return values[:c.limit], nil
		}
		return values, nil
	}

	if c.limit == 1 || c.defaultValue != nil {
		return c.defaultValue, nil
	}

	return values, nil
}
