package collect

import (
	"io"
	"strings"

	"github.com/3lfar7/tripadvparser/htmltree"
	"go.uber.org/zap"
)

type sessionOptions struct {
	logger *zap.Logger
}

var defaultSessionOptions = sessionOptions{
	logger: zap.NewNop(),
}

type SessionOption func(opts *sessionOptions)

func WithLogger(logger *zap.Logger) SessionOption {
	return func(opts *sessionOptions) {
		opts.logger = logger
	}
}

// Session accumulates field values over one or more documents until
// Finalize cleans them into a Result. A Session is not safe for concurrent
// use; run one session per goroutine.
type Session struct {
	sessionOptions
	schema   *Schema
	disabled map[string]bool
	values   map[string][]interface{}
	counts   map[string]int
}

func NewSession(schema *Schema, opts ...SessionOption) *Session {
	options := defaultSessionOptions
	for _, opt := range opts {
		opt(&options)
	}

	s := &Session{
		sessionOptions: options,
		schema:         schema,
		disabled:       make(map[string]bool),
	}
	s.reset()

	return s
}

func (s *Session) reset() {
	s.values = make(map[string][]interface{})
	s.counts = make(map[string]int)
	for _, f := range s.schema.Fields() {
		if f.Collector.HasHandler() {
			s.values[f.Name] = []interface{}{}
		} else {
			s.counts[f.Name] = 0
		}
	}
}

// Enable turns matching back on for the named fields.
func (s *Session) Enable(names ...string) {
	for _, name := range names {
		delete(s.disabled, name)
	}
}

// Disable stops matching the named fields in the following documents. A
// disabled field is left out of cleanup and keeps its raw values.
func (s *Session) Disable(names ...string) {
	for _, name := range names {
		s.disabled[name] = true
	}
}

func (s *Session) IsEnabled(name string) bool {
	return !s.disabled[name]
}

// Feed runs one document through the enabled fields. When a handler fails
// the values recorded from this document are dropped and the error is
// returned; values from earlier documents are kept.
func (s *Session) Feed(r io.Reader) error {
	values := make(map[string][]interface{})
	counts := make(map[string]int)
	closes := 0

	b := htmltree.NewBuilder(func(stack []*htmltree.Element) error {
		closes++
		for _, f := range s.schema.Fields() {
			if !s.IsEnabled(f.Name) {
				continue
			}
			v, ok, err := f.Collector.Match(f.Name, stack)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if !f.Collector.HasHandler() {
				counts[f.Name]++
			} else if v != nil {
				values[f.Name] = append(values[f.Name], v)
			}
		}
		return nil
	})

	if err := htmltree.Feed(b, r); err != nil {
		s.logger.Debug("document dropped", zap.Int("closes", closes), zap.Error(err))
		return err
	}

	for name, vs := range values {
		s.values[name] = append(s.values[name], vs...)
	}
	for name, n := range counts {
		s.counts[name] += n
	}
	s.logger.Debug("document collected",
		zap.Int("closes", closes),
		zap.Any("values", lengths(values)),
		zap.Any("counts", counts))

	return nil
}

func (s *Session) FeedString(doc string) error {
	return s.Feed(strings.NewReader(doc))
}

// Extract feeds doc and, if finalize is set, finalizes the session. Without
// finalize the result is nil.
func (s *Session) Extract(doc string, finalize bool) (Result, error) {
	if err := s.FeedString(doc); err != nil {
		return nil, err
	}
	if !finalize {
		return nil, nil
	}

	return s.Finalize()
}

// Finalize cleans every enabled field, applies the schema clean func and
// resets the session for the next run, whether or not cleanup succeeded.
func (s *Session) Finalize() (Result, error) {
	defer s.reset()

	res := make(Result, len(s.schema.Fields()))
	for _, f := range s.schema.Fields() {
		if !f.Collector.HasHandler() {
			res[f.Name] = s.counts[f.Name]
			continue
		}
		values := s.values[f.Name]
		if !s.IsEnabled(f.Name) {
			res[f.Name] = values
			continue
		}
		v, err := f.Collector.Clean(f.Name, values)
		if err != nil {
			return nil, err
		}
		res[f.Name] = v
	}

	if s.schema.clean != nil {
		return s.schema.clean(res)
	}

	return res, nil
}

// Extract runs a single-document session over doc.
func Extract(doc string, schema *Schema) (Result, error) {
	return NewSession(schema).Extract(doc, true)
}

func lengths(values map[string][]interface{}) map[string]int {
	res := make(map[string]int, len(values))
	for name, vs := range values {
		res[name] = len(vs)
	}

	return res
}
