package collect

import (
	"fmt"
	"reflect"
)

// Result maps field names to their final values.
type Result map[string]interface{}

// CleanFunc post-processes the result of a session once every field has been
// cleaned.
type CleanFunc func(Result) (Result, error)

type Field struct {
	Name      string
	Collector *Collector
}

type schemaOptions struct {
	clean CleanFunc
}

type SchemaOption func(opts *schemaOptions)

func WithCleanFunc(fn CleanFunc) SchemaOption {
	return func(opts *schemaOptions) {
		opts.clean = fn
	}
}

// Schema is an ordered set of named fields. It is shared by the sessions
// built from it and must not be changed while they run.
type Schema struct {
	schemaOptions
	fields []Field
	index  map[string]int
}

func NewSchema(opts ...SchemaOption) *Schema {
	var options schemaOptions
	for _, opt := range opts {
		opt(&options)
	}

	return &Schema{
		schemaOptions: options,
		index:         make(map[string]int),
	}
}

func (s *Schema) Add(name string, c *Collector) error {
	if _, ok := s.index[name]; ok {
		return fmt.Errorf("field %q already exists", name)
	}
	if c == nil {
		return fmt.Errorf("field %q has no collector", name)
	}
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, Field{Name: name, Collector: c})

	return nil
}

// MustAdd compiles sel into a collector and adds it, panicking on error.
func (s *Schema) MustAdd(name, sel string, opts ...Option) *Schema {
	c, err := NewCollector(sel, opts...)
	if err != nil {
		panic(fmt.Sprintf("collect: field %q: %v", name, err))
	}
	if err := s.Add(name, c); err != nil {
		panic("collect: " + err.Error())
	}

	return s
}

func (s *Schema) Fields() []Field {
	return s.fields
}

func (s *Schema) Field(name string) (*Collector, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}

	return s.fields[i].Collector, true
}

// Unique drops repeated values, keeping the first occurrence of each.
func Unique(values []interface{}) []interface{} {
	res := make([]interface{}, 0, len(values))
	for _, v := range values {
		dup := false
		for _, seen := range res {
			if reflect.DeepEqual(v, seen) {
				dup = true
				break
			}
		}
		if !dup {
			res = append(res, v)
		}
	}

	return res
}
