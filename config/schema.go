package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/3lfar7/tripadvparser/collect"
	"github.com/3lfar7/tripadvparser/script"
)

// FieldConfig declares one schema field. Unique and DropLast post-process
// list values after cleanup.
type FieldConfig struct {
	Name         string          `json:"name" yaml:"name"`
	Selector     string          `json:"selector" yaml:"selector"`
	Handler      *HandlerConfig  `json:"handler" yaml:"handler"`
	Handlers     []HandlerConfig `json:"handlers" yaml:"handlers"`
	MinPassCount int             `json:"minPassCount" yaml:"minPassCount"`
	Limit        int             `json:"limit" yaml:"limit"`
	Default      interface{}     `json:"default" yaml:"default"`
	Unique       bool            `json:"unique" yaml:"unique"`
	DropLast     int             `json:"dropLast" yaml:"dropLast"`
}

// HandlerConfig is a value handler selected by Type. Each type reads only
// the keys it needs:
//
//	text    index, allowEmpty
//	attr    attr, allowEmpty
//	int     inner
//	script  index, engine (builtin | otto)
//	class   pattern
//	json    index, path, fields
//	match   inner, pattern, template
//	tuple   items
type HandlerConfig struct {
	Type       string            `json:"type" yaml:"type"`
	Index      int               `json:"index" yaml:"index"`
	AllowEmpty bool              `json:"allowEmpty" yaml:"allowEmpty"`
	Attr       string            `json:"attr" yaml:"attr"`
	Inner      *HandlerConfig    `json:"inner" yaml:"inner"`
	Engine     string            `json:"engine" yaml:"engine"`
	Pattern    string            `json:"pattern" yaml:"pattern"`
	Template   string            `json:"template" yaml:"template"`
	Path       string            `json:"path" yaml:"path"`
	Fields     map[string]string `json:"fields" yaml:"fields"`
	Items      []HandlerConfig   `json:"items" yaml:"items"`
}

func (h HandlerConfig) Build() (collect.Handler, error) {
	switch h.Type {
	case "text":
		return collect.TextHandler{Index: h.Index, AllowEmpty: h.AllowEmpty}, nil
	case "attr":
		if h.Attr == "" {
			return nil, errors.New("attr handler needs attr")
		}
		return collect.AttrHandler{Name: h.Attr, AllowEmpty: h.AllowEmpty}, nil
	case "int":
		inner, err := h.inner()
		if err != nil {
			return nil, err
		}
		return collect.IntHandler{Inner: inner}, nil
	case "script":
		run, err := script.RunnerFor(h.Engine)
		if err != nil {
			return nil, fmt.Errorf("script handler:%w", err)
		}
		return collect.ScriptHandler{Index: h.Index, Run: run}, nil
	case "class":
		re, err := regexp.Compile(h.Pattern)
		if err != nil {
			return nil, fmt.Errorf("class handler:%w", err)
		}
		return collect.ClassPatternHandler{Pattern: re}, nil
	case "json":
		return collect.JSONHandler{Index: h.Index, Path: h.Path, Fields: h.Fields}, nil
	case "match":
		inner, err := h.inner()
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(h.Pattern)
		if err != nil {
			return nil, fmt.Errorf("match handler:%w", err)
		}
		return collect.MatchHandler{Inner: inner, Pattern: re, Template: h.Template}, nil
	case "tuple":
		if len(h.Items) == 0 {
			return nil, errors.New("tuple handler needs items")
		}
		items := make(collect.TupleHandler, 0, len(h.Items))
		for _, item := range h.Items {
			hd, err := item.Build()
			if err != nil {
				return nil, err
			}
			items = append(items, hd)
		}
		return items, nil
	}

	return nil, fmt.Errorf("unknown handler type %q", h.Type)
}

func (h HandlerConfig) inner() (collect.Handler, error) {
	if h.Inner == nil {
		return nil, fmt.Errorf("%s handler needs inner", h.Type)
	}

	return h.Inner.Build()
}

// Options translates the field into collector options.
func (f FieldConfig) Options() ([]collect.Option, error) {
	var opts []collect.Option

	switch {
	case f.Handler != nil:
		h, err := f.Handler.Build()
		if err != nil {
			return nil, err
		}
		opts = append(opts, collect.WithHandler(h))
	case len(f.Handlers) > 0:
		hs := make([]collect.Handler, 0, len(f.Handlers))
		for _, hc := range f.Handlers {
			h, err := hc.Build()
			if err != nil {
				return nil, err
			}
			hs = append(hs, h)
		}
		opts = append(opts, collect.WithHandlers(hs...))
	}

	opts = append(opts,
		collect.WithMinPassCount(f.MinPassCount),
		collect.WithLimit(f.Limit),
		collect.WithDefault(f.Default),
	)

	return opts, nil
}

// Schema builds the extraction schema declared by the fields.
func (c *Config) Schema() (*collect.Schema, error) {
	var post []FieldConfig
	for _, f := range c.Fields {
		if f.Unique || f.DropLast > 0 {
			post = append(post, f)
		}
	}

	var opts []collect.SchemaOption
	if len(post) > 0 {
		opts = append(opts, collect.WithCleanFunc(func(r collect.Result) (collect.Result, error) {
			for _, f := range post {
				values, ok := r[f.Name].([]interface{})
				if !ok {
					continue
				}
				if f.DropLast > 0 {
					n := len(values) - f.DropLast
					if n < 0 {
						n = 0
					}
					values = values[:n]
				}
				if f.Unique {
					values = collect.Unique(values)
				}
				r[f.Name] = values
			}
			return r, nil
		}))
	}

	schema := collect.NewSchema(opts...)
	for _, f := range c.Fields {
		opts, err := f.Options()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		col, err := collect.NewCollector(f.Selector, opts...)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		if err := schema.Add(f.Name, col); err != nil {
			return nil, err
		}
	}

	return schema, nil
}
