package collect

import (
	"errors"
	"regexp"
	"strconv"
	"testing"

	"github.com/3lfar7/tripadvparser/htmltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func element(name string, texts []string, attrs ...string) *htmltree.Element {
	var as []htmltree.Attribute
	for i := 0; i+1 < len(attrs); i += 2 {
		as = append(as, htmltree.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	e := htmltree.NewElement(name, as)
	e.Texts = texts

	return e
}

func TestHandlers(t *testing.T) {
	tests := []struct {
		name    string
		handler Handler
		el      *htmltree.Element
		want    interface{}
		wantErr string
	}{
		{
			name:    "text",
			handler: TextHandler{},
			el:      element("p", []string{"  Grand Hotel \n"}),
			want:    "Grand Hotel",
		},
		{
			name:    "text by negative index",
			handler: TextHandler{Index: -1},
			el:      element("p", []string{"a", "b"}),
			want:    "b",
		},
		{
			name:    "text without nodes",
			handler: TextHandler{},
			el:      element("p", nil),
			wantErr: "collector 'f': element does not contain data nodes",
		},
		{
			name:    "text index out of range",
			handler: TextHandler{Index: 2},
			el:      element("p", []string{"a"}),
			wantErr: "collector 'f': element does not contain data node with index 2",
		},
		{
			name:    "empty text",
			handler: TextHandler{},
			el:      element("p", []string{" \t"}),
			wantErr: "collector 'f': data cannot be empty",
		},
		{
			name:    "empty text allowed",
			handler: TextHandler{AllowEmpty: true},
			el:      element("p", []string{" "}),
			want:    "",
		},
		{
			name:    "attr",
			handler: AttrHandler{Name: "href"},
			el:      element("a", nil, "href", "/Hotel_Review-1.html"),
			want:    "/Hotel_Review-1.html",
		},
		{
			name:    "missing attr",
			handler: AttrHandler{Name: "href"},
			el:      element("a", nil),
			wantErr: "collector 'f': element does not contain attr 'href'",
		},
		{
			name:    "empty attr",
			handler: AttrHandler{Name: "href"},
			el:      element("a", nil, "href", ""),
			wantErr: "collector 'f': attr 'href' cannot be empty",
		},
		{
			name:    "int over attr",
			handler: IntHandler{Inner: AttrHandler{Name: "data-numpages"}},
			el:      element("div", nil, "data-numpages", "17"),
			want:    17,
		},
		{
			name:    "int over text",
			handler: IntHandler{Inner: TextHandler{}},
			el:      element("li", []string{" 120 "}),
			want:    120,
		},
		{
			name:    "not an int",
			handler: IntHandler{Inner: TextHandler{}},
			el:      element("li", []string{"many"}),
			wantErr: `collector 'f': value from enclosed handler is not integer: strconv.Atoi: parsing "many": invalid syntax`,
		},
		{
			name:    "int passes inner error",
			handler: IntHandler{Inner: AttrHandler{Name: "x"}},
			el:      element("li", nil),
			wantErr: "collector 'f': element does not contain attr 'x'",
		},
		{
			name:    "script",
			handler: ScriptHandler{},
			el:      element("script", []string{"var a\na = '555'\ndocument.write('+1 ' + a)"}),
			want:    "+1 555",
		},
		{
			name:    "failing script",
			handler: ScriptHandler{},
			el:      element("script", []string{"b()"}),
			wantErr: "collector 'f': script failed: 'b' is not defined (line: 1, pos: 1)",
		},
		{
			name:    "class pattern",
			handler: ClassPatternHandler{Pattern: regexp.MustCompile(`star_(\d\d)`)},
			el:      element("div", nil, "class", "ui_star_rating star_45"),
			want:    "45",
		},
		{
			name:    "class pattern is anchored",
			handler: ClassPatternHandler{Pattern: regexp.MustCompile(`star_(\d\d)`)},
			el:      element("div", nil, "class", "xstar_45 star_450"),
			wantErr: "collector 'f': element does not contain class that match pattern",
		},
		{
			name:    "class pattern without group",
			handler: ClassPatternHandler{Pattern: regexp.MustCompile(`bubble_\d+`)},
			el:      element("span", nil, "class", "ui_bubble_rating bubble_45"),
			want:    "bubble_45",
		},
		{
			name:    "json path",
			handler: JSONHandler{Path: "address.postalCode"},
			el:      element("script", []string{`{"address":{"postalCode":"10001"}}`}),
			want:    "10001",
		},
		{
			name:    "json array path",
			handler: JSONHandler{Path: "image.1"},
			el:      element("script", []string{`{"image":["a.jpg","b.jpg"]}`}),
			want:    "b.jpg",
		},
		{
			name: "json fields",
			handler: JSONHandler{Fields: map[string]string{
				"street":      "address.streetAddress",
				"postal_code": "address.postalCode",
			}},
			el:   element("script", []string{`{"address":{"streetAddress":"1 Main St"}}`}),
			want: map[string]interface{}{"street": "1 Main St", "postal_code": nil},
		},
		{
			name:    "json missing path",
			handler: JSONHandler{Path: "geo.lat"},
			el:      element("script", []string{`{"geo":{}}`}),
			wantErr: "collector 'f': json has no value at 'geo.lat'",
		},
		{
			name:    "invalid json",
			handler: JSONHandler{},
			el:      element("script", []string{`{"a":`}),
			wantErr: "collector 'f': json is not valid: unexpected end of JSON input",
		},
		{
			name: "match rewrite",
			handler: MatchHandler{
				Inner:    AttrHandler{Name: "src"},
				Pattern:  regexp.MustCompile(`^(.*)photo-s(.*\.jpg)$`),
				Template: "${1}photo-o${2}",
			},
			el:   element("img", nil, "src", "https://media.example/photo-s/01/1.jpg"),
			want: "https://media.example/photo-o/01/1.jpg",
		},
		{
			name: "match rejects",
			handler: MatchHandler{
				Inner:   AttrHandler{Name: "src"},
				Pattern: regexp.MustCompile(`\.jpg$`),
			},
			el:      element("img", nil, "src", "/1.png"),
			wantErr: `collector 'f': value '/1.png' does not match '\.jpg$'`,
		},
		{
			name: "tuple",
			handler: TupleHandler{
				AttrHandler{Name: "data-offerclient"},
				IntHandler{Inner: AttrHandler{Name: "data-pernight"}},
			},
			el:   element("div", nil, "data-offerclient", "Expedia", "data-pernight", "129"),
			want: []interface{}{"Expedia", 129},
		},
		{
			name: "func",
			handler: HandlerFunc(func(field string, e *htmltree.Element) (interface{}, error) {
				return field + ":" + e.Name, nil
			}),
			el:   element("td", nil),
			want: "f:td",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.handler.Handle("f", tt.el)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				var fe *FieldError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, "f", fe.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntHandlerUnwrap(t *testing.T) {
	_, err := IntHandler{Inner: TextHandler{}}.Handle("rooms", element("li", []string{"x"}))
	assert.True(t, errors.Is(err, strconv.ErrSyntax))
}

func TestScriptHandlerRunner(t *testing.T) {
	var got string
	h := ScriptHandler{Run: func(src string) (string, error) {
		got = src
		return "ok", nil
	}}
	v, err := h.Handle("phone", element("script", []string{"  code  "}))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, "code", got)
}
