package htmltree

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// Feed tokenizes r and drives b with its start, end and text events. The
// builder is flushed with Finish once the input is exhausted.
// Tag and attribute names arrive lowercased; values keep their case.
func Feed(b *Builder, r io.Reader) error {
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return fmt.Errorf("tokenize html: %w", err)
			}
			return b.Finish()
		case html.StartTagToken:
			tok := z.Token()
			if err := b.Start(tok.Data, attributes(tok.Attr)); err != nil {
				return err
			}
		case html.SelfClosingTagToken:
			tok := z.Token()
			if err := b.Start(tok.Data, attributes(tok.Attr)); err != nil {
				return err
			}
			if err := b.End(tok.Data); err != nil {
				return err
			}
		case html.EndTagToken:
			tok := z.Token()
			if err := b.End(tok.Data); err != nil {
				return err
			}
		case html.TextToken:
			b.Text(string(z.Text()))
		}
	}
}

func attributes(attrs []html.Attribute) []Attribute {
	if len(attrs) == 0 {
		return nil
	}
	res := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		res = append(res, Attribute{Key: a.Key, Val: a.Val})
	}

	return res
}
