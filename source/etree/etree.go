// Package etree builds element trees with github.com/beevik/etree. It is the
// default XML driver of the root package.
package etree

import (
	"bytes"
	"io"

	bee "github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"github.com/reoring/xmlskema/xmltree"
)

// Name identifies the driver.
const Name = "etree"

// Source reads one XML document on demand.
type Source struct {
	r io.Reader
}

// NewReader wraps an io.Reader. The reader is consumed by Document.
func NewReader(r io.Reader) *Source { return &Source{r: r} }

// NewBytes wraps a byte slice.
func NewBytes(b []byte) *Source { return &Source{r: bytes.NewReader(b)} }

// Document parses the input and returns a document node holding every
// top-level element. Non-UTF-8 encodings declared in the prolog are decoded
// through golang.org/x/net/html/charset.
func (s *Source) Document() (*xmltree.Element, error) {
	doc := bee.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if _, err := doc.ReadFrom(s.r); err != nil {
		return nil, err
	}
	top := doc.ChildElements()
	out := &xmltree.Element{Children: make([]*xmltree.Element, 0, len(top))}
	for _, e := range top {
		out.Children = append(out.Children, Convert(e))
	}
	return out, nil
}

// Convert copies an etree element into an element tree. Namespace prefixes
// and attributes are dropped; containers keep no text.
func Convert(e *bee.Element) *xmltree.Element {
	if e == nil {
		return nil
	}
	out := &xmltree.Element{Tag: e.Tag}
	kids := e.ChildElements()
	if len(kids) == 0 {
		out.Text = e.Text()
		return out
	}
	out.Children = make([]*xmltree.Element, 0, len(kids))
	for _, k := range kids {
		out.Children = append(out.Children, Convert(k))
	}
	return out
}
