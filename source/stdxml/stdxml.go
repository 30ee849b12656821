// Package stdxml builds element trees from the encoding/xml token stream.
// Register it with xmlskema.SetXMLDriver(stdxml.Driver()), or blank-import
// github.com/reoring/xmlskema/source to make it the default.
package stdxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"

	"golang.org/x/net/html/charset"

	xmlskema "github.com/reoring/xmlskema"
	"github.com/reoring/xmlskema/xmltree"
)

// Driver returns an xmlskema.XMLDriver backed by encoding/xml.
func Driver() xmlskema.XMLDriver { return driver{} }

type driver struct{}

func (driver) NewReader(r io.Reader) xmlskema.Source { return NewReader(r) }
func (driver) NewBytes(b []byte) xmlskema.Source     { return NewBytes(b) }
func (driver) Name() string                          { return "encoding/xml" }

// Source reads one XML document on demand.
type Source struct {
	r io.Reader
}

// NewReader wraps an io.Reader. The reader is consumed by Document.
func NewReader(r io.Reader) *Source { return &Source{r: r} }

// NewBytes wraps a byte slice.
func NewBytes(b []byte) *Source { return &Source{r: bytes.NewReader(b)} }

// Document parses the input into a document node.
func (s *Source) Document() (*xmltree.Element, error) { return Parse(s.r) }

// Parse consumes r token by token. Leaf elements keep their concatenated
// character data; containers keep none.
func Parse(r io.Reader) (*xmltree.Element, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	doc := &xmltree.Element{}
	stack := []*xmltree.Element{doc}
	texts := [][]byte{nil}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &xmltree.Element{Tag: t.Name.Local}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, el)
			stack = append(stack, el)
			texts = append(texts, nil)
		case xml.CharData:
			texts[len(texts)-1] = append(texts[len(texts)-1], t...)
		case xml.EndElement:
			el := stack[len(stack)-1]
			if len(el.Children) == 0 {
				el.Text = string(texts[len(texts)-1])
			}
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]
		}
	}
	if len(stack) != 1 {
		return nil, io.ErrUnexpectedEOF
	}
	return doc, nil
}
