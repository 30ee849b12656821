// Package xmltree defines the materialized element tree consumed by the
// decoder. Trees are built by an XML driver (see source/etree and
// source/stdxml) and are never mutated afterwards.
package xmltree

import (
	"strings"
)

// Element is one XML node: a tag, optional leaf text and ordered children.
//
// A leaf carries Text and no Children; a container carries Children and an
// empty Text. A document node has an empty Tag and holds the top-level
// elements of a document as its Children.
type Element struct {
	Tag      string
	Text     string
	Children []*Element
}

// Leaf returns a leaf element.
func Leaf(tag, text string) *Element { return &Element{Tag: tag, Text: text} }

// Node returns a container element.
func Node(tag string, children ...*Element) *Element {
	return &Element{Tag: tag, Children: children}
}

// Document returns a document node wrapping the given top-level elements.
func Document(children ...*Element) *Element { return &Element{Children: children} }

// IsLeaf reports whether e has no child elements.
func (e *Element) IsLeaf() bool { return e != nil && len(e.Children) == 0 }

// IsDocument reports whether e is a document node.
func (e *Element) IsDocument() bool { return e != nil && e.Tag == "" }

// Elements returns the first-level children of e.
func (e *Element) Elements() []*Element {
	if e == nil {
		return nil
	}
	return e.Children
}

// First returns the first child element, or nil.
func (e *Element) First() *Element {
	if e == nil || len(e.Children) == 0 {
		return nil
	}
	return e.Children[0]
}

// Count returns the number of elements in the subtree rooted at e, e included.
func (e *Element) Count() int {
	if e == nil {
		return 0
	}
	n := 1
	for _, c := range e.Children {
		n += c.Count()
	}
	return n
}

// Depth returns the nesting depth of the subtree rooted at e. A leaf has
// depth 1.
func (e *Element) Depth() int {
	if e == nil {
		return 0
	}
	d := 0
	for _, c := range e.Children {
		if cd := c.Depth(); cd > d {
			d = cd
		}
	}
	return d + 1
}

// String renders e as compact XML without escaping. It is meant for logs and
// test failures, not for serialization.
func (e *Element) String() string {
	b := &strings.Builder{}
	e.write(b)
	return b.String()
}

func (e *Element) write(b *strings.Builder) {
	if e == nil {
		return
	}
	if e.Tag == "" {
		for _, c := range e.Children {
			c.write(b)
		}
		return
	}
	b.WriteByte('<')
	b.WriteString(e.Tag)
	b.WriteByte('>')
	b.WriteString(e.Text)
	for _, c := range e.Children {
		c.write(b)
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteByte('>')
}
