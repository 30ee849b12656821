package xmlskema

import (
	"io"
	"sync"

	etreesrc "github.com/reoring/xmlskema/source/etree"
	"github.com/reoring/xmlskema/xmltree"
)

// Source yields the element tree of one XML document. The returned node is a
// document node (empty tag) whose children are the top-level elements.
type Source interface {
	Document() (*xmltree.Element, error)
}

// XMLDriver converts XML input into a Source via a pluggable SPI. The default
// implementation is based on github.com/beevik/etree and may be swapped with
// SetXMLDriver.
type XMLDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	xmlDriverMu      sync.RWMutex
	currentXMLDriver XMLDriver = defaultXMLDriver{}
)

// SetXMLDriver replaces the global XML driver; nil values are ignored.
func SetXMLDriver(d XMLDriver) {
	if d == nil {
		return
	}
	xmlDriverMu.Lock()
	currentXMLDriver = d
	xmlDriverMu.Unlock()
}

// UseDefaultXMLDriver restores the default etree-backed driver.
func UseDefaultXMLDriver() {
	xmlDriverMu.Lock()
	currentXMLDriver = defaultXMLDriver{}
	xmlDriverMu.Unlock()
}

// XMLDriverName returns the name of the active driver.
func XMLDriverName() string { return getXMLDriver().Name() }

func getXMLDriver() XMLDriver {
	xmlDriverMu.RLock()
	d := currentXMLDriver
	xmlDriverMu.RUnlock()
	return d
}

// defaultXMLDriver wraps the etree implementation.
type defaultXMLDriver struct{}

func (defaultXMLDriver) NewReader(r io.Reader) Source { return etreesrc.NewReader(r) }
func (defaultXMLDriver) NewBytes(b []byte) Source     { return etreesrc.NewBytes(b) }
func (defaultXMLDriver) Name() string                 { return etreesrc.Name }

// XMLReader wraps an io.Reader as an XML Source.
func XMLReader(r io.Reader) Source { return getXMLDriver().NewReader(r) }

// XMLBytes wraps a byte slice as an XML Source.
func XMLBytes(b []byte) Source { return getXMLDriver().NewBytes(b) }

// TreeSource wraps an already materialized tree as a Source.
func TreeSource(doc *xmltree.Element) Source { return treeSource{doc: doc} }

type treeSource struct{ doc *xmltree.Element }

func (t treeSource) Document() (*xmltree.Element, error) { return t.doc, nil }
