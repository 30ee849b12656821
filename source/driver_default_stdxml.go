package source

import (
	xmlskema "github.com/reoring/xmlskema"
	"github.com/reoring/xmlskema/source/stdxml"
)

// init in a separate package to avoid import cycle in root. Importing this
// package makes encoding/xml the default driver.
func init() { xmlskema.SetXMLDriver(stdxml.Driver()) }
