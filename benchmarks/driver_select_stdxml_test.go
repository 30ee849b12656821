//go:build stdxml

package xmlskema_test

import (
	xmlskema "github.com/reoring/xmlskema"
	drv "github.com/reoring/xmlskema/source/stdxml"
)

func init() {
	xmlskema.SetXMLDriver(drv.Driver())
}
