// Command xmlskema decodes XML documents against YAML schema files.
//
// Usage:
//
//	xmlskema decode -s schema.yaml [file.xml]
//	xmlskema check -s schema.yaml
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd, err := newRootCmd().ExecuteContextC(context.Background())
	if err != nil {
		// post-run hooks are skipped on failure
		_ = syncLogger(cmd)
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
