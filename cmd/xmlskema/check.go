package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/xmlskema/schema"
	"github.com/reoring/xmlskema/schemafile"
)

func registerCheckCmd(parent *cobra.Command) {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile a schema file and list the tags its root claims",
		Long: `Compile a YAML schema file, reporting ambiguous tags and malformed
declarations. On success prints the root type followed by every element tag
the root accepts, flattened fields included.`,
		Example: `  xmlskema check -s datetime.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, schemaPath)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "YAML schema file (required)")
	_ = cmd.MarkFlagRequired("schema")

	parent.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, schemaPath string) error {
	node, err := schemafile.Load(schemaPath)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, node.Describe())
	switch t := node.(type) {
	case *schema.Record:
		for _, tag := range t.Namespace() {
			fmt.Fprintln(w, "  "+tag)
		}
	case *schema.Union:
		for _, v := range t.Variants {
			fmt.Fprintln(w, "  "+v.Tag())
		}
	}
	return nil
}
