package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	xmlskema "github.com/reoring/xmlskema"
	"github.com/reoring/xmlskema/schemafile"
	"github.com/reoring/xmlskema/value"
)

type decodeFlags struct {
	schemaPath  string
	maxDepth    int
	maxElements int
	maxBytes    int64
	strict      bool
	trim        bool
	compact     bool
}

func registerDecodeCmd(parent *cobra.Command) {
	var df decodeFlags
	cmd := &cobra.Command{
		Use:   "decode [file.xml]",
		Short: "Decode an XML document and print it as JSON",
		Long: `Decode an XML document against a YAML schema file and print the
decoded value as JSON. Reads standard input when no file is given or the
file is "-".`,
		Example: `  # Decode a file
  xmlskema decode -s datetime.yaml datetime.xml

  # Reject unknown elements and cap nesting
  xmlskema decode -s datetime.yaml --strict --max-depth 8 < datetime.xml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, df, args)
		},
	}
	cmd.Flags().StringVarP(&df.schemaPath, "schema", "s", "", "YAML schema file (required)")
	cmd.Flags().IntVar(&df.maxDepth, "max-depth", 0, "maximum element nesting depth (0 = unlimited)")
	cmd.Flags().IntVar(&df.maxElements, "max-elements", 0, "maximum number of elements (0 = unlimited)")
	cmd.Flags().Int64Var(&df.maxBytes, "max-bytes", 0, "maximum input size in bytes (0 = unlimited)")
	cmd.Flags().BoolVar(&df.strict, "strict", false, "reject elements no field claims")
	cmd.Flags().BoolVar(&df.trim, "trim", false, "trim surrounding whitespace from string values")
	cmd.Flags().BoolVar(&df.compact, "compact", false, "print JSON on a single line")
	_ = cmd.MarkFlagRequired("schema")

	parent.AddCommand(cmd)
}

func runDecode(cmd *cobra.Command, df decodeFlags, args []string) error {
	ctx := cmd.Context()
	log := xmlskema.LoggerFrom(ctx)

	node, err := schemafile.Load(df.schemaPath)
	if err != nil {
		return err
	}
	s, err := xmlskema.Untyped(node)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	name := "<stdin>"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in, name = f, args[0]
	}

	opt := xmlskema.ParseOpt{
		MaxDepth:    df.maxDepth,
		MaxElements: df.maxElements,
		MaxBytes:    df.maxBytes,
		TrimSpace:   df.trim,
	}
	if df.strict {
		opt.Unknown = xmlskema.UnknownStrict
	}
	log.Debug("decoding", zap.String("input", name), zap.String("schema", df.schemaPath), zap.String("driver", xmlskema.XMLDriverName()))

	v, err := xmlskema.StreamDecode(ctx, s, in, opt)
	if err != nil {
		printIssues(cmd.ErrOrStderr(), err)
		return fmt.Errorf("%s: decode failed", name)
	}

	var out []byte
	if df.compact {
		out, err = value.Marshal(v)
	} else {
		out, err = value.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func printIssues(w io.Writer, err error) {
	iss, ok := xmlskema.AsIssues(err)
	if !ok {
		fmt.Fprintln(w, err)
		return
	}
	for _, it := range iss {
		line := fmt.Sprintf("%s: %s: %s", it.Path, it.Code, it.Message)
		if it.Hint != "" {
			line += " (" + it.Hint + ")"
		}
		fmt.Fprintln(w, line)
	}
}
