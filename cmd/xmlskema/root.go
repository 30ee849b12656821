package main

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	xmlskema "github.com/reoring/xmlskema"
	"github.com/reoring/xmlskema/source/stdxml"
)

type globalFlags struct {
	verbose bool
	driver  string
}

func newRootCmd() *cobra.Command {
	var gf globalFlags
	rootCmd := &cobra.Command{
		Use:           "xmlskema",
		Short:         "Decode XML documents against declarative schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return gf.apply(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return syncLogger(cmd)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&gf.verbose, "verbose", "v", false, "log decode decisions at debug level")
	rootCmd.PersistentFlags().StringVar(&gf.driver, "driver", "etree", "XML driver: etree or stdxml")

	registerDecodeCmd(rootCmd)
	registerCheckCmd(rootCmd)

	return rootCmd
}

// apply installs the XML driver and a logger in the command context.
func (gf *globalFlags) apply(cmd *cobra.Command) error {
	switch gf.driver {
	case "etree", "":
		xmlskema.UseDefaultXMLDriver()
	case "stdxml":
		xmlskema.SetXMLDriver(stdxml.Driver())
	default:
		return fmt.Errorf("unknown driver %q (want etree or stdxml)", gf.driver)
	}

	var (
		log *zap.Logger
		err error
	)
	if gf.verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	cmd.SetContext(xmlskema.WithLogger(cmd.Context(), log.Named("xmlskema")))
	return nil
}

// syncLogger flushes the logger installed by apply. Sync errors from
// terminals and pipes, which cannot be fsynced, are ignored.
func syncLogger(cmd *cobra.Command) error {
	err := xmlskema.LoggerFrom(cmd.Context()).Sync()
	if err == nil || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF) {
		return nil
	}
	return fmt.Errorf("logger sync: %w", err)
}
