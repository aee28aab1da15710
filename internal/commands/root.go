package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/buildinfo"
	"github.com/cleared-dev/stmtconv/internal/logger"
)

type globalOptions struct {
	verbose bool
	jsonLog bool
}

func (o *globalOptions) logger(cmd *cobra.Command) zerolog.Logger {
	if o.jsonLog {
		return logger.NewJSON(cmd.ErrOrStderr(), o.verbose)
	}
	return logger.New(cmd.ErrOrStderr(), o.verbose)
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "stmtconv",
		Short:   "Convert bank ledger exports into MT940 statements",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonLog, "log-json", false, "log as JSON instead of console text")

	rootCmd.AddCommand(newConvertCommand(opts))
	rootCmd.AddCommand(newBatchCommand(opts))
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}
