package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/config"
	"github.com/cleared-dev/stmtconv/internal/convert"
	"github.com/cleared-dev/stmtconv/internal/runlog"
)

func newBatchCommand(opts *globalOptions) *cobra.Command {
	var flags statementFlags

	cmd := &cobra.Command{
		Use:   "batch [directory]",
		Short: "Convert every ledger in <directory>/import into <directory>/export",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			if flags.configPath == "" {
				flags.configPath = filepath.Join(absDir, config.FileName)
			}

			cfg, p, err := flags.resolve(absDir)
			if err != nil {
				return err
			}

			entries, err := convert.Batch(convert.BatchOptions{
				Root:      absDir,
				Parser:    p,
				Statement: cfg.WriterConfig(),
				Log:       opts.logger(cmd),
			})
			for _, e := range entries {
				if e.Status == runlog.StatusConverted {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d transactions)\n", e.Source, e.Output, e.Records)
				}
			}
			return err
		},
	}

	flags.register(cmd, "")
	return cmd
}
