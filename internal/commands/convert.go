package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/config"
	"github.com/cleared-dev/stmtconv/internal/convert"
	"github.com/cleared-dev/stmtconv/internal/importer"
)

// statementFlags are the per-invocation overrides shared by convert and batch.
type statementFlags struct {
	configPath string
	account    string
	currency   string
	bankName   string
	bankBIC    string
	format     string
}

func (f *statementFlags) register(cmd *cobra.Command, defaultConfig string) {
	cmd.Flags().StringVar(&f.configPath, "config", defaultConfig, "config file")
	cmd.Flags().StringVar(&f.account, "account", "", "statement account IBAN")
	cmd.Flags().StringVar(&f.currency, "currency", "", "statement currency (default EUR)")
	cmd.Flags().StringVar(&f.bankName, "bank-name", "", "bank name written to :20:")
	cmd.Flags().StringVar(&f.bankBIC, "bank-bic", "", "bank BIC written to the header")
	cmd.Flags().StringVar(&f.format, "format", "", "ledger format (default revolut)")
}

// resolve layers config file, .env / environment and flags, in that order.
func (f *statementFlags) resolve(envDir string) (*config.Config, importer.Parser, error) {
	if err := config.LoadDotEnv(filepath.Join(envDir, ".env")); err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadOrDefault(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, nil, err
	}

	overrides := []struct {
		val string
		dst *string
	}{
		{f.account, &cfg.Statement.AccountIBAN},
		{f.currency, &cfg.Statement.Currency},
		{f.bankName, &cfg.Statement.BankName},
		{f.bankBIC, &cfg.Statement.BankBIC},
		{f.format, &cfg.Import.Format},
	}
	for _, o := range overrides {
		if o.val != "" {
			*o.dst = o.val
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	p := importer.DefaultRegistry(cfg.Import.FeeName).Get(cfg.Import.Format)
	if p == nil {
		return nil, nil, fmt.Errorf("unknown ledger format %q", cfg.Import.Format)
	}
	return cfg, p, nil
}

func newConvertCommand(opts *globalOptions) *cobra.Command {
	var flags statementFlags

	cmd := &cobra.Command{
		Use:   "convert <ledger.csv> <statement.sta>",
		Short: "Convert one ledger export into an MT940 statement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, err := flags.resolve(".")
			if err != nil {
				return err
			}
			res, err := convert.File(p, args[0], args[1], cfg.WriterConfig(), opts.logger(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transactions to %s\n", res.Records, args[1])
			return nil
		},
	}

	flags.register(cmd, config.FileName)
	return cmd
}
