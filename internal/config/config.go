package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/stmtconv/internal/importer"
	"github.com/cleared-dev/stmtconv/internal/mt940"
)

// FileName is the default config file name inside a project directory.
const FileName = "stmtconv.yaml"

// Environment variables that override config values.
const (
	EnvAccountIBAN = "STMTCONV_ACCOUNT_IBAN"
	EnvCurrency    = "STMTCONV_CURRENCY"
	EnvBankName    = "STMTCONV_BANK_NAME"
	EnvBankBIC     = "STMTCONV_BANK_BIC"
	EnvSequenceNo  = "STMTCONV_SEQUENCE_NO"
)

// Config represents the top-level stmtconv.yaml configuration.
type Config struct {
	Statement StatementConfig `yaml:"statement"`
	Import    ImportConfig    `yaml:"import"`
}

// StatementConfig holds the values written into the statement header and balances.
type StatementConfig struct {
	AccountIBAN           string `yaml:"account_iban"`
	Currency              string `yaml:"currency"`
	BankName              string `yaml:"bank_name"`
	BankBIC               string `yaml:"bank_bic"`
	SequenceNo            int    `yaml:"sequence_no"`
	AccountCurrencySuffix bool   `yaml:"account_currency_suffix"`
}

// ImportConfig controls ledger parsing.
type ImportConfig struct {
	Format  string `yaml:"format"`
	FeeName string `yaml:"fee_name"`
}

// Load reads a stmtconv.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(""), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the Revolut statement defaults.
func Default(accountIBAN string) *Config {
	return &Config{
		Statement: StatementConfig{
			AccountIBAN: accountIBAN,
			Currency:    mt940.DefaultCurrency,
			BankName:    mt940.DefaultBankName,
			BankBIC:     mt940.DefaultBankBIC,
			SequenceNo:  mt940.DefaultSequenceNo,
		},
		Import: ImportConfig{
			Format:  "revolut",
			FeeName: importer.DefaultFeeName,
		},
	}
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides statement values from STMTCONV_* environment variables.
func (c *Config) ApplyEnv() error {
	for env, dst := range map[string]*string{
		EnvAccountIBAN: &c.Statement.AccountIBAN,
		EnvCurrency:    &c.Statement.Currency,
		EnvBankName:    &c.Statement.BankName,
		EnvBankBIC:     &c.Statement.BankBIC,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
	if v := os.Getenv(EnvSequenceNo); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", EnvSequenceNo, v, err)
		}
		c.Statement.SequenceNo = n
	}
	return nil
}

// Validate checks the values a statement cannot be written without.
func (c *Config) Validate() error {
	if c.Statement.AccountIBAN == "" {
		return errors.New("statement account is required")
	}
	if !isCurrencyCode(c.Statement.Currency) {
		return fmt.Errorf("invalid currency %q: want a 3-letter code", c.Statement.Currency)
	}
	if c.Statement.SequenceNo < 0 || c.Statement.SequenceNo > 99999 {
		return fmt.Errorf("sequence number %d out of range", c.Statement.SequenceNo)
	}
	return nil
}

// WriterConfig converts the statement section for mt940.NewWriter.
func (c *Config) WriterConfig() mt940.Config {
	return mt940.Config{
		AccountIBAN:           c.Statement.AccountIBAN,
		Currency:              c.Statement.Currency,
		BankName:              c.Statement.BankName,
		BankBIC:               c.Statement.BankBIC,
		SequenceNo:            c.Statement.SequenceNo,
		AccountCurrencySuffix: c.Statement.AccountCurrencySuffix,
	}
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
