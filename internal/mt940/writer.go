package mt940

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// Statement defaults.
const (
	DefaultCurrency   = "EUR"
	DefaultBankName   = "Revolut LTD"
	DefaultBankBIC    = "REVOGB21"
	DefaultSequenceNo = 1
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("mt940: writer closed")

// Config holds the statement-level values written in the header and balance lines.
// Zero values fall back to the defaults above.
type Config struct {
	AccountIBAN string
	Currency    string
	BankName    string
	BankBIC     string
	SequenceNo  int
	// AccountCurrencySuffix writes ":25:<iban> <currency>" instead of ":25:<iban>".
	AccountCurrencySuffix bool
}

func (c Config) withDefaults() Config {
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.BankName == "" {
		c.BankName = DefaultBankName
	}
	if c.BankBIC == "" {
		c.BankBIC = DefaultBankBIC
	}
	if c.SequenceNo == 0 {
		c.SequenceNo = DefaultSequenceNo
	}
	return c
}

// Writer streams transactions into an MT940 statement. The opening balance is
// taken from the first transaction and the closing balance from the last one.
// Close must be called exactly once the caller is done, typically via defer.
type Writer struct {
	out     io.Writer
	cfg     Config
	written int
	opened  bool
	closed  bool
	balance decimal.Decimal
	date    time.Time
}

// NewWriter writes the statement header to w and returns a Writer that owns w.
// If w is an io.Closer it is closed by Close, or right away when the header fails.
func NewWriter(w io.Writer, cfg Config) (*Writer, error) {
	sw := &Writer{out: w, cfg: cfg.withDefaults()}
	if err := sw.writeHeader(); err != nil {
		return nil, errors.Join(fmt.Errorf("writing header: %w", err), sw.release())
	}
	return sw, nil
}

// Config returns the effective statement configuration.
func (w *Writer) Config() Config { return w.cfg }

// Written returns the number of transactions written so far.
func (w *Writer) Written() int { return w.written }

func (w *Writer) writeHeader() error {
	suffix := ""
	if w.cfg.AccountCurrencySuffix {
		suffix = w.cfg.Currency
	}
	return w.writeLines(
		Header(w.cfg.BankBIC),
		Field20(w.cfg.BankName),
		Field25(w.cfg.AccountIBAN, suffix),
		Field28(w.cfg.SequenceNo),
	)
}

// Write emits the :61:/:86: pair for txn, preceded by the opening balance on
// the first call.
func (w *Writer) Write(txn model.Transaction) error {
	if w.closed {
		return ErrClosed
	}
	if !w.opened {
		if err := w.writeLines(Field60F(txn.DateTime, txn.BeforeBalance, w.cfg.Currency)); err != nil {
			return fmt.Errorf("writing opening balance: %w", err)
		}
		w.opened = true
		w.balance = txn.BeforeBalance
		w.date = txn.DateTime
	}

	if err := w.writeLines(Field61(txn), Field86(txn)); err != nil {
		return fmt.Errorf("writing transaction %q: %w", txn.ID, err)
	}
	w.written++
	w.balance = txn.AfterBalance
	w.date = txn.DateTime
	return nil
}

// Close writes the closing balance if the opening balance was written and
// releases the sink. Calling Close again is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var err error
	if w.opened {
		if werr := w.writeLines(Field62F(w.date, w.balance, w.cfg.Currency)); werr != nil {
			err = fmt.Errorf("writing closing balance: %w", werr)
		}
	}
	return errors.Join(err, w.release())
}

func (w *Writer) release() error {
	c, ok := w.out.(io.Closer)
	if !ok {
		return nil
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("closing statement: %w", err)
	}
	return nil
}

func (w *Writer) writeLines(lines ...string) error {
	for _, l := range lines {
		if _, err := io.WriteString(w.out, l); err != nil {
			return err
		}
	}
	return nil
}
