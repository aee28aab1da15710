package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// RevolutHeaders is the exact, ordered header row of a Revolut account statement export.
var RevolutHeaders = []string{
	"Date started (UTC)",
	"Date completed (UTC)",
	"ID",
	"Type",
	"Description",
	"Reference",
	"Payer",
	"Card number",
	"Orig currency",
	"Orig amount",
	"Payment currency",
	"Amount",
	"Fee",
	"Balance",
	"Account",
	"Beneficiary account number",
	"Beneficiary sort code or routing number",
	"Beneficiary IBAN",
	"Beneficiary BIC",
}

// DefaultFeeName names the synthetic fee transactions.
const DefaultFeeName = "Revolut Transaction Fee"

const (
	revolutNumFields   = 19
	revolutColStarted  = 0
	revolutColDone     = 1
	revolutColID       = 2
	revolutColType     = 3
	revolutColDesc     = 4
	revolutColRef      = 5
	revolutColCard     = 7
	revolutColCurrency = 10
	revolutColAmount   = 11
	revolutColFee      = 12
	revolutColBalance  = 13
	revolutColIBAN     = 17

	feeReferenceFormat = "Bank transaction fee %d"
	feeDelay           = time.Second
)

var revolutDateFormats = []string{"2006-01-02 15:04:05", "2006-01-02"}

// RevolutParser parses Revolut account statement CSV exports.
// Exports list the newest transaction first; Parse returns them oldest first.
type RevolutParser struct {
	// FeeName overrides DefaultFeeName when set.
	FeeName string
}

// Format returns the parser name.
func (p *RevolutParser) Format() string { return "revolut" }

// Parse reads a Revolut CSV and returns its transactions in chronological order.
func (p *RevolutParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrSchemaMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("reading revolut header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var txns []model.Transaction
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Row: row, Err: err}
		}
		batch, err := p.parseRow(rec)
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				rowErr.Row = row
			}
			return nil, err
		}
		txns = append(batch, txns...)
	}
	return txns, nil
}

func validateHeader(header []string) error {
	got := make([]string, len(header))
	for i, h := range header {
		got[i] = sanitizeHeader(h)
	}
	if !slices.Equal(got, RevolutHeaders) {
		return fmt.Errorf("%w: got %q", ErrSchemaMismatch, got)
	}
	return nil
}

// parseRow turns one ledger row into the principal transaction and,
// when the row carries a fee, a fee transaction right after it.
func (p *RevolutParser) parseRow(rec []string) ([]model.Transaction, error) {
	if len(rec) != revolutNumFields {
		return nil, &RowError{Err: fmt.Errorf("expected %d fields, got %d", revolutNumFields, len(rec))}
	}

	started, err := parseLedgerDate(rec[revolutColStarted])
	if err != nil {
		return nil, &RowError{Field: RevolutHeaders[revolutColStarted], Err: err}
	}
	completed, err := parseLedgerDate(rec[revolutColDone])
	if err != nil {
		return nil, &RowError{Field: RevolutHeaders[revolutColDone], Err: err}
	}

	var amount, fee, balance decimal.Decimal
	for _, f := range []struct {
		col int
		dst *decimal.Decimal
	}{
		{revolutColAmount, &amount},
		{revolutColFee, &fee},
		{revolutColBalance, &balance},
	} {
		d, err := decimal.NewFromString(rec[f.col])
		if err != nil {
			return nil, &RowError{Field: RevolutHeaders[f.col], Err: fmt.Errorf("parsing %q: %w", rec[f.col], err)}
		}
		*f.dst = d
	}

	currency := rec[revolutColCurrency]
	principal := model.Transaction{
		Amount:        amount,
		Name:          SanitizeName(rec[revolutColDesc]),
		IBAN:          rec[revolutColIBAN],
		Reference:     rec[revolutColRef],
		DateTime:      completed,
		DateStart:     started,
		Currency:      currency,
		BeforeBalance: balance.Sub(amount).Sub(fee),
		AfterBalance:  balance.Sub(fee),
		Type:          model.ParseTxType(rec[revolutColType]),
		Card:          rec[revolutColCard],
		ID:            rec[revolutColID],
	}

	if fee.IsZero() {
		return []model.Transaction{principal}, nil
	}
	return []model.Transaction{principal, p.feeTransaction(completed, balance, fee, currency)}, nil
}

func (p *RevolutParser) feeTransaction(completed time.Time, balance, fee decimal.Decimal, currency string) model.Transaction {
	name := p.FeeName
	if name == "" {
		name = DefaultFeeName
	}
	at := completed.Add(feeDelay)
	return model.Transaction{
		Amount: fee,
		Name:   name,
		// Embeds the completion time so fee lines never repeat.
		Reference:     fmt.Sprintf(feeReferenceFormat, completed.Unix()),
		DateTime:      at,
		DateStart:     at,
		Currency:      currency,
		BeforeBalance: balance.Sub(fee),
		AfterBalance:  balance,
		Type:          model.TxFee,
	}
}

func parseLedgerDate(s string) (time.Time, error) {
	var err error
	for _, layout := range revolutDateFormats {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
}
