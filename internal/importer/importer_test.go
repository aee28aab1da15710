package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtconv/internal/model"
)

const revolutHeader = "Date started (UTC),Date completed (UTC),ID,Type,Description,Reference,Payer,Card number,Orig currency,Orig amount,Payment currency,Amount,Fee,Balance,Account,Beneficiary account number,Beneficiary sort code or routing number,Beneficiary IBAN,Beneficiary BIC\n"

func parseFixture(t *testing.T) []model.Transaction {
	t.Helper()
	data, err := os.ReadFile("../../testdata/revolut_statement.csv")
	require.NoError(t, err)

	p := &RevolutParser{}
	txns, err := p.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	return txns
}

func TestRevolutParser_Parse(t *testing.T) {
	txns := parseFixture(t)
	require.Len(t, txns, 5)

	// Oldest first, fee right after its principal.
	var ids []string
	for _, txn := range txns {
		ids = append(ids, txn.ID)
	}
	assert.Equal(t, []string{"TX1", "TX2", "", "TX3", "TX4"}, ids)

	first := txns[0]
	assert.Equal(t, model.TxTransfer, first.Type)
	assert.Equal(t, "", first.Name)
	assert.Equal(t, "Salary", first.Reference)
	assert.Equal(t, "NL02ABNA0123456789", first.IBAN)
	assert.Equal(t, "EUR", first.Currency)
	assert.Equal(t, "0.00", first.BeforeBalance.StringFixed(2))
	assert.Equal(t, "100.00", first.AfterBalance.StringFixed(2))
	assert.Equal(t, time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC), first.DateTime)
	assert.Equal(t, time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC), first.DateStart)

	card := txns[1]
	assert.Equal(t, model.TxCardPayment, card.Type)
	assert.Equal(t, "Caf?.Bar Z?rich", card.Name)
	assert.Equal(t, "432112******1234", card.Card)
	assert.Equal(t, "-10.00", card.Amount.StringFixed(2))
	assert.Equal(t, "100.00", card.BeforeBalance.StringFixed(2))
	assert.Equal(t, "90.00", card.AfterBalance.StringFixed(2))

	last := txns[4]
	assert.Equal(t, "Jan de Vries Administratiekantoor", last.Name)
	assert.Equal(t, time.Date(2023, 1, 5, 9, 15, 0, 0, time.UTC), last.DateTime)
	assert.Equal(t, "1089.50", last.AfterBalance.StringFixed(2))
}

func TestRevolutParser_BalanceInvariant(t *testing.T) {
	for _, txn := range parseFixture(t) {
		assert.True(t, txn.AfterBalance.Sub(txn.BeforeBalance).Equal(txn.Amount),
			"after-before != amount for %q", txn.ID)
	}
}

func TestRevolutParser_BalancesChain(t *testing.T) {
	txns := parseFixture(t)
	for i := 1; i < len(txns); i++ {
		assert.True(t, txns[i].BeforeBalance.Equal(txns[i-1].AfterBalance),
			"record %d does not continue from record %d", i, i-1)
	}
}

func TestRevolutParser_FeeTransaction(t *testing.T) {
	txns := parseFixture(t)
	principal, fee := txns[1], txns[2]

	assert.Equal(t, model.TxFee, fee.Type)
	assert.Equal(t, DefaultFeeName, fee.Name)
	assert.Empty(t, fee.IBAN)
	assert.Empty(t, fee.Card)
	assert.Empty(t, fee.ID)
	assert.Equal(t, "EUR", fee.Currency)
	assert.Equal(t, "-0.50", fee.Amount.StringFixed(2))
	assert.Equal(t, "90.00", fee.BeforeBalance.StringFixed(2))
	assert.Equal(t, "89.50", fee.AfterBalance.StringFixed(2))
	assert.Equal(t, principal.DateTime.Add(time.Second), fee.DateTime)
	assert.Equal(t, fee.DateTime, fee.DateStart)
	assert.Equal(t, fmt.Sprintf("Bank transaction fee %d", principal.DateTime.Unix()), fee.Reference)
}

func TestRevolutParser_FeeSplitsRow(t *testing.T) {
	row := "2023-01-01,2023-01-02,TX1,CARD_PAYMENT,To Acme Corp,INV-9,,1234,EUR,10.00,EUR,-10.00,0.50,89.50,EUR,,,,\n"
	p := &RevolutParser{FeeName: "Card fee"}
	txns, err := p.Parse(strings.NewReader(revolutHeader + row))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	principal, fee := txns[0], txns[1]
	assert.Equal(t, "Acme Corp", principal.Name)
	assert.Equal(t, "INV-9", principal.Reference)
	assert.True(t, principal.BeforeBalance.Equal(decimal.RequireFromString("99.00")))
	assert.True(t, principal.AfterBalance.Equal(decimal.RequireFromString("89.00")))
	assert.Equal(t, "Card fee", fee.Name)
	assert.True(t, fee.Amount.Equal(decimal.RequireFromString("0.50")))
	assert.True(t, fee.BeforeBalance.Equal(decimal.RequireFromString("89.00")))
	assert.True(t, fee.AfterBalance.Equal(decimal.RequireFromString("89.50")))
}

func TestRevolutParser_ZeroFeeSingleRecord(t *testing.T) {
	for _, fee := range []string{"0", "0.00", "-0.00"} {
		row := "2023-01-01,2023-01-02,TX1,TRANSFER,To Acme Corp,,,,EUR,10.00,EUR,-10.00," + fee + ",90.00,EUR,,,,\n"
		p := &RevolutParser{}
		txns, err := p.Parse(strings.NewReader(revolutHeader + row))
		require.NoError(t, err)
		assert.Len(t, txns, 1, "fee %q", fee)
	}
}

func TestRevolutParser_HeaderOnly(t *testing.T) {
	p := &RevolutParser{}
	txns, err := p.Parse(strings.NewReader(revolutHeader))
	require.NoError(t, err)
	assert.Nil(t, txns)
}

func TestRevolutParser_EmptyFile(t *testing.T) {
	p := &RevolutParser{}
	_, err := p.Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestRevolutParser_HeaderMismatch(t *testing.T) {
	swapped := append([]string{}, RevolutHeaders...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	renamed := append([]string{}, RevolutHeaders...)
	renamed[12] = "Fees"

	tests := map[string][]string{
		"order":   swapped,
		"missing": RevolutHeaders[:18],
		"extra":   append(append([]string{}, RevolutHeaders...), "State"),
		"renamed": renamed,
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			p := &RevolutParser{}
			_, err := p.Parse(strings.NewReader(strings.Join(header, ",") + "\n"))
			assert.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}
}

func TestRevolutParser_HeaderSanitized(t *testing.T) {
	header := "\ufeff" + strings.ReplaceAll(revolutHeader, ",", " ,\t")
	p := &RevolutParser{}
	_, err := p.Parse(strings.NewReader(header))
	assert.NoError(t, err)
}

func TestRevolutParser_BadAmount(t *testing.T) {
	row := "2023-01-01,2023-01-02,TX1,TRANSFER,x,,,,EUR,10.00,EUR,NOTANUMBER,0,90.00,EUR,,,,\n"
	p := &RevolutParser{}
	_, err := p.Parse(strings.NewReader(revolutHeader + row))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRowMalformed)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "Amount", rowErr.Field)
}

func TestRevolutParser_BadDate(t *testing.T) {
	row := "2023-01-01,NOTADATE,TX1,TRANSFER,x,,,,EUR,10.00,EUR,-10.00,0,90.00,EUR,,,,\n"
	p := &RevolutParser{}
	_, err := p.Parse(strings.NewReader(revolutHeader + row))
	assert.ErrorIs(t, err, ErrRowMalformed)
	assert.Contains(t, err.Error(), "parsing date")
}

func TestRevolutParser_WrongColumnCount(t *testing.T) {
	good := "2023-01-01,2023-01-02,TX1,TRANSFER,x,,,,EUR,10.00,EUR,-10.00,0,90.00,EUR,,,,\n"
	short := "2023-01-01,2023-01-02,TX2,TRANSFER,x,,,,EUR,10.00,EUR,-10.00,0,90.00\n"
	p := &RevolutParser{}
	_, err := p.Parse(strings.NewReader(revolutHeader + good + short))
	require.ErrorIs(t, err, ErrRowMalformed)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 3, rowErr.Row)
	assert.Contains(t, err.Error(), "expected 19 fields, got 14")
}

func TestRevolutParser_Format(t *testing.T) {
	p := &RevolutParser{}
	assert.Equal(t, "revolut", p.Format())
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := ParseFile(&RevolutParser{}, filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestParseFile(t *testing.T) {
	txns, err := ParseFile(&RevolutParser{}, "../../testdata/revolut_statement.csv")
	require.NoError(t, err)
	assert.Len(t, txns, 5)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&RevolutParser{})
	p := r.Get("revolut")
	require.NotNil(t, p)
	assert.Equal(t, "revolut", p.Format())
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&RevolutParser{})
	assert.NotNil(t, r.Get("Revolut"))
	assert.NotNil(t, r.Get("REVOLUT"))
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry("Monthly fee")
	p, ok := r.Get("revolut").(*RevolutParser)
	require.True(t, ok)
	assert.Equal(t, "Monthly fee", p.FeeName)
}

func TestScan_FindsCSVs(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "other.txt"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "bank.csv", files[0].Name)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	processedDir := filepath.Join(importDir, "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))

	err := MarkProcessed(dir, "bank.csv")
	require.NoError(t, err)

	// Source gone.
	_, err = os.Stat(filepath.Join(importDir, "bank.csv"))
	assert.True(t, os.IsNotExist(err))

	// Destination exists.
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "bank.csv"))
	assert.NoError(t, err)
}

func TestMarkProcessed_CreatesDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "a.csv"), []byte("data"), 0o644))

	err := MarkProcessed(dir, "a.csv")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "import", "processed"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
