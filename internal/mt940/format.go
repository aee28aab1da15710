// Package mt940 renders transactions as an MT940 customer statement.
package mt940

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtconv/internal/model"
)

const (
	// MessageType is the SWIFT message type tag written in the header.
	MessageType = "940"

	name16Len     = 16
	nameMaxLen    = 50
	emptyNameText = "NONREF"

	dateFormat      = "060102"
	shortDateFormat = "0102"
)

// Transaction type identification codes used in :61:.
const (
	CodeCharges         = "NCHG"
	CodeTransfer        = "NTRF"
	CodeGenericTransfer = "STRF"
)

// AmountSign returns "C" for positive values and "D" otherwise.
func AmountSign(d decimal.Decimal) string {
	if d.IsPositive() {
		return "C"
	}
	return "D"
}

// AmountValue formats |d| with two decimals and a decimal comma.
func AmountValue(d decimal.Decimal) string {
	return strings.Replace(d.Abs().StringFixed(2), ".", ",", 1)
}

// Amount is the sign followed by the value, e.g. "D10,00".
func Amount(d decimal.Decimal) string {
	return AmountSign(d) + AmountValue(d)
}

// Date formats t as YYMMDD.
func Date(t time.Time) string { return t.Format(dateFormat) }

// ShortDate formats t as MMDD.
func ShortDate(t time.Time) string { return t.Format(shortDateFormat) }

// Pad5 zero-pads n to five digits.
func Pad5(n int) string { return fmt.Sprintf("%05d", n) }

// TypeCode maps a transaction type to its identification code.
func TypeCode(t model.TxType) string {
	switch t {
	case model.TxFee:
		return CodeCharges
	case model.TxCardPayment:
		return CodeTransfer
	default:
		return CodeGenericTransfer
	}
}

// Header returns the leading BIC / message type / BIC block.
func Header(bic string) string {
	return bic + "\n" + MessageType + "\n" + bic + "\n"
}

// Field20 is the transaction reference number line.
func Field20(bank string) string { return ":20:" + bank + "\n" }

// Field25 is the account identification line, optionally suffixed with the currency.
func Field25(iban, currency string) string {
	if currency == "" {
		return ":25:" + iban + "\n"
	}
	return ":25:" + iban + " " + currency + "\n"
}

// Field28 is the statement sequence number line.
func Field28(seq int) string { return ":28:" + Pad5(seq) + "\n" }

// Field60F is the opening balance line.
func Field60F(date time.Time, balance decimal.Decimal, currency string) string {
	return ":60F:" + balanceBody(date, balance, currency) + "\n"
}

// Field62F is the closing balance line.
func Field62F(date time.Time, balance decimal.Decimal, currency string) string {
	return ":62F:" + balanceBody(date, balance, currency) + "\n"
}

func balanceBody(date time.Time, balance decimal.Decimal, currency string) string {
	return AmountSign(balance) + Date(date) + currency + AmountValue(balance)
}

// Field61 is the statement line. Names over 16 characters continue on a
// second line carrying characters 17 to 50.
func Field61(txn model.Transaction) string {
	name := []rune(txn.Name)
	name16 := string(name[:min(len(name), name16Len)])
	if name16 == "" {
		name16 = emptyNameText
	}
	var overflow string
	if len(name) > name16Len {
		overflow = "\r\n" + string(name[name16Len:min(len(name), nameMaxLen)])
	}
	return ":61:" + Date(txn.DateTime) + ShortDate(txn.DateStart) + Amount(txn.Amount) +
		TypeCode(txn.Type) + name16 + overflow + "\n"
}

// Field86 is the information-to-account-owner line. Sub-fields are '/'-delimited,
// which is why sanitized names never contain '/'.
func Field86(txn model.Transaction) string {
	return fmt.Sprintf(":86:/IBAN/%s/NAME/%s/CARD/%s/REMI/%s/ID/%s\n",
		txn.IBAN, txn.Name, txn.Card, txn.Reference, txn.ID)
}
