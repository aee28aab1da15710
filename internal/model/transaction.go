package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TxType is the semantic category of a transaction.
type TxType string

const (
	TxTransfer    TxType = "TRANSFER"
	TxCardPayment TxType = "CARD_PAYMENT"
	TxFee         TxType = "FEE"
	TxOther       TxType = "OTHER"
)

// ParseTxType maps a ledger type cell to a TxType. Unknown values become TxOther.
func ParseTxType(s string) TxType {
	switch TxType(strings.ToUpper(strings.TrimSpace(s))) {
	case TxTransfer:
		return TxTransfer
	case TxCardPayment:
		return TxCardPayment
	case TxFee:
		return TxFee
	default:
		return TxOther
	}
}

// Transaction is one normalized ledger movement, oldest-first in a statement.
type Transaction struct {
	Amount        decimal.Decimal // positive = credit, negative = debit
	Name          string          // sanitized counterparty
	IBAN          string
	Reference     string
	DateTime      time.Time // completion
	DateStart     time.Time // initiation
	Currency      string
	BeforeBalance decimal.Decimal
	AfterBalance  decimal.Decimal
	Type          TxType
	Card          string
	ID            string
}
