// Package convert wires the ledger parser to the statement writer.
package convert

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtconv/internal/importer"
	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/mt940"
)

// Stage names the half of a conversion that failed.
type Stage string

const (
	StageParse Stage = "parse"
	StageWrite Stage = "write"
)

// StageError wraps a conversion failure with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return string(e.Stage) + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Result summarizes a written statement.
type Result struct {
	Records int
	Opening decimal.Decimal
	Closing decimal.Decimal
}

// File converts the ledger at src into a statement at dst. The ledger is parsed
// completely before dst is created, so a parse failure leaves no output behind.
// A write failure may leave a partial file that must not be used.
func File(p importer.Parser, src, dst string, cfg mt940.Config, log zerolog.Logger) (Result, error) {
	txns, err := importer.ParseFile(p, src)
	if err != nil {
		return Result{}, &StageError{Stage: StageParse, Err: err}
	}
	log.Debug().Str("source", src).Int("records", len(txns)).Msg("ledger parsed")

	f, err := os.Create(dst)
	if err != nil {
		return Result{}, &StageError{Stage: StageWrite, Err: fmt.Errorf("creating statement: %w", err)}
	}

	res, err := WriteStatement(f, txns, cfg)
	if err != nil {
		return res, &StageError{Stage: StageWrite, Err: err}
	}
	log.Info().Str("source", src).Str("output", dst).Int("records", res.Records).Msg("statement written")
	return res, nil
}

// WriteStatement writes txns as one statement to out. The writer is always
// finalized, so out is closed (when it is an io.Closer) on every path.
func WriteStatement(out io.Writer, txns []model.Transaction, cfg mt940.Config) (res Result, err error) {
	w, err := mt940.NewWriter(out, cfg)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		err = errors.Join(err, w.Close())
	}()

	for _, txn := range txns {
		if err := w.Write(txn); err != nil {
			return res, err
		}
		if res.Records == 0 {
			res.Opening = txn.BeforeBalance
		}
		res.Records++
		res.Closing = txn.AfterBalance
	}
	return res, nil
}
