package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/stmtconv/internal/importer"
	"github.com/cleared-dev/stmtconv/internal/mt940"
	"github.com/cleared-dev/stmtconv/internal/runlog"
)

// ExportDir is the subdirectory statements are written to in batch mode.
const ExportDir = "export"

// StatementExt is the file extension of written statements.
const StatementExt = ".sta"

// BatchOptions configures Batch.
type BatchOptions struct {
	Root      string
	Parser    importer.Parser
	Statement mt940.Config
	Log       zerolog.Logger
	// Now stamps run log entries; defaults to time.Now.
	Now func() time.Time
}

// Batch converts every ledger in <root>/import/ into <root>/export/<name>.sta.
// Converted ledgers move to import/processed/; failed ones stay put. Every
// file gets a run log entry. The returned error joins all per-file failures.
func Batch(opts BatchOptions) ([]runlog.Entry, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	files, err := importer.Scan(opts.Root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		opts.Log.Info().Str("root", opts.Root).Msg("no ledgers to convert")
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Join(opts.Root, ExportDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	var entries []runlog.Entry
	var errs []error
	for _, file := range files {
		out := filepath.Join(ExportDir, strings.TrimSuffix(file.Name, filepath.Ext(file.Name))+StatementExt)
		entry := runlog.Entry{
			Timestamp: now().UTC(),
			Source:    filepath.Join("import", file.Name),
			Output:    out,
		}

		res, err := File(opts.Parser, file.Path, filepath.Join(opts.Root, out), opts.Statement, opts.Log)
		if err == nil {
			err = importer.MarkProcessed(opts.Root, file.Name)
		}
		if err != nil {
			opts.Log.Error().Err(err).Str("source", file.Name).Msg("conversion failed")
			entry.Status = runlog.StatusFailed
			entry.Details = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", file.Name, err))
		} else {
			entry.Status = runlog.StatusConverted
			entry.Records = res.Records
		}
		entries = append(entries, entry)
	}

	if err := runlog.Append(opts.Root, entries); err != nil {
		errs = append(errs, err)
	}
	return entries, errors.Join(errs...)
}
