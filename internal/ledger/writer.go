package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/evcharge-tools/invoice-tracker/internal/entity"
)

// Writer is the idempotent front door to a Store: it bootstraps the ledger,
// remembers every file name already present, and refuses duplicate appends.
// It is not safe for concurrent use; the batch is single-threaded by design.
type Writer struct {
	store  Store
	seen   map[string]struct{}
	logger *slog.Logger
}

// NewWriter initializes the ledger (create-if-absent) and loads the set of
// already-processed file names.
func NewWriter(ctx context.Context, store Store, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("initialize ledger: %w", err)
	}
	names, err := store.FileNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load processed file names: %w", err)
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}
	logger.Debug("ledger.writer.ready", "processed_files", len(seen))
	return &Writer{store: store, seen: seen, logger: logger}, nil
}

// AlreadyProcessed reports whether a file name is present in the ledger.
// Matching is exact and case-sensitive.
func (w *Writer) AlreadyProcessed(fileName string) bool {
	_, ok := w.seen[fileName]
	return ok
}

// Append writes the record unless its file name was already processed.
// It returns true when a row was appended, false when skipped.
func (w *Writer) Append(ctx context.Context, rec entity.InvoiceRecord) (bool, error) {
	if w.AlreadyProcessed(rec.FileName) {
		w.logger.Info("ledger.append.skip", "file", rec.FileName)
		return false, nil
	}
	if err := w.store.Append(ctx, RowFromRecord(rec)); err != nil {
		return false, fmt.Errorf("append %s: %w", rec.FileName, err)
	}
	w.seen[rec.FileName] = struct{}{}
	w.logger.Info("ledger.append.ok", "file", rec.FileName, "date", rec.BillingDate,
		"amount_incl_tax", rec.AmountInclTax.String())
	return true, nil
}

// Summary exposes the store aggregate for end-of-run reporting.
func (w *Writer) Summary(ctx context.Context) (Summary, error) {
	return w.store.Summary(ctx)
}
