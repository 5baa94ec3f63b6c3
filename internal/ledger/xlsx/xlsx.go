// Package xlsx persists the invoice ledger as an Excel workbook: one header
// row, data rows in append order, and a trailing TOTAL row that is removed
// and rewritten around every append.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/evcharge-tools/invoice-tracker/constants"
	"github.com/evcharge-tools/invoice-tracker/internal/ledger"
)

type Store struct {
	path   string
	sheet  string
	logger *slog.Logger
}

func New(path, sheet string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if sheet == "" {
		sheet = constants.LedgerSheet
	}
	return &Store{path: path, sheet: sheet, logger: logger}
}

// Init creates the workbook with headers if it does not exist yet. An
// existing workbook is left untouched apart from ensuring the sheet exists.
func (s *Store) Init(_ context.Context) error {
	if _, err := os.Stat(s.path); err == nil {
		f, err := excelize.OpenFile(s.path)
		if err != nil {
			return fmt.Errorf("open ledger workbook: %w", err)
		}
		defer closeQuietly(f, s.logger)
		if idx, _ := f.GetSheetIndex(s.sheet); idx != -1 {
			return nil
		}
		if _, err := f.NewSheet(s.sheet); err != nil {
			return fmt.Errorf("create ledger sheet: %w", err)
		}
		if err := s.writeHeaders(f); err != nil {
			return err
		}
		return f.Save()
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat ledger workbook: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
	}
	f := excelize.NewFile()
	defer closeQuietly(f, s.logger)
	if err := f.SetSheetName(f.GetSheetName(0), s.sheet); err != nil {
		return fmt.Errorf("name ledger sheet: %w", err)
	}
	if err := s.writeHeaders(f); err != nil {
		return err
	}
	// Readability only; the data contract is positional.
	_ = f.SetColWidth(s.sheet, "A", "A", 34)
	_ = f.SetColWidth(s.sheet, "B", "F", 14)
	_ = f.SetColWidth(s.sheet, "G", "G", 30)
	_ = f.SetColWidth(s.sheet, "H", "J", 16)
	_ = f.SetColWidth(s.sheet, "K", "K", 50)
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("write ledger workbook: %w", err)
	}
	s.logger.Info("ledger.xlsx.created", "path", s.path, "sheet", s.sheet)
	return nil
}

func (s *Store) writeHeaders(f *excelize.File) error {
	for i, h := range constants.LedgerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(s.sheet, cell, h); err != nil {
			return fmt.Errorf("write header %q: %w", h, err)
		}
	}
	return nil
}

// Append removes the trailing TOTAL row if present, adds the data row, then
// recomputes and re-appends the TOTAL row, all within one save so no reader
// of the file ever sees two sentinels or a sentinel out of place.
func (s *Store) Append(_ context.Context, row ledger.Row) error {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("open ledger workbook: %w", err)
	}
	defer closeQuietly(f, s.logger)

	rows, lastLine, err := s.dataRows(f)
	if err != nil {
		return err
	}
	// lastLine is the sheet line of the last data row (1 = header only).
	if err := s.writeRow(f, lastLine+1, row); err != nil {
		return err
	}
	sum := ledger.Summarize(append(rows, row))
	if err := s.writeTotal(f, lastLine+2, sum); err != nil {
		return err
	}
	// The sentinel used to live where the new data row now is; drop any
	// stale copy below the fresh one.
	if err := s.trimBelow(f, lastLine+2); err != nil {
		return err
	}
	return f.Save()
}

func (s *Store) FileNames(ctx context.Context) ([]string, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.FileName)
	}
	return names, nil
}

func (s *Store) Rows(_ context.Context) ([]ledger.Row, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open ledger workbook: %w", err)
	}
	defer closeQuietly(f, s.logger)
	rows, _, err := s.dataRows(f)
	return rows, err
}

func (s *Store) Summary(ctx context.Context) (ledger.Summary, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(rows), nil
}

// Reset recreates an empty, initialized workbook.
func (s *Store) Reset(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove ledger workbook: %w", err)
	}
	return s.Init(ctx)
}

func (s *Store) Close() error { return nil }

// dataRows parses every non-sentinel row below the header. The returned line
// number is the sheet line of the last data row (1 when there are none).
func (s *Store) dataRows(f *excelize.File) ([]ledger.Row, int, error) {
	raw, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, 0, fmt.Errorf("read ledger sheet: %w", err)
	}
	var rows []ledger.Row
	lastLine := 1
	for i, cells := range raw {
		if i == 0 {
			continue // header
		}
		name := cellAt(cells, constants.ColFileName)
		if name == "" || name == constants.TotalSentinel {
			continue
		}
		rows = append(rows, ledger.Row{
			FileName:      name,
			BillingDate:   cellAt(cells, constants.ColBillingDate),
			AmountExclTax: parseDecimal(cellAt(cells, constants.ColAmountExclTax)),
			TaxAmount:     parseDecimal(cellAt(cells, constants.ColTaxAmount)),
			AmountInclTax: parseDecimal(cellAt(cells, constants.ColAmountInclTax)),
			EnergyKWh:     parseDecimal(cellAt(cells, constants.ColEnergyKWh)),
			Station:       cellAt(cells, constants.ColStation),
			Country:       cellAt(cells, constants.ColCountry),
			Duration:      cellAt(cells, constants.ColDuration),
			SessionStart:  cellAt(cells, constants.ColSessionStart),
			ArchiveLink:   cellAt(cells, constants.ColArchiveLink),
		})
		lastLine = i + 1
	}
	return rows, lastLine, nil
}

func (s *Store) writeRow(f *excelize.File, line int, row ledger.Row) error {
	values := []any{
		row.FileName,
		row.BillingDate,
		row.AmountExclTax.String(),
		row.TaxAmount.String(),
		row.AmountInclTax.String(),
		row.EnergyKWh.String(),
		row.Station,
		row.Country,
		row.Duration,
		row.SessionStart,
		row.ArchiveLink,
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, line)
		if err := f.SetCellValue(s.sheet, cell, v); err != nil {
			return fmt.Errorf("write row cell %s: %w", cell, err)
		}
	}
	return nil
}

func (s *Store) writeTotal(f *excelize.File, line int, sum ledger.Summary) error {
	values := make([]any, len(constants.LedgerHeaders))
	for i := range values {
		values[i] = ""
	}
	values[constants.ColFileName] = constants.TotalSentinel
	totals := map[int]decimal.Decimal{
		constants.ColAmountExclTax: sum.AmountExclTax,
		constants.ColTaxAmount:     sum.TaxAmount,
		constants.ColAmountInclTax: sum.AmountInclTax,
		constants.ColEnergyKWh:     sum.EnergyKWh,
	}
	for _, col := range constants.NumericColumns {
		values[col] = totals[col].String()
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, line)
		if err := f.SetCellValue(s.sheet, cell, v); err != nil {
			return fmt.Errorf("write total cell %s: %w", cell, err)
		}
	}
	return nil
}

// trimBelow removes any leftover lines after the freshly written sentinel.
func (s *Store) trimBelow(f *excelize.File, sentinelLine int) error {
	raw, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("read ledger sheet: %w", err)
	}
	for line := len(raw); line > sentinelLine; line-- {
		if err := f.RemoveRow(s.sheet, line); err != nil {
			return fmt.Errorf("trim row %d: %w", line, err)
		}
	}
	return nil
}

func cellAt(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// parseDecimal is lenient on purpose: ledger cells written by hand or by
// older runs must never break a read.
func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func closeQuietly(f *excelize.File, logger *slog.Logger) {
	if err := f.Close(); err != nil {
		logger.Warn("ledger.xlsx.close_failed", "error", err)
	}
}
