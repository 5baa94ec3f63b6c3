// Package ledger persists extracted invoice records as an ordered,
// append-only table. Internally there are only data rows and a typed
// Summary; the trailing "TOTAL" sentinel row is a serialization detail of
// sheet-like backends, never an ordinary row.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/evcharge-tools/invoice-tracker/internal/entity"
)

// Row is one non-aggregate ledger line. Row order is append order.
type Row struct {
	FileName      string          `json:"file_name"`
	BillingDate   string          `json:"billing_date"`
	AmountExclTax decimal.Decimal `json:"amount_excl_tax"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	AmountInclTax decimal.Decimal `json:"amount_incl_tax"`
	EnergyKWh     decimal.Decimal `json:"energy_kwh"`
	Station       string          `json:"station"`
	Country       string          `json:"country"`
	Duration      string          `json:"duration"`
	SessionStart  string          `json:"session_start"`
	ArchiveLink   string          `json:"archive_link"`
}

// RowFromRecord projects an extracted record onto the ledger column set.
func RowFromRecord(rec entity.InvoiceRecord) Row {
	return Row{
		FileName:      rec.FileName,
		BillingDate:   rec.BillingDate,
		AmountExclTax: rec.AmountExclTax,
		TaxAmount:     rec.TaxAmount,
		AmountInclTax: rec.AmountInclTax,
		EnergyKWh:     rec.EnergyKWh,
		Station:       rec.Station,
		Country:       rec.Country,
		Duration:      rec.Duration,
		SessionStart:  rec.SessionStart,
		ArchiveLink:   rec.ArchiveLink,
	}
}

// Summary holds the column sums over all data rows.
type Summary struct {
	Rows          int             `json:"rows"`
	AmountExclTax decimal.Decimal `json:"amount_excl_tax"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	AmountInclTax decimal.Decimal `json:"amount_incl_tax"`
	EnergyKWh     decimal.Decimal `json:"energy_kwh"`
}

// Add folds one row into the summary.
func (s *Summary) Add(r Row) {
	s.Rows++
	s.AmountExclTax = s.AmountExclTax.Add(r.AmountExclTax)
	s.TaxAmount = s.TaxAmount.Add(r.TaxAmount)
	s.AmountInclTax = s.AmountInclTax.Add(r.AmountInclTax)
	s.EnergyKWh = s.EnergyKWh.Add(r.EnergyKWh)
}

// Summarize computes the aggregate over a row set.
func Summarize(rows []Row) Summary {
	var s Summary
	for _, r := range rows {
		s.Add(r)
	}
	return s
}

// Store is the persistence contract shared by all ledger backends.
type Store interface {
	// Init creates the ledger with its headers if and only if it does not
	// already exist. It must never destroy existing data.
	Init(ctx context.Context) error
	// FileNames returns the identity column of every data row.
	FileNames(ctx context.Context) ([]string, error)
	// Append adds one data row and reconciles the aggregate. Callers are
	// expected to have checked idempotency first (see Writer).
	Append(ctx context.Context, row Row) error
	// Rows returns all data rows in append order.
	Rows(ctx context.Context) ([]Row, error)
	// Summary returns the current aggregate over all data rows.
	Summary(ctx context.Context) (Summary, error)
	// Reset discards all data rows, keeping an initialized empty ledger.
	Reset(ctx context.Context) error
	Close() error
}
