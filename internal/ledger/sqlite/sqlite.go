// Package sqlite implements the invoice ledger on an embedded SQLite file.
// Amounts are stored as decimal strings, never floats, so the ledger sums
// stay exact no matter how many rows accumulate.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	// register sqlite driver
	_ "modernc.org/sqlite"

	"github.com/evcharge-tools/invoice-tracker/internal/ledger"
)

// Store implements ledger.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite ledger at the given path.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS invoices (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name TEXT NOT NULL UNIQUE,
	billing_date TEXT NOT NULL DEFAULT '',
	amount_excl_tax TEXT NOT NULL DEFAULT '0',
	tax_amount TEXT NOT NULL DEFAULT '0',
	amount_incl_tax TEXT NOT NULL DEFAULT '0',
	energy_kwh TEXT NOT NULL DEFAULT '0',
	station TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	duration TEXT NOT NULL DEFAULT '',
	session_start TEXT NOT NULL DEFAULT '',
	archive_link TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_invoices_billing_date ON invoices(billing_date);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) FileNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_name FROM invoices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *Store) Append(ctx context.Context, row ledger.Row) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO invoices(file_name, billing_date, amount_excl_tax, tax_amount, amount_incl_tax,
	energy_kwh, station, country, duration, session_start, archive_link)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
	)
	return err
}

func (s *Store) Rows(ctx context.Context) ([]ledger.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT file_name, billing_date, amount_excl_tax, tax_amount, amount_incl_tax,
	energy_kwh, station, country, duration, session_start, archive_link
FROM invoices
ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Row
	for rows.Next() {
		var r ledger.Row
		var ht, tva, ttc, kwh string
		if err := rows.Scan(&r.FileName, &r.BillingDate, &ht, &tva, &ttc, &kwh,
			&r.Station, &r.Country, &r.Duration, &r.SessionStart, &r.ArchiveLink); err != nil {
			return nil, err
		}
		if r.AmountExclTax, err = decimal.NewFromString(ht); err != nil {
			return nil, fmt.Errorf("row %s: amount_excl_tax %q: %w", r.FileName, ht, err)
		}
		if r.TaxAmount, err = decimal.NewFromString(tva); err != nil {
			return nil, fmt.Errorf("row %s: tax_amount %q: %w", r.FileName, tva, err)
		}
		if r.AmountInclTax, err = decimal.NewFromString(ttc); err != nil {
			return nil, fmt.Errorf("row %s: amount_incl_tax %q: %w", r.FileName, ttc, err)
		}
		if r.EnergyKWh, err = decimal.NewFromString(kwh); err != nil {
			return nil, fmt.Errorf("row %s: energy_kwh %q: %w", r.FileName, kwh, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary sums in Go rather than SQL so decimal strings never pass through
// SQLite float arithmetic.
func (s *Store) Summary(ctx context.Context) (ledger.Summary, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(rows), nil
}

func (s *Store) Reset(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM invoices`)
	return err
}

// Close releases underlying database resources.
func (s *Store) Close() error {
	return s.db.Close()
}
