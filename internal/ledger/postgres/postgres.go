// Package postgres implements the invoice ledger on PostgreSQL for
// deployments where several machines share one ledger. Amounts use NUMERIC
// and are scanned through decimal strings.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/evcharge-tools/invoice-tracker/internal/ledger"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// Store implements ledger.Store backed by PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects a pgx pool using the provided DSN and pool settings.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "invoice-tracker"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("ledger.postgres.connected")
	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS invoices (
	id BIGSERIAL PRIMARY KEY,
	file_name TEXT NOT NULL UNIQUE,
	billing_date TEXT NOT NULL DEFAULT '',
	amount_excl_tax NUMERIC(12,3) NOT NULL DEFAULT 0,
	tax_amount NUMERIC(12,3) NOT NULL DEFAULT 0,
	amount_incl_tax NUMERIC(12,3) NOT NULL DEFAULT 0,
	energy_kwh NUMERIC(12,3) NOT NULL DEFAULT 0,
	station TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	duration TEXT NOT NULL DEFAULT '',
	session_start TEXT NOT NULL DEFAULT '',
	archive_link TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_invoices_billing_date ON invoices(billing_date);
`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) FileNames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT file_name FROM invoices ORDER BY id`)
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
	_, err := s.pool.Exec(ctx, `
INSERT INTO invoices(file_name, billing_date, amount_excl_tax, tax_amount, amount_incl_tax,
	energy_kwh, station, country, duration, session_start, archive_link)
VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
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
	rows, err := s.pool.Query(ctx, `
SELECT file_name, billing_date, amount_excl_tax::text, tax_amount::text, amount_incl_tax::text,
	energy_kwh::text, station, country, duration, session_start, archive_link
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
	_, err := s.pool.Exec(ctx, `DELETE FROM invoices`)
	return err
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
