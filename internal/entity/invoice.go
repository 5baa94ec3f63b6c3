package entity

import "github.com/shopspring/decimal"

// InvoiceRecord is the structured result of extracting one PDF invoice.
// It lives for the duration of a single batch unit; persistence is the
// ledger store's concern.
type InvoiceRecord struct {
	FileName      string          `json:"file_name"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	BillingDate   string          `json:"billing_date,omitempty"` // DD/MM/YYYY
	AmountExclTax decimal.Decimal `json:"amount_excl_tax"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	AmountInclTax decimal.Decimal `json:"amount_incl_tax"`
	EnergyKWh     decimal.Decimal `json:"energy_kwh"`
	Station       string          `json:"station,omitempty"`
	Country       string          `json:"country,omitempty"`
	SessionStart  string          `json:"session_start,omitempty"` // DD/MM/YYYY HH:MM:SS
	SessionEnd    string          `json:"session_end,omitempty"`
	Duration      string          `json:"duration,omitempty"` // "<hours>h<minutes>", e.g. "1h32"
	ArchiveLink   string          `json:"archive_link,omitempty"`
}
