package extract

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/evcharge-tools/invoice-tracker/internal/entity"
)

// Extractor applies an ordered rule table to raw OCR text and produces a
// structured invoice record. It never fails: every field independently
// falls back to its zero value when its pattern misses.
type Extractor struct {
	rules  []Rule
	logger *slog.Logger
}

func NewExtractor(rules []Rule, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if rules == nil {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules, logger: logger}
}

// Extract runs every rule over rawText and assembles the record. The caller
// owns FileName and ArchiveLink; everything else is filled here.
func (e *Extractor) Extract(rawText string) entity.InvoiceRecord {
	captures := make(map[Field]string, len(e.rules))
	for _, r := range e.rules {
		v, ok := r.Match(rawText)
		if !ok {
			e.logger.Debug("extract.field.miss", "field", string(r.Field))
			continue
		}
		captures[r.Field] = v
	}

	rec := entity.InvoiceRecord{
		InvoiceNumber: captures[FieldInvoiceNumber],
		BillingDate:   captures[FieldBillingDate],
		AmountExclTax: e.parseAmount(FieldAmountExclTax, captures[FieldAmountExclTax]),
		TaxAmount:     e.parseAmount(FieldTaxAmount, captures[FieldTaxAmount]),
		AmountInclTax: e.parseAmount(FieldAmountInclTax, captures[FieldAmountInclTax]),
		EnergyKWh:     e.parseAmount(FieldEnergyKWh, captures[FieldEnergyKWh]),
		Station:       captures[FieldStation],
		Country:       captures[FieldCountry],
		SessionStart:  captures[FieldSessionStart],
		SessionEnd:    captures[FieldSessionEnd],
	}

	if rec.SessionStart != "" && rec.SessionEnd != "" {
		dur, err := DeriveDuration(rec.SessionStart, rec.SessionEnd)
		if err != nil {
			// Advisory field only: log and leave unset.
			e.logger.Warn("extract.duration.failed",
				"start", rec.SessionStart, "end", rec.SessionEnd, "error", err)
		} else {
			rec.Duration = dur
		}
	}

	return rec
}

// parseAmount normalizes the fractional separator and parses a non-negative
// decimal. Unparsable or absent input yields zero (soft-miss).
func (e *Extractor) parseAmount(f Field, raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		e.logger.Debug("extract.amount.unparsable", "field", string(f), "raw", raw)
		return decimal.Zero
	}
	return d
}
