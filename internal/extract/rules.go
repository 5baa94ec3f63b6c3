package extract

import (
	"regexp"
	"strings"
)

// Field identifies one extraction target in the rule table.
type Field string

const (
	FieldInvoiceNumber Field = "invoice_number"
	FieldBillingDate   Field = "billing_date"
	FieldAmountExclTax Field = "amount_excl_tax"
	FieldTaxAmount     Field = "tax_amount"
	FieldAmountInclTax Field = "amount_incl_tax"
	FieldEnergyKWh     Field = "energy_kwh"
	FieldStation       Field = "station"
	FieldCountry       Field = "country"
	FieldSessionStart  Field = "session_start"
	FieldSessionEnd    Field = "session_end"
)

// Rule locates one field in raw OCR text: the first match of Pattern wins,
// then Post (if set) normalizes the capture. A rule never fails hard; a
// non-matching pattern is a soft-miss and the field keeps its default.
type Rule struct {
	Field   Field
	Pattern *regexp.Regexp
	Post    func(string) string
}

// Match applies the rule and returns the first captured group (or the whole
// match when the pattern has no group), post-processed.
func (r Rule) Match(text string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	out := m[0]
	if len(m) > 1 {
		out = m[1]
	}
	if r.Post != nil {
		out = r.Post(out)
	}
	return out, true
}

// Invoice text is OCR output: labels may carry non-breaking spaces and the
// euro sign floats around the numeric group. `sp` is the tolerant
// whitespace class used by every default pattern.
const sp = `[\s\x{00A0}]`

// DefaultRules is the ordered extraction table for Freshmile charging
// invoices. The billing date is anchored to the invoice-number prefix so a
// stray date elsewhere in the document is never picked up.
func DefaultRules() []Rule {
	trim := strings.TrimSpace
	return []Rule{
		{Field: FieldInvoiceNumber, Pattern: regexp.MustCompile(`(?i)BEFA\d{13}`)},
		{Field: FieldBillingDate, Pattern: regexp.MustCompile(`(?i)BEFA\d{13}` + sp + `+(\d{2}/\d{2}/\d{4})`)},
		{Field: FieldAmountExclTax, Pattern: amountPattern("HT")},
		{Field: FieldTaxAmount, Pattern: amountPattern("TVA")},
		{Field: FieldAmountInclTax, Pattern: amountPattern("TTC")},
		{Field: FieldEnergyKWh, Pattern: regexp.MustCompile(`(?i)Consommation` + sp + `*:?` + sp + `*(\d+[.,]\d+)` + sp + `*kWh`)},
		{Field: FieldStation, Pattern: regexp.MustCompile(`(?i)Station` + sp + `*:` + sp + `*(.+?)(?:\n|- Point)`), Post: trim},
		{Field: FieldCountry, Pattern: regexp.MustCompile(`(?i)Pays` + sp + `*:` + sp + `*(.+?)(?:\n|-)`), Post: trim},
		{Field: FieldSessionStart, Pattern: timestampPattern("Début"), Post: collapseSpaces},
		{Field: FieldSessionEnd, Pattern: timestampPattern("Fin"), Post: collapseSpaces},
	}
}

var spaceRun = regexp.MustCompile(sp + `+`)

// collapseSpaces folds runs of (non-breaking) whitespace into single spaces
// so captured timestamps parse with a fixed layout.
func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// amountPattern matches "Total <label>" followed by a 2-decimal amount, with
// an optional euro sign before or after the number and either , or . as the
// fractional separator.
func amountPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)Total` + sp + `+` + label + `(?:` + sp + `|:)*€?` + sp + `*(\d+[.,]\d{2})` + sp + `*€?`)
}

// timestampPattern matches "<label>: DD/MM/YYYY HH:MM:SS".
func timestampPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + label + sp + `*:` + sp + `*(\d{2}/\d{2}/\d{4}` + sp + `+\d{2}:\d{2}:\d{2})`)
}
