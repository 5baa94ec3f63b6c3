package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = `Freshmile SAS
Facture payée

BEFA2025000012345 15/03/2025

Détails de la recharge
Station : Super U Wissembourg - Point de charge 2
Pays : France
Début : 31/10/2025 08:08:28
Fin : 31/10/2025 09:40:28
Consommation : 12,34 kWh

Total HT : 10,42 €
Total TVA : 2,08 €
Total TTC : 12,50 €
`

func TestExtractSampleInvoice(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract(sampleInvoice)

	assert.Equal(t, "BEFA2025000012345", rec.InvoiceNumber)
	assert.Equal(t, "15/03/2025", rec.BillingDate)
	assert.True(t, rec.AmountExclTax.Equal(decimal.RequireFromString("10.42")), "HT = %s", rec.AmountExclTax)
	assert.True(t, rec.TaxAmount.Equal(decimal.RequireFromString("2.08")), "TVA = %s", rec.TaxAmount)
	assert.True(t, rec.AmountInclTax.Equal(decimal.RequireFromString("12.50")), "TTC = %s", rec.AmountInclTax)
	assert.True(t, rec.EnergyKWh.Equal(decimal.RequireFromString("12.34")), "kWh = %s", rec.EnergyKWh)
	assert.Equal(t, "Super U Wissembourg", rec.Station)
	assert.Equal(t, "France", rec.Country)
	assert.Equal(t, "31/10/2025 08:08:28", rec.SessionStart)
	assert.Equal(t, "31/10/2025 09:40:28", rec.SessionEnd)
	assert.Equal(t, "1h32", rec.Duration)
}

func TestExtractEmptyText(t *testing.T) {
	e := NewExtractor(nil, nil)
	for _, text := range []string{"", "lorem ipsum dolor sit amet", "Total due: $41.99"} {
		rec := e.Extract(text)
		assert.Empty(t, rec.InvoiceNumber)
		assert.Empty(t, rec.BillingDate)
		assert.Empty(t, rec.Station)
		assert.Empty(t, rec.Country)
		assert.Empty(t, rec.Duration)
		assert.True(t, rec.AmountExclTax.IsZero())
		assert.True(t, rec.TaxAmount.IsZero())
		assert.True(t, rec.AmountInclTax.IsZero())
		assert.True(t, rec.EnergyKWh.IsZero())
	}
}

func TestExtractDecimalSeparators(t *testing.T) {
	e := NewExtractor(nil, nil)
	comma := e.Extract("Total TTC : 10,12 €")
	point := e.Extract("Total TTC : 10.12 €")
	want := decimal.RequireFromString("10.12")
	assert.True(t, comma.AmountInclTax.Equal(want))
	assert.True(t, point.AmountInclTax.Equal(want))
}

func TestExtractToleratesNonBreakingSpaces(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract("Total\u00a0TTC\u00a0:\u00a0\u20ac\u00a07,00\nConsommation\u00a0:\u00a05,50\u00a0kWh")
	assert.True(t, rec.AmountInclTax.Equal(decimal.RequireFromString("7.00")))
	assert.True(t, rec.EnergyKWh.Equal(decimal.RequireFromString("5.50")))
}

func TestExtractSessionBoundsWithNonBreakingSpaces(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract("D\u00e9but\u00a0:\u00a031/10/2025\u00a008:08:28\nFin\u00a0:\u00a031/10/2025\u00a009:40:28")
	assert.Equal(t, "31/10/2025 08:08:28", rec.SessionStart)
	assert.Equal(t, "31/10/2025 09:40:28", rec.SessionEnd)
	assert.Equal(t, "1h32", rec.Duration)
}

func TestExtractCurrencySymbolBeforeAmount(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract("Total TTC : € 19,50")
	assert.True(t, rec.AmountInclTax.Equal(decimal.RequireFromString("19.50")))
}

func TestExtractDateRequiresInvoiceNumberAnchor(t *testing.T) {
	e := NewExtractor(nil, nil)

	// A date not preceded by the invoice-number prefix must not be picked up.
	rec := e.Extract("Émise le 15/03/2025\nTotal TTC : 5,00 €")
	assert.Empty(t, rec.BillingDate)

	rec = e.Extract("BEFA2025000012345 15/03/2025")
	assert.Equal(t, "15/03/2025", rec.BillingDate)
}

func TestExtractFirstMatchWins(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract("Total TTC : 1,00 €\nTotal TTC : 2,00 €")
	assert.True(t, rec.AmountInclTax.Equal(decimal.RequireFromString("1.00")))
}

func TestExtractDurationUnsetWhenBoundMissing(t *testing.T) {
	e := NewExtractor(nil, nil)

	rec := e.Extract("Début : 31/10/2025 08:08:28")
	assert.Equal(t, "31/10/2025 08:08:28", rec.SessionStart)
	assert.Empty(t, rec.SessionEnd)
	assert.Empty(t, rec.Duration)

	// End before start is advisory-only: both bounds kept, duration unset.
	rec = e.Extract("Début : 31/10/2025 09:00:00\nFin : 31/10/2025 08:00:00")
	assert.Empty(t, rec.Duration)
}

func TestDeriveDuration(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		want    string
		wantErr bool
	}{
		{name: "typical session", start: "31/10/2025 08:08:28", end: "31/10/2025 09:40:28", want: "1h32"},
		{name: "same instant", start: "01/01/2025 12:00:00", end: "01/01/2025 12:00:00", want: "0h00"},
		{name: "under an hour", start: "01/01/2025 12:00:00", end: "01/01/2025 12:45:00", want: "0h45"},
		{name: "crosses midnight", start: "31/12/2024 23:30:00", end: "01/01/2025 01:05:00", want: "1h35"},
		{name: "multi hour", start: "05/01/2025 06:00:00", end: "05/01/2025 16:07:00", want: "10h07"},
		{name: "end before start", start: "01/01/2025 10:00:00", end: "01/01/2025 09:00:00", wantErr: true},
		{name: "malformed start", start: "2025-01-01 10:00:00", end: "01/01/2025 11:00:00", wantErr: true},
		{name: "malformed end", start: "01/01/2025 10:00:00", end: "garbage", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveDuration(tt.start, tt.end)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleMatchWholePatternWithoutGroup(t *testing.T) {
	rules := DefaultRules()
	var invoiceRule Rule
	for _, r := range rules {
		if r.Field == FieldInvoiceNumber {
			invoiceRule = r
		}
	}
	require.NotNil(t, invoiceRule.Pattern)

	got, ok := invoiceRule.Match("ref BEFA1234567890123 trailing")
	require.True(t, ok)
	assert.Equal(t, "BEFA1234567890123", got)
}
