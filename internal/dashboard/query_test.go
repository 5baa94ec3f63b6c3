package dashboard

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/evcharge-tools/invoice-tracker/internal/ledger"
)

func rowsFixture() []ledger.Row {
	return []ledger.Row{
		{FileName: "b.pdf", BillingDate: "20/01/2025", Station: "Ionity",
			AmountInclTax: decimal.RequireFromString("7.00")},
		{FileName: "a.pdf", BillingDate: "05/01/2025", Station: "Super U",
			AmountInclTax: decimal.RequireFromString("12.50")},
		{FileName: "c.pdf", BillingDate: "not-a-date", Station: "Super U",
			AmountInclTax: decimal.RequireFromString("12.50")},
	}
}

func names(rows []ledger.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.FileName
	}
	return out
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	got := Filter(rowsFixture(), "SUPER")
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, names(got))
}

func TestFilterMatchesDateSubstring(t *testing.T) {
	got := Filter(rowsFixture(), "20/01")
	assert.Equal(t, []string{"b.pdf"}, names(got))
}

func TestSortByDatePutsMalformedFirst(t *testing.T) {
	rows := rowsFixture()
	Sort(rows, SortDate, false)
	assert.Equal(t, []string{"c.pdf", "a.pdf", "b.pdf"}, names(rows))
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	rows := rowsFixture()
	// a.pdf and c.pdf share the amount; their relative order must survive.
	Sort(rows, SortAmount, false)
	assert.Equal(t, []string{"b.pdf", "a.pdf", "c.pdf"}, names(rows))
}

func TestSortUnknownKeyLeavesOrder(t *testing.T) {
	rows := rowsFixture()
	Sort(rows, "bogus", false)
	assert.Equal(t, []string{"b.pdf", "a.pdf", "c.pdf"}, names(rows))
}

func TestConsumptionGroupsUnparsableDatesLast(t *testing.T) {
	points := Consumption(rowsFixture(), GranularityMonthly)
	assert.Equal(t, 2, len(points))
	assert.Equal(t, "2025-01", points[0].Period)
	assert.Equal(t, 2, points[0].Invoices)
	assert.Equal(t, UnknownPeriod, points[1].Period)
}
