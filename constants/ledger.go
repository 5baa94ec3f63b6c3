package constants

// TotalSentinel is the identity-column value of the reserved aggregate row.
// It only ever exists at the storage boundary; no internal type carries it.
const TotalSentinel = "TOTAL"

// LedgerSheet is the default sheet/table name for the invoice ledger.
const LedgerSheet = "Factures"

// LedgerHeaders is the fixed, position-based column layout of the ledger.
// The dashboard and every store backend agree on these positions.
var LedgerHeaders = []string{
	"File Name",
	"Date",
	"Amount excl. tax (EUR)",
	"Tax (EUR)",
	"Amount incl. tax (EUR)",
	"kWh",
	"Station",
	"Country",
	"Duration",
	"Session Start",
	"Archive Link",
}

// Column indexes (zero-based) into LedgerHeaders.
const (
	ColFileName = iota
	ColBillingDate
	ColAmountExclTax
	ColTaxAmount
	ColAmountInclTax
	ColEnergyKWh
	ColStation
	ColCountry
	ColDuration
	ColSessionStart
	ColArchiveLink
)

// NumericColumns lists the columns summed into the aggregate row.
var NumericColumns = []int{ColAmountExclTax, ColTaxAmount, ColAmountInclTax, ColEnergyKWh}
