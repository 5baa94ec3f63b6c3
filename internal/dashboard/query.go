package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evcharge-tools/invoice-tracker/constants"
	"github.com/evcharge-tools/invoice-tracker/internal/ledger"
)

// Sort keys accepted by the invoices endpoint.
const (
	SortFile    = "file"
	SortDate    = "date"
	SortStation = "station"
	SortAmount  = "amount"
	SortEnergy  = "kwh"
)

// Filter keeps rows whose file name, billing date, or station contains the
// query, case-insensitively. An empty query keeps everything.
func Filter(rows []ledger.Row, query string) []ledger.Row {
	if query == "" {
		return rows
	}
	q := strings.ToLower(query)
	out := make([]ledger.Row, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.FileName), q) ||
			strings.Contains(r.BillingDate, q) ||
			strings.Contains(strings.ToLower(r.Station), q) {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders rows by the given key. The sort is stable, so rows that
// compare equal keep their ledger (append) order. Unknown keys leave the
// slice untouched.
func Sort(rows []ledger.Row, key string, descending bool) {
	var less func(a, b ledger.Row) bool
	switch key {
	case SortFile:
		less = func(a, b ledger.Row) bool { return a.FileName < b.FileName }
	case SortDate:
		less = func(a, b ledger.Row) bool { return dateSortKey(a.BillingDate) < dateSortKey(b.BillingDate) }
	case SortStation:
		less = func(a, b ledger.Row) bool {
			return strings.ToLower(a.Station) < strings.ToLower(b.Station)
		}
	case SortAmount:
		less = func(a, b ledger.Row) bool { return a.AmountInclTax.LessThan(b.AmountInclTax) }
	case SortEnergy:
		less = func(a, b ledger.Row) bool { return a.EnergyKWh.LessThan(b.EnergyKWh) }
	default:
		return
	}
	if descending {
		asc := less
		less = func(a, b ledger.Row) bool { return asc(b, a) }
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

// dateSortKey turns DD/MM/YYYY into YYYYMMDD so string order is date order.
// Malformed dates sort first.
func dateSortKey(d string) string {
	t, err := time.Parse(constants.DateLayout, d)
	if err != nil {
		return ""
	}
	return t.Format("20060102")
}

// Consumption granularities.
const (
	GranularityMonthly = "monthly"
	GranularityDaily   = "daily"
)

// UnknownPeriod groups rows whose billing date does not parse.
const UnknownPeriod = "unknown"

// ConsumptionPoint is one aggregation bucket of the consumption series.
type ConsumptionPoint struct {
	Period        string          `json:"period"`
	Invoices      int             `json:"invoices"`
	EnergyKWh     decimal.Decimal `json:"energy_kwh"`
	AmountInclTax decimal.Decimal `json:"amount_incl_tax"`
}

// Consumption buckets rows by month ("2025-01") or day ("2025-01-05") and
// returns the buckets in chronological order, the unknown bucket last.
func Consumption(rows []ledger.Row, granularity string) []ConsumptionPoint {
	layout := "2006-01"
	if granularity == GranularityDaily {
		layout = "2006-01-02"
	}

	buckets := make(map[string]*ConsumptionPoint)
	for _, r := range rows {
		period := UnknownPeriod
		if t, err := time.Parse(constants.DateLayout, r.BillingDate); err == nil {
			period = t.Format(layout)
		}
		p, ok := buckets[period]
		if !ok {
			p = &ConsumptionPoint{Period: period}
			buckets[period] = p
		}
		p.Invoices++
		p.EnergyKWh = p.EnergyKWh.Add(r.EnergyKWh)
		p.AmountInclTax = p.AmountInclTax.Add(r.AmountInclTax)
	}

	out := make([]ConsumptionPoint, 0, len(buckets))
	for _, p := range buckets {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period == UnknownPeriod {
			return false
		}
		if out[j].Period == UnknownPeriod {
			return true
		}
		return out[i].Period < out[j].Period
	})
	return out
}
