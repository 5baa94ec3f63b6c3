package xlsx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/evcharge-tools/invoice-tracker/constants"
	"github.com/evcharge-tools/invoice-tracker/internal/ledger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "ledger.xlsx"), "", nil)
}

func row(fileName, ttc, kwh string) ledger.Row {
	return ledger.Row{
		FileName:      fileName,
		BillingDate:   "05/01/2025",
		AmountInclTax: decimal.RequireFromString(ttc),
		EnergyKWh:     decimal.RequireFromString(kwh),
	}
}

// sheetLines reads the raw sheet so the sentinel layout can be asserted,
// something the Store API deliberately hides.
func sheetLines(t *testing.T, s *Store) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(s.path)
	require.NoError(t, err)
	defer f.Close()
	lines, err := f.GetRows(s.sheet)
	require.NoError(t, err)
	return lines
}

func TestInitCreatesWorkbookWithHeaders(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Init(ctx))

	lines := sheetLines(t, s)
	require.Len(t, lines, 1)
	assert.Equal(t, constants.LedgerHeaders, lines[0])
}

func TestInitLeavesExistingWorkbookIntact(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Append(ctx, row("a.pdf", "12.50", "10.00")))

	require.NoError(t, s.Init(ctx))

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAppendMaintainsSingleTrailingTotalRow(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Init(ctx))

	require.NoError(t, s.Append(ctx, row("a.pdf", "12.50", "10.00")))
	require.NoError(t, s.Append(ctx, row("b.pdf", "7.00", "5.25")))

	lines := sheetLines(t, s)
	// header + 2 data rows + 1 aggregate row
	require.Len(t, lines, 4)
	assert.Equal(t, "a.pdf", lines[1][constants.ColFileName])
	assert.Equal(t, "b.pdf", lines[2][constants.ColFileName])

	total := lines[3]
	assert.Equal(t, constants.TotalSentinel, total[constants.ColFileName])
	assert.Equal(t, "19.5", total[constants.ColAmountInclTax])
	assert.Equal(t, "15.25", total[constants.ColEnergyKWh])
}

func TestRowsExcludeTotalRow(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Append(ctx, row("a.pdf", "12.50", "10.00")))

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a.pdf", rows[0].FileName)

	names, err := s.FileNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf"}, names)
}

func TestRowsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.xlsx")

	s := New(path, "", nil)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Append(ctx, row("a.pdf", "12.50", "10.00")))
	require.NoError(t, s.Close())

	reopened := New(path, "", nil)
	require.NoError(t, reopened.Init(ctx))
	sum, err := reopened.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Rows)
	assert.True(t, sum.AmountInclTax.Equal(decimal.RequireFromString("12.50")))
}

func TestResetKeepsHeadersOnly(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Append(ctx, row("a.pdf", "12.50", "10.00")))

	require.NoError(t, s.Reset(ctx))

	lines := sheetLines(t, s)
	require.Len(t, lines, 1)
	assert.Equal(t, constants.LedgerHeaders, lines[0])
	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Rows)
}

func TestAppendToleratesForeignSentinelPlacement(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Append(ctx, row("a.pdf", "12.50", "10.00")))

	// Simulate a hand-edited sheet with a second stale aggregate line.
	f, err := excelize.OpenFile(s.path)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(s.sheet, "A4", constants.TotalSentinel))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	require.NoError(t, s.Append(ctx, row("b.pdf", "7.00", "5.25")))

	lines := sheetLines(t, s)
	require.Len(t, lines, 4)
	assert.Equal(t, constants.TotalSentinel, lines[3][constants.ColFileName])
	assert.Equal(t, "19.5", lines[3][constants.ColAmountInclTax])
}
