package batch

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Run identifies one batch execution and carries its cancellation flag. The
// flag may be set from any goroutine (signal handler, admin endpoint); the
// batch loop polls it between units of work, so cancellation is cooperative
// and never interrupts a half-written ledger row.
type Run struct {
	ID        string
	cancelled atomic.Bool
}

func NewRun() *Run {
	return &Run{ID: uuid.NewString()}
}

// Cancel requests a cooperative stop. Work already in flight completes.
func (r *Run) Cancel() {
	r.cancelled.Store(true)
}

// Cancelled reports whether a stop has been requested.
func (r *Run) Cancelled() bool {
	return r.cancelled.Load()
}

// finish clears the flag so the Run value can drive another batch. Called
// unconditionally when a batch returns, even after an error.
func (r *Run) finish() {
	r.cancelled.Store(false)
}

// Result tallies one batch execution.
type Result struct {
	RunID   string `json:"run_id"`
	New     int    `json:"new"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	Stopped bool   `json:"stopped"`
}

// Report renders the end-of-run summary line.
func (r Result) Report() string {
	var b strings.Builder
	if r.Stopped {
		b.WriteString("stopped early: ")
	}
	switch {
	case r.New == 0 && r.Skipped == 0:
		b.WriteString("no invoices found")
	case r.New == 0:
		fmt.Fprintf(&b, "all %d invoices already present", r.Skipped)
	default:
		fmt.Fprintf(&b, "%d new invoices recorded, %d already present", r.New, r.Skipped)
	}
	if r.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", r.Failed)
	}
	return b.String()
}
