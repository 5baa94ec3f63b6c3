package extract

import (
	"fmt"
	"math"
	"time"

	"github.com/evcharge-tools/invoice-tracker/constants"
)

// DeriveDuration computes the charging session length from its two bounds
// ("DD/MM/YYYY HH:MM:SS", naive local time) and formats it as
// "<hours>h<minutes>" with minutes zero-padded to two digits.
// An end before the start is rejected rather than emitting a negative span.
func DeriveDuration(start, end string) (string, error) {
	s, err := time.Parse(constants.TimestampLayout, start)
	if err != nil {
		return "", fmt.Errorf("parse session start %q: %w", start, err)
	}
	e, err := time.Parse(constants.TimestampLayout, end)
	if err != nil {
		return "", fmt.Errorf("parse session end %q: %w", end, err)
	}
	minutes := int(math.Round(e.Sub(s).Minutes()))
	if minutes < 0 {
		return "", fmt.Errorf("session end %q precedes start %q", end, start)
	}
	return fmt.Sprintf("%dh%02d", minutes/60, minutes%60), nil
}
