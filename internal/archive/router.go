// Package archive decides where processed invoice PDFs are filed and places
// them there. Buckets are keyed by billing year-month; a date that does not
// parse routes to the archive root.
package archive

import "regexp"

var billingDate = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// RootBucket is the key of the archive root (no sub-bucket).
const RootBucket = ""

// BucketKey maps a DD/MM/YYYY billing date to its YYYYMM archive bucket.
// The digits are taken verbatim from the date string, no calendar
// validation. Absent or malformed dates fall back to the root bucket.
func BucketKey(billingDateStr string) string {
	m := billingDate.FindStringSubmatch(billingDateStr)
	if m == nil {
		return RootBucket
	}
	return m[3] + m[2]
}
