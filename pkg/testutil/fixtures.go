package testutil

import "time"

// Fixed identifiers for deterministic tests.
const (
	TestTenantID     = "00000000-0000-0000-0000-000000000010"
	TestConsumerID   = "00000000-0000-0000-0000-000000000100"
	TestConsumerID2  = "00000000-0000-0000-0000-000000000101"
	TestProfileID    = "00000000-0000-0000-0000-000000000200"
	TestExternalID   = "00000000-0000-0000-0000-000000000201"
	TestNegotiation  = "00000000-0000-0000-0000-000000000300"
	TestPartnerID    = "00000000-0000-0000-0000-000000000400"
	TestProfileToken = "cust_profile_123"
)

// Today returns the current UTC date at midnight.
func Today() time.Time {
	return Date(time.Now().UTC())
}

// Date truncates t to midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Day builds a UTC date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
