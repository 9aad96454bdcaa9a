package domain

import "time"

// Status classifies how a day's reading was obtained.
type Status string

const (
	StatusOK      Status = "ok"
	StatusMissing Status = "missing" // no element for the date in the markup
	StatusInvalid Status = "invalid" // element found but text was not an integer
)

// Reading is one forecast day's K-index. Sentinel readings keep Value 0 with
// a non-ok Status so consumers can tell a measured zero from absent data.
type Reading struct {
	Value  int    `json:"value"`
	Status Status `json:"status"`
}

// OK reports whether the reading holds a parsed value.
func (r Reading) OK() bool {
	return r.Status == StatusOK
}

// Snapshot is the complete result of one update cycle: one reading per
// configured day offset, indexed by offset. A snapshot is immutable once
// published; readers share the pointer and never mutate it.
type Snapshot struct {
	ReferenceDate time.Time `json:"reference_date"` // captured once at cycle start
	FetchedAt     time.Time `json:"fetched_at"`
	Readings      []Reading `json:"readings"`
}

// At returns the reading for a day offset. A nil snapshot or an offset
// outside the horizon yields a missing sentinel, so callers never need a
// presence check.
func (s *Snapshot) At(offset int) Reading {
	if s == nil || offset < 0 || offset >= len(s.Readings) {
		return Reading{Status: StatusMissing}
	}
	return s.Readings[offset]
}

// Date returns the calendar date of a day offset within this snapshot.
func (s *Snapshot) Date(offset int) time.Time {
	return s.ReferenceDate.AddDate(0, 0, offset)
}

// Severity is the user-facing interpretation of a K-index value.
type Severity string

const (
	SeverityNone    Severity = "None"
	SeverityLow     Severity = "Low"
	SeverityMedium  Severity = "Medium"
	SeverityHigh    Severity = "High"
	SeverityUnknown Severity = "Unknown"
)

// DeriveSeverity maps a reading to its severity label. Unknown only arises
// from a non-ok reading, never from a valid numeric value.
func DeriveSeverity(r Reading) Severity {
	if !r.OK() {
		return SeverityUnknown
	}
	switch {
	case r.Value >= 5:
		return SeverityHigh
	case r.Value >= 4:
		return SeverityMedium
	case r.Value >= 1:
		return SeverityLow
	default:
		return SeverityNone
	}
}

// Material Design icon names used by the original widget consumers.
const (
	iconAlert     = "mdi:head-alert-outline"
	iconSnowflake = "mdi:head-snowflake-outline"
	iconHeart     = "mdi:head-heart-outline"
)

// Icon returns the display icon hint for a reading. The icon ladder has two
// tiers while severity has three; the two are kept as separate threshold
// tables so they can diverge.
func Icon(r Reading) string {
	switch {
	case r.OK() && r.Value >= 5:
		return iconAlert
	case r.OK() && r.Value >= 4:
		return iconSnowflake
	default:
		return iconHeart
	}
}
