// Package sensor projects the published forecast snapshot into per-day
// read-only values with derived severity and display metadata.
package sensor

import (
	"fmt"

	"github.com/meteowatch/kindex-forecast/internal/domain"
)

// Unit and state class reported alongside every value.
const (
	Unit       = "K"
	StateClass = "measurement"
)

// View is the single capability a forecast consumer needs.
type View interface {
	CurrentValue() int
	Severity() domain.Severity
	Attributes() map[string]any
}

// SnapshotSource yields the latest published forecast snapshot. Implemented
// by the coordinator.
type SnapshotSource interface {
	Snapshot() *domain.Snapshot
}

// Sensor is a long-lived projection of one day offset over the coordinator's
// current snapshot. It is created once at setup and never recreated per
// cycle; identity fields are fixed, values are read through the source on
// every call. It never fetches or parses itself.
type Sensor struct {
	source SnapshotSource
	offset int
	id     string
	name   string
}

// New creates the sensor for a day offset.
func New(source SnapshotSource, offset int) *Sensor {
	return &Sensor{
		source: source,
		offset: offset,
		id:     "meteoagent_kindex_" + slug(offset),
		name:   displayName(offset),
	}
}

// ForHorizon creates one sensor per day offset 0..horizon-1.
func ForHorizon(source SnapshotSource, horizon int) []*Sensor {
	sensors := make([]*Sensor, horizon)
	for offset := range sensors {
		sensors[offset] = New(source, offset)
	}
	return sensors
}

func slug(offset int) string {
	switch offset {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("day_%d", offset)
	}
}

func displayName(offset int) string {
	switch offset {
	case 0:
		return "K-index Today"
	case 1:
		return "K-index Tomorrow"
	default:
		return fmt.Sprintf("K-index Day %d", offset)
	}
}

// ID returns the stable unique identifier.
func (s *Sensor) ID() string { return s.id }

// Name returns the display name.
func (s *Sensor) Name() string { return s.name }

// Offset returns the day offset this sensor projects.
func (s *Sensor) Offset() int { return s.offset }

// Reading returns this offset's entry from the current snapshot; a missing
// sentinel when no snapshot has been published yet.
func (s *Sensor) Reading() domain.Reading {
	return s.source.Snapshot().At(s.offset)
}

// CurrentValue returns the K-index value, 0 for sentinel readings.
func (s *Sensor) CurrentValue() int {
	return s.Reading().Value
}

// Severity classifies the current reading.
func (s *Sensor) Severity() domain.Severity {
	return domain.DeriveSeverity(s.Reading())
}

// Icon returns the display icon hint for the current reading.
func (s *Sensor) Icon() string {
	return domain.Icon(s.Reading())
}

// Attributes returns the consumer-visible attributes. The date is derived
// from the latest snapshot's reference date, so it advances with each cycle
// instead of freezing at sensor creation. Absent a snapshot, no date is
// reported.
func (s *Sensor) Attributes() map[string]any {
	r := s.Reading()
	attrs := map[string]any{
		"severity": string(domain.DeriveSeverity(r)),
		"status":   string(r.Status),
	}
	if snap := s.source.Snapshot(); snap != nil {
		attrs["date"] = snap.Date(s.offset).Format("2006-01-02")
	}
	return attrs
}
