package telemetry

import (
	"fmt"
	"time"
)

// DefaultOffset is the deployment's local time convention (UTC+4).
const DefaultOffset = 4 * time.Hour

// DisplayLayout is used for every timestamp shown to users or charts.
const DisplayLayout = "2006-01-02 15:04:05"

// FixedZone returns the zone server timestamps are normalised to.
func FixedZone(offset time.Duration) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	seconds := int(offset / time.Second)
	sign := "+"
	if seconds < 0 {
		sign = "-"
	}
	abs := offset.Abs()
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, int(abs.Hours()), int(abs.Minutes())%60)
	return time.FixedZone(name, seconds)
}

// FormatTimestamp renders ts in DisplayLayout without further zone conversion.
func FormatTimestamp(ts time.Time) string {
	return ts.Format(DisplayLayout)
}
