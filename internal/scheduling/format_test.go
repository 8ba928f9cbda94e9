package scheduling

import (
	"testing"
	"time"
)

// The same absolute instant must always render to the same two zone labels,
// no matter what the process-local timezone is.
func TestFormatSlotIsLocaleIndependent(t *testing.T) {
	instant := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	want := "Mar 15, 2024, 3:00 PM (IST) / Mar 15, 2024, 5:30 AM (US-ET)"

	if got := FormatSlot(instant); got != want {
		t.Fatalf("FormatSlot(%v) = %q, want %q", instant, got, want)
	}

	// Re-render the identical instant expressed in other zones.
	for _, loc := range []*time.Location{istLoc, etLoc, time.FixedZone("X", -11*3600)} {
		if got := FormatSlot(instant.In(loc)); got != want {
			t.Errorf("FormatSlot in %v = %q, want %q", loc, got, want)
		}
	}
}

// Standard time in the US (no DST) shifts the Eastern label, not the IST one.
func TestFormatSlotWinter(t *testing.T) {
	instant := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	want := "Jan 15, 2024, 3:00 PM (IST) / Jan 15, 2024, 4:30 AM (US-ET)"
	if got := FormatSlot(instant); got != want {
		t.Fatalf("FormatSlot(%v) = %q, want %q", instant, got, want)
	}
}

func TestFormatSlotZero(t *testing.T) {
	if got := FormatSlot(time.Time{}); got != "Invalid Date" {
		t.Fatalf("zero instant rendered as %q", got)
	}
}
