package scheduling

import (
	"fmt"
	"time"
	// Bundled tz database so dual-zone rendering works in containers that
	// ship without /usr/share/zoneinfo.
	_ "time/tzdata"
)

// The two reference timezones are fixed by configuration of the deployment,
// not selectable per user: specialists read IST, referrers read US Eastern.
const (
	zoneIST = "Asia/Kolkata"
	zoneET  = "America/New_York"

	slotLayout = "Jan 2, 2006, 3:04 PM"
)

var istLoc, etLoc *time.Location

func init() {
	var err error
	if istLoc, err = time.LoadLocation(zoneIST); err != nil {
		panic(fmt.Sprintf("scheduling: load %s: %v", zoneIST, err))
	}
	if etLoc, err = time.LoadLocation(zoneET); err != nil {
		panic(fmt.Sprintf("scheduling: load %s: %v", zoneET, err))
	}
}

// FormatSlot renders one absolute instant in both reference timezones, e.g.
//
//	Mar 15, 2024, 3:00 PM (IST) / Mar 15, 2024, 5:30 AM (US-ET)
//
// The same instant always yields the same composite label regardless of the
// caller's locale or device timezone.
func FormatSlot(t time.Time) string {
	if t.IsZero() {
		return "Invalid Date"
	}
	return fmt.Sprintf("%s (IST) / %s (US-ET)",
		t.In(istLoc).Format(slotLayout),
		t.In(etLoc).Format(slotLayout))
}
