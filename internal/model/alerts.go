package model

import "time"

// AlarmEntry is one timed alarm installed through the scheduling boundary.
type AlarmEntry struct {
	ID      string     `json:"id"`
	Kind    PrayerKind `json:"kind"`
	Name    string     `json:"name"`
	FiresAt time.Time  `json:"fires_at"`
}

// DNDWindowEntry is one do-not-disturb window installed around an event's
// secondary (congregation) time.
type DNDWindowEntry struct {
	ID    string     `json:"id"`
	Kind  PrayerKind `json:"kind"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
}

// CountdownItem is the "name + alert time" projection shown on the
// persistent countdown surface.
type CountdownItem struct {
	Name      string `json:"name"`
	AlertTime string `json:"alert_time"`
}

// CountdownPayload is pushed on every reconcile; the device agent derives
// time-to-next-prayer from it locally.
type CountdownPayload struct {
	LocationID int             `json:"location_id"`
	Date       string          `json:"date"`
	Items      []CountdownItem `json:"items"`
}

// InstalledAlertSet is the idempotency ledger row for one (location, date):
// exactly which concrete boundary entries are live, under which schedule
// fingerprint. The orchestrator is its only writer.
type InstalledAlertSet struct {
	LocationID     int              `json:"location_id"`
	Date           string           `json:"date"`
	Fingerprint    string           `json:"fingerprint"`
	Alarms         []AlarmEntry     `json:"alarms"`
	DNDWindows     []DNDWindowEntry `json:"dnd_windows"`
	DNDUnavailable bool             `json:"dnd_unavailable"`
	InstalledAt    time.Time        `json:"installed_at"`
}

// BootRecord is the minimal durable record a boot-time agent needs to
// re-arm today's alarms after a cold restart.
type BootRecord struct {
	LocationID       int           `json:"location_id"`
	Timezone         string        `json:"timezone"`
	ScheduledForDate string        `json:"scheduled_for_date"`
	ModeEffective    bool          `json:"mode_effective"`
	Events           []PrayerEvent `json:"events"`
}

// AlertSettings are the user-facing knobs read by the orchestrator.
type AlertSettings struct {
	DNDEnabled         bool               `json:"dnd_enabled"`
	DNDBeforeMinutes   int                `json:"dnd_before_minutes"`
	DNDAfterMinutes    int                `json:"dnd_after_minutes"`
	EnabledKinds       map[PrayerKind]bool `json:"enabled_kinds"`
	CalendarOffsetDays int                `json:"calendar_offset_days"`
}

// DefaultAlertSettings mirror the out-of-box behavior: DND on for every
// canonical prayer, five minutes before and fifteen after congregation.
func DefaultAlertSettings() AlertSettings {
	enabled := make(map[PrayerKind]bool, len(CanonicalKinds))
	for k := range CanonicalKinds {
		enabled[k] = true
	}
	return AlertSettings{
		DNDEnabled:       true,
		DNDBeforeMinutes: 5,
		DNDAfterMinutes:  15,
		EnabledKinds:     enabled,
	}
}
