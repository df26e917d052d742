package model

import (
	"strings"
	"time"
)

// PrayerTimes is the adhan/iqamah pair the remote sources publish per
// prayer.
type PrayerTimes struct {
	Adhan  string `json:"adhan"`
	Iqamah string `json:"iqamah"`
}

// RawScheduleRecord is the field shape shared by the static bundle and the
// dynamic query source: one record covers either a single date or an
// inclusive [DateFrom, DateTo] range, with optional Ramadan overrides and
// twilight instants. The resolver derives a DailySchedule from it.
type RawScheduleRecord struct {
	Date     string `json:"date,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`

	HijriMonth string `json:"hijri_month,omitempty"`

	Fajr    PrayerTimes  `json:"fajr"`
	Dhuhr   PrayerTimes  `json:"dhuhr"`
	Asr     PrayerTimes  `json:"asr"`
	Maghrib PrayerTimes  `json:"maghrib"`
	Isha    PrayerTimes  `json:"isha"`
	Jummah  *PrayerTimes `json:"jummah,omitempty"`

	// Ramadan overrides: SaharEnd replaces fajr's secondary boundary and
	// becomes its own event; Iftar replaces both maghrib times; Tarawih is
	// the night congregation.
	SaharEnd string `json:"sahar_end,omitempty"`
	Iftar    string `json:"iftar,omitempty"`
	Tarawih  string `json:"tarawih,omitempty"`

	Sunrise   string `json:"sunrise,omitempty"`
	SolarNoon string `json:"solar_noon,omitempty"`
	Sunset    string `json:"sunset,omitempty"`
}

// Covers reports whether the record applies to the given calendar day,
// either by exact date or by [DateFrom, DateTo] containment.
func (r RawScheduleRecord) Covers(day time.Time) bool {
	key := day.Format(DateLayout)
	if r.Date != "" {
		return r.Date == key
	}
	if r.DateFrom == "" || r.DateTo == "" {
		return false
	}
	return r.DateFrom <= key && key <= r.DateTo
}

// IsRamadan reports whether the record's hijri month field names Ramadan.
// Source data spells it inconsistently (Ramadan/Ramadhan/Ramazan).
func (r RawScheduleRecord) IsRamadan() bool {
	m := strings.ToLower(r.HijriMonth)
	return strings.HasPrefix(m, "ramad") || strings.HasPrefix(m, "ramaz")
}

// HijriKnown reports whether the record carries lunar month information at
// all; cached-tier records resolved long ago may not.
func (r RawScheduleRecord) HijriKnown() bool {
	return r.HijriMonth != ""
}
