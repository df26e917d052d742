package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PrayerKind identifies what a schedule event is. The five daily prayers
// plus jummah are "canonical"; tarawih and custom cover derived season
// events that only exist on some days.
type PrayerKind string

const (
	KindFajr    PrayerKind = "fajr"
	KindDhuhr   PrayerKind = "dhuhr"
	KindAsr     PrayerKind = "asr"
	KindMaghrib PrayerKind = "maghrib"
	KindIsha    PrayerKind = "isha"
	KindJummah  PrayerKind = "jummah"
	KindTarawih PrayerKind = "tarawih"
	KindCustom  PrayerKind = "custom"
)

// CanonicalKinds are the kinds that get a timed alarm installed.
var CanonicalKinds = map[PrayerKind]bool{
	KindFajr:    true,
	KindDhuhr:   true,
	KindAsr:     true,
	KindMaghrib: true,
	KindIsha:    true,
	KindJummah:  true,
}

// PrayerEvent is one alertable entry of a day's schedule. AlertTime is the
// public alert (adhan) instant, SecondaryTime the later congregation
// (iqamah) boundary used to anchor DND windows. Both are wall-clock "HH:MM"
// strings in the location's timezone. Derived season events carry the same
// instant in both fields.
type PrayerEvent struct {
	Name          string     `json:"name"`
	Kind          PrayerKind `json:"kind"`
	AlertTime     string     `json:"alert_time"`
	SecondaryTime string     `json:"secondary_time"`
}

// AlertAt resolves AlertTime against the schedule's calendar day.
func (e PrayerEvent) AlertAt(day time.Time) (time.Time, error) {
	return atWallClock(day, e.AlertTime)
}

// SecondaryAt resolves SecondaryTime against the schedule's calendar day.
func (e PrayerEvent) SecondaryAt(day time.Time) (time.Time, error) {
	return atWallClock(day, e.SecondaryTime)
}

// TwilightMarkers are informational solar instants carried alongside the
// schedule. They never become alert events.
type TwilightMarkers struct {
	Sunrise   string `json:"sunrise,omitempty"`
	SolarNoon string `json:"solar_noon,omitempty"`
	Sunset    string `json:"sunset,omitempty"`
}

// DailySchedule is the authoritative event list for one location and one
// calendar day. Date is midnight in the location's timezone. Events are
// chronological by AlertTime; at most one event per kind except custom.
type DailySchedule struct {
	LocationID int             `json:"location_id"`
	Date       time.Time       `json:"date"`
	Events     []PrayerEvent   `json:"events"`
	Twilight   TwilightMarkers `json:"twilight"`
}

// DateKey is the storage key form of the schedule's day.
func (s DailySchedule) DateKey() string {
	return s.Date.Format(DateLayout)
}

// Validate enforces the schedule invariants: parseable times, chronological
// order, and kind uniqueness (custom excepted).
func (s DailySchedule) Validate() error {
	seen := map[PrayerKind]bool{}
	prev := time.Time{}
	for _, e := range s.Events {
		at, err := e.AlertAt(s.Date)
		if err != nil {
			return fmt.Errorf("event %q: %w", e.Name, err)
		}
		if _, err := e.SecondaryAt(s.Date); err != nil {
			return fmt.Errorf("event %q: %w", e.Name, err)
		}
		if !prev.IsZero() && at.Before(prev) {
			return fmt.Errorf("event %q out of order", e.Name)
		}
		prev = at
		if e.Kind == KindCustom {
			continue
		}
		if seen[e.Kind] {
			return fmt.Errorf("duplicate %s event", e.Kind)
		}
		seen[e.Kind] = true
	}
	return nil
}

// DateLayout is the ISO calendar-day form used for storage keys and the
// boot recovery record.
const DateLayout = "2006-01-02"

// ParseWallClock splits an "HH:MM" wall-clock string.
func ParseWallClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid wall-clock time %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid wall-clock hour %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid wall-clock minute %q", s)
	}
	return hour, minute, nil
}

func atWallClock(day time.Time, clock string) (time.Time, error) {
	h, m, err := ParseWallClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), nil
}
