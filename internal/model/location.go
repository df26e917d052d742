package model

import "time"

// Location is one entry of the mosque/location directory, denormalized
// from the remote store so lookups keep working offline.
type Location struct {
	ID            int    `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Slug          string `json:"slug" db:"slug"`
	City          string `json:"city" db:"city"`
	Timezone      string `json:"timezone" db:"timezone"`
	AthanAudioURL string `json:"athan_audio_url" db:"athan_audio_url"`
	Active        bool   `json:"active" db:"active"`
}

// TZ resolves the location's timezone, defaulting to UTC when the name is
// missing or unknown.
func (l Location) TZ() *time.Location {
	if l.Timezone == "" {
		return time.UTC
	}
	tz, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return tz
}
