package packets

import "github.com/minaret-labs/minaret/internal/model"

type TokenResponse struct {
	Token string `json:"token"`
}

type ProfileResponse struct {
	ID    int     `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

type ModeResponse struct {
	AutoDetected         bool `json:"auto_detected"`
	ManualOverrideActive bool `json:"manual_override_active"`
	Effective            bool `json:"effective"`
}

func ModeResponseFrom(s model.ModeState) ModeResponse {
	return ModeResponse{
		AutoDetected:         s.AutoDetected,
		ManualOverrideActive: s.ManualOverrideActive,
		Effective:            s.Effective,
	}
}

type EventResponse struct {
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	AlertTime     string `json:"alert_time"`
	SecondaryTime string `json:"secondary_time"`
}

type ScheduleResponse struct {
	LocationID int             `json:"location_id"`
	Date       string          `json:"date"`
	Tier       string          `json:"tier,omitempty"`
	Events     []EventResponse `json:"events"`
	Sunrise    string          `json:"sunrise,omitempty"`
	SolarNoon  string          `json:"solar_noon,omitempty"`
	Sunset     string          `json:"sunset,omitempty"`
}

func ScheduleResponseFrom(s model.DailySchedule, tier string) ScheduleResponse {
	out := ScheduleResponse{
		LocationID: s.LocationID,
		Date:       s.DateKey(),
		Tier:       tier,
		Events:     make([]EventResponse, 0, len(s.Events)),
		Sunrise:    s.Twilight.Sunrise,
		SolarNoon:  s.Twilight.SolarNoon,
		Sunset:     s.Twilight.Sunset,
	}
	for _, e := range s.Events {
		out.Events = append(out.Events, EventResponse{
			Name:          e.Name,
			Kind:          string(e.Kind),
			AlertTime:     e.AlertTime,
			SecondaryTime: e.SecondaryTime,
		})
	}
	return out
}

type SettingsResponse struct {
	DNDEnabled         bool     `json:"dnd_enabled"`
	DNDBeforeMinutes   int      `json:"dnd_before_minutes"`
	DNDAfterMinutes    int      `json:"dnd_after_minutes"`
	EnabledKinds       []string `json:"enabled_kinds"`
	CalendarOffsetDays int      `json:"calendar_offset_days"`
}

func SettingsResponseFrom(s model.AlertSettings) SettingsResponse {
	out := SettingsResponse{
		DNDEnabled:         s.DNDEnabled,
		DNDBeforeMinutes:   s.DNDBeforeMinutes,
		DNDAfterMinutes:    s.DNDAfterMinutes,
		CalendarOffsetDays: s.CalendarOffsetDays,
	}
	for k, enabled := range s.EnabledKinds {
		if enabled {
			out.EnabledKinds = append(out.EnabledKinds, string(k))
		}
	}
	return out
}

type LocationResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	City     string `json:"city"`
	Timezone string `json:"timezone"`
	Active   bool   `json:"active"`
}

type ReconcileResponse struct {
	Fingerprint    string `json:"fingerprint"`
	Alarms         int    `json:"alarms"`
	DNDWindows     int    `json:"dnd_windows"`
	DNDUnavailable bool   `json:"dnd_unavailable"`
}

type AssetStatusResponse struct {
	Cached bool   `json:"cached"`
	Path   string `json:"path,omitempty"`
}
