package model

// ModeState is the persisted auto/manual state of the seasonal (Ramadan)
// display mode. Effective is what the rest of the system reads; it tracks
// AutoDetected until the user toggles manually, after which the manual
// latch wins until ResetToAuto clears it.
type ModeState struct {
	AutoDetected         bool `json:"auto_detected" db:"auto_detected"`
	ManualOverrideActive bool `json:"manual_override_active" db:"manual_override_active"`
	LastManualValue      bool `json:"last_manual_value" db:"last_manual_value"`
	Effective            bool `json:"effective" db:"effective"`
}
