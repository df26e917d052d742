package packets

type SignupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     *string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateSettingsRequest carries partial updates; nil fields keep their
// stored value.
type UpdateSettingsRequest struct {
	DNDEnabled         *bool    `json:"dnd_enabled"`
	DNDBeforeMinutes   *int     `json:"dnd_before_minutes"`
	DNDAfterMinutes    *int     `json:"dnd_after_minutes"`
	EnabledKinds       []string `json:"enabled_kinds"`
	CalendarOffsetDays *int     `json:"calendar_offset_days"`
}
