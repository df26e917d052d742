// Package scheduler is the outbound boundary to the operating scheduler:
// the device agent that owns OS alarms, DND windows and the countdown
// surface, and keeps firing them when this process is gone.
package scheduler

import (
	"context"

	"github.com/minaret-labs/minaret/internal/model"
)

// Boundary is the abstract install/cancel surface the orchestrator drives.
// The orchestrator is its only writer; no other alert path may exist,
// otherwise the same event can fire twice.
type Boundary interface {
	InstallAlarm(ctx context.Context, locationID int, alarm model.AlarmEntry) error
	CancelAlarm(ctx context.Context, locationID int, alarmID string) error

	// InstallDNDWindow returns model.ErrPermissionDenied when the device
	// agent reports the DND system permission is missing.
	InstallDNDWindow(ctx context.Context, locationID int, window model.DNDWindowEntry) error
	CancelDNDWindow(ctx context.Context, locationID int, windowID string) error

	UpdateCountdown(ctx context.Context, payload model.CountdownPayload) error
}
