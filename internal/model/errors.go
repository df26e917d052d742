package model

import "errors"

var (
	// ErrSourceUnavailable marks a network/remote failure of one source
	// tier. The resolver recovers it internally by falling through.
	ErrSourceUnavailable = errors.New("schedule source unavailable")

	// ErrNoDataForDate means every tier was exhausted; callers render a
	// "no data, check connectivity" state instead of stale times.
	ErrNoDataForDate = errors.New("no schedule data for date")

	// ErrPermissionDenied means the device agent lacks the system
	// permission for a subsystem (DND). Only that subsystem is disabled.
	ErrPermissionDenied = errors.New("permission denied by device")

	// ErrStaleRecovery marks a boot record from a previous day. Discarded
	// silently; never re-arms yesterday's alarms.
	ErrStaleRecovery = errors.New("stale boot recovery record")

	// ErrPersistenceFailed is a durable write that failed after its one
	// immediate retry; the previous value is left untouched.
	ErrPersistenceFailed = errors.New("persistence failed")
)
