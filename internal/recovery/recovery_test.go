package recovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minaret-labs/minaret/internal/model"
)

func testSchedule(t *testing.T) model.DailySchedule {
	t.Helper()
	tz, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	return model.DailySchedule{
		LocationID: 3,
		Date:       time.Date(2026, 8, 28, 0, 0, 0, 0, tz),
		Events: []model.PrayerEvent{
			{Name: "Fajr", Kind: model.KindFajr, AlertTime: "04:45", SecondaryTime: "05:15"},
			{Name: "Dhuhr", Kind: model.KindDhuhr, AlertTime: "13:05", SecondaryTime: "13:30"},
		},
	}
}

func TestPersistAndRecoverRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	schedule := testSchedule(t)

	require.NoError(t, store.Persist(schedule, true))

	now := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	got, err := store.Recover(3, now)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, got.ModeEffective)
	assert.Equal(t, 3, got.Schedule.LocationID)
	assert.Equal(t, "2026-08-28", got.Schedule.DateKey())
	assert.Equal(t, "Europe/London", got.Schedule.Date.Location().String())
	assert.Equal(t, schedule.Events, got.Schedule.Events)
}

func TestRecoverMissingRecord(t *testing.T) {
	store := NewStore(t.TempDir())
	got, err := store.Recover(99, time.Now())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecoverDiscardsStaleRecord(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Persist(testSchedule(t), false))

	// the device stayed off overnight
	nextDay := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	got, err := store.Recover(3, nextDay)
	assert.NoError(t, err)
	assert.Nil(t, got, "a record from a previous day must never re-arm")
}

func TestRecoverDiscardsUndecodableRecord(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boot_record_3.json"), []byte("{truncated"), 0o644))

	got, err := store.Recover(3, time.Now())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestPersistReplacesPreviousRecord(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	schedule := testSchedule(t)

	require.NoError(t, store.Persist(schedule, false))

	schedule.Events[0].AlertTime = "04:47"
	require.NoError(t, store.Persist(schedule, true))

	now := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	got, err := store.Recover(3, now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "04:47", got.Schedule.Events[0].AlertTime)
	assert.True(t, got.ModeEffective)

	// the temp file from the atomic write never lingers
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPersistCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "records")
	store := NewStore(dir)
	require.NoError(t, store.Persist(testSchedule(t), false))

	_, err := os.Stat(filepath.Join(dir, "boot_record_3.json"))
	assert.NoError(t, err)
}
