package db

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minaret-labs/minaret/internal/model"
)

// TestStoreIntegration exercises the pg-backed store against a real database.
// Set TEST_DATABASE_URL to run it.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, InitTestDB("../../migrations"))
	store := TestStore

	t.Run("User Management", func(t *testing.T) {
		userID, err := store.CreateUser("admin@example.com", "hashedpassword", nil)
		assert.NoError(t, err)
		assert.Greater(t, userID, 0)

		user, err := store.GetUserByEmail("admin@example.com")
		assert.NoError(t, err)
		assert.Equal(t, "admin@example.com", user.Email)

		byID, err := store.GetUserByID(userID)
		assert.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)
	})

	t.Run("Location Directory", func(t *testing.T) {
		err := store.ReplaceCachedLocations([]model.Location{
			{ID: 1, Name: "Central Masjid", Slug: "central-masjid", City: "Manchester", Timezone: "Europe/London", Active: true},
			{ID: 2, Name: "North Musalla", Slug: "north-musalla", City: "Manchester", Timezone: "Europe/London", Active: false},
		})
		assert.NoError(t, err)

		locations, err := store.ListCachedLocations()
		assert.NoError(t, err)
		assert.Len(t, locations, 2)

		location, err := store.GetCachedLocation(1)
		assert.NoError(t, err)
		assert.Equal(t, "central-masjid", location.Slug)

		active, err := store.ActiveLocationIDs()
		assert.NoError(t, err)
		assert.Equal(t, []int{1}, active)
	})

	t.Run("Schedule Cache", func(t *testing.T) {
		schedule := model.DailySchedule{
			LocationID: 1,
			Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Events: []model.PrayerEvent{
				{Name: "Fajr", Kind: model.KindFajr, AlertTime: "05:12", SecondaryTime: "05:45"},
			},
		}
		assert.NoError(t, store.UpsertCachedSchedule(1, "2026-03-02", schedule))

		got, err := store.GetCachedSchedule(1, "2026-03-02")
		assert.NoError(t, err)
		assert.Equal(t, schedule.Events, got.Events)

		_, err = store.GetCachedSchedule(1, "2026-03-03")
		assert.ErrorIs(t, err, model.ErrNoDataForDate)

		purged, err := store.PurgeCachedSchedules(time.Now().Add(time.Hour))
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, purged, 1)
	})

	t.Run("Mode State", func(t *testing.T) {
		state, err := store.GetModeState(1)
		assert.NoError(t, err)
		assert.False(t, state.Effective)

		state.AutoDetected = true
		state.Effective = true
		assert.NoError(t, store.SaveModeState(1, state))

		reloaded, err := store.GetModeState(1)
		assert.NoError(t, err)
		assert.True(t, reloaded.Effective)
		assert.True(t, reloaded.AutoDetected)
	})

	t.Run("Alert Settings", func(t *testing.T) {
		settings, err := store.GetAlertSettings(1)
		assert.NoError(t, err)
		assert.True(t, settings.DNDEnabled)

		settings.DNDBeforeMinutes = 10
		settings.EnabledKinds = map[model.PrayerKind]bool{model.KindFajr: true}
		assert.NoError(t, store.SaveAlertSettings(1, settings))

		reloaded, err := store.GetAlertSettings(1)
		assert.NoError(t, err)
		assert.Equal(t, 10, reloaded.DNDBeforeMinutes)
		assert.Equal(t, settings.EnabledKinds, reloaded.EnabledKinds)
	})

	t.Run("Alert Ledger", func(t *testing.T) {
		missing, err := store.GetInstalledAlertSet(1, "2026-03-02")
		assert.NoError(t, err)
		assert.Nil(t, missing)

		set := model.InstalledAlertSet{
			LocationID:  1,
			Date:        "2026-03-02",
			Fingerprint: "abc123",
			Alarms:      []model.AlarmEntry{{ID: "a1", Kind: model.KindFajr, Name: "Fajr", FiresAt: time.Now().UTC()}},
			InstalledAt: time.Now().UTC(),
		}
		assert.NoError(t, store.SwapInstalledAlertSet(set))

		stored, err := store.GetInstalledAlertSet(1, "2026-03-02")
		assert.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "abc123", stored.Fingerprint)
		assert.Len(t, stored.Alarms, 1)

		set.Fingerprint = "def456"
		assert.NoError(t, store.SwapInstalledAlertSet(set))

		replaced, err := store.GetInstalledAlertSet(1, "2026-03-02")
		assert.NoError(t, err)
		require.NotNil(t, replaced)
		assert.Equal(t, "def456", replaced.Fingerprint)
	})
}
