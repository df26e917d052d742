package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/minaret-labs/minaret/internal/model"
)

func testRecord() model.RawScheduleRecord {
	return model.RawScheduleRecord{
		Fajr:    model.PrayerTimes{Adhan: "05:12", Iqamah: "05:45"},
		Dhuhr:   model.PrayerTimes{Adhan: "12:30", Iqamah: "12:45"},
		Asr:     model.PrayerTimes{Adhan: "15:45", Iqamah: "16:00"},
		Maghrib: model.PrayerTimes{Adhan: "18:05", Iqamah: "18:10"},
		Isha:    model.PrayerTimes{Adhan: "19:30", Iqamah: "19:45"},
	}
}

func kinds(s model.DailySchedule) []model.PrayerKind {
	out := make([]model.PrayerKind, 0, len(s.Events))
	for _, e := range s.Events {
		out = append(out, e.Kind)
	}
	return out
}

func eventByName(t *testing.T, s model.DailySchedule, name string) model.PrayerEvent {
	t.Helper()
	for _, e := range s.Events {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("no event named %q", name)
	return model.PrayerEvent{}
}

func TestBuildScheduleWeekday(t *testing.T) {
	// 2026-03-02 is a Monday
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	s, err := buildSchedule(testRecord(), 7, day, false)
	assert.NoError(t, err)
	assert.Equal(t, []model.PrayerKind{
		model.KindFajr, model.KindDhuhr, model.KindAsr, model.KindMaghrib, model.KindIsha,
	}, kinds(s))
	assert.Equal(t, 7, s.LocationID)
}

func TestBuildScheduleFridaySubstitutesJummah(t *testing.T) {
	// 2026-03-06 is a Friday
	day := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	t.Run("uses jummah fields when present", func(t *testing.T) {
		rec := testRecord()
		rec.Jummah = &model.PrayerTimes{Adhan: "13:00", Iqamah: "13:30"}

		s, err := buildSchedule(rec, 7, day, false)
		assert.NoError(t, err)
		assert.NotContains(t, kinds(s), model.KindDhuhr)

		jummah := eventByName(t, s, "Jummah")
		assert.Equal(t, model.KindJummah, jummah.Kind)
		assert.Equal(t, "13:00", jummah.AlertTime)
		assert.Equal(t, "13:30", jummah.SecondaryTime)
	})

	t.Run("falls back to dhuhr fields", func(t *testing.T) {
		s, err := buildSchedule(testRecord(), 7, day, false)
		assert.NoError(t, err)
		assert.NotContains(t, kinds(s), model.KindDhuhr)

		jummah := eventByName(t, s, "Jummah")
		assert.Equal(t, "12:30", jummah.AlertTime)
		assert.Equal(t, "12:45", jummah.SecondaryTime)
	})
}

func TestBuildScheduleSeasonDerivation(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rec := testRecord()
	rec.HijriMonth = "Ramadan"
	rec.SaharEnd = "04:55"
	rec.Iftar = "18:07"
	rec.Tarawih = "20:30"

	s, err := buildSchedule(rec, 7, day, true)
	assert.NoError(t, err)

	assert.Equal(t, []model.PrayerKind{
		model.KindCustom, // sahar end, prepended
		model.KindFajr,
		model.KindDhuhr,
		model.KindAsr,
		model.KindCustom, // iftar, immediately before maghrib
		model.KindMaghrib,
		model.KindIsha,
		model.KindTarawih,
	}, kinds(s))

	fajr := eventByName(t, s, "Fajr")
	assert.Equal(t, "04:55", fajr.SecondaryTime, "fajr secondary takes the sahar boundary")

	maghrib := eventByName(t, s, "Maghrib")
	assert.Equal(t, "18:07", maghrib.AlertTime)
	assert.Equal(t, "18:07", maghrib.SecondaryTime)

	iftar := eventByName(t, s, "Iftar")
	assert.Equal(t, iftar.AlertTime, iftar.SecondaryTime, "derived events carry one instant")

	tarawih := eventByName(t, s, "Tarawih")
	assert.Equal(t, "20:30", tarawih.AlertTime)
}

func TestBuildScheduleSeasonWithoutSaharField(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rec := testRecord()
	rec.Iftar = "18:07"

	s, err := buildSchedule(rec, 7, day, true)
	assert.NoError(t, err)

	// no sahar-end event without a source field, and fajr keeps its iqamah
	for _, e := range s.Events {
		assert.NotEqual(t, "Sahar End", e.Name)
	}
	assert.Equal(t, "05:45", eventByName(t, s, "Fajr").SecondaryTime)
}

func TestBuildScheduleInactiveSeasonAddsNothing(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rec := testRecord()
	rec.SaharEnd = "04:55"
	rec.Iftar = "18:07"
	rec.Tarawih = "20:30"

	s, err := buildSchedule(rec, 7, day, false)
	assert.NoError(t, err)
	assert.Len(t, s.Events, 5)
	assert.Equal(t, "18:05", eventByName(t, s, "Maghrib").AlertTime)
}

func TestBuildScheduleTwilightMarkers(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rec := testRecord()
	rec.Sunrise = "06:40"
	rec.SolarNoon = "12:24"
	rec.Sunset = "18:05"

	s, err := buildSchedule(rec, 7, day, false)
	assert.NoError(t, err)
	assert.Equal(t, "06:40", s.Twilight.Sunrise)
	assert.Equal(t, "12:24", s.Twilight.SolarNoon)
	assert.Equal(t, "18:05", s.Twilight.Sunset)
	// markers are informational only
	assert.Len(t, s.Events, 5)
}
