package source

import (
	"fmt"
	"time"

	"github.com/minaret-labs/minaret/internal/model"
)

// buildSchedule applies the derivation rules to a raw source record:
// Friday substitutes jummah for dhuhr, and the active season substitutes
// the sahar/iftar boundaries and adds the derived events.
func buildSchedule(rec model.RawScheduleRecord, locationID int, day time.Time, seasonActive bool) (model.DailySchedule, error) {
	events := make([]model.PrayerEvent, 0, 8)

	fajr := model.PrayerEvent{
		Name:          "Fajr",
		Kind:          model.KindFajr,
		AlertTime:     rec.Fajr.Adhan,
		SecondaryTime: orElse(rec.Fajr.Iqamah, rec.Fajr.Adhan),
	}
	if seasonActive && rec.SaharEnd != "" {
		// during Ramadan the fast boundary, not the congregation, ends
		// fajr's quiet window
		fajr.SecondaryTime = rec.SaharEnd
		events = append(events, model.PrayerEvent{
			Name:          "Sahar End",
			Kind:          model.KindCustom,
			AlertTime:     rec.SaharEnd,
			SecondaryTime: rec.SaharEnd,
		})
	}
	events = append(events, fajr)

	if day.Weekday() == time.Friday {
		jummah := rec.Dhuhr
		if rec.Jummah != nil {
			jummah = *rec.Jummah
		}
		events = append(events, model.PrayerEvent{
			Name:          "Jummah",
			Kind:          model.KindJummah,
			AlertTime:     jummah.Adhan,
			SecondaryTime: orElse(jummah.Iqamah, jummah.Adhan),
		})
	} else {
		events = append(events, model.PrayerEvent{
			Name:          "Dhuhr",
			Kind:          model.KindDhuhr,
			AlertTime:     rec.Dhuhr.Adhan,
			SecondaryTime: orElse(rec.Dhuhr.Iqamah, rec.Dhuhr.Adhan),
		})
	}

	events = append(events, model.PrayerEvent{
		Name:          "Asr",
		Kind:          model.KindAsr,
		AlertTime:     rec.Asr.Adhan,
		SecondaryTime: orElse(rec.Asr.Iqamah, rec.Asr.Adhan),
	})

	maghrib := model.PrayerEvent{
		Name:          "Maghrib",
		Kind:          model.KindMaghrib,
		AlertTime:     rec.Maghrib.Adhan,
		SecondaryTime: orElse(rec.Maghrib.Iqamah, rec.Maghrib.Adhan),
	}
	if seasonActive {
		iftar := orElse(rec.Iftar, rec.Maghrib.Adhan)
		maghrib.AlertTime = iftar
		maghrib.SecondaryTime = iftar
		events = append(events, model.PrayerEvent{
			Name:          "Iftar",
			Kind:          model.KindCustom,
			AlertTime:     iftar,
			SecondaryTime: iftar,
		})
	}
	events = append(events, maghrib)

	events = append(events, model.PrayerEvent{
		Name:          "Isha",
		Kind:          model.KindIsha,
		AlertTime:     rec.Isha.Adhan,
		SecondaryTime: orElse(rec.Isha.Iqamah, rec.Isha.Adhan),
	})

	if seasonActive {
		tarawih := orElse(rec.Tarawih, orElse(rec.Isha.Iqamah, rec.Isha.Adhan))
		events = append(events, model.PrayerEvent{
			Name:          "Tarawih",
			Kind:          model.KindTarawih,
			AlertTime:     tarawih,
			SecondaryTime: tarawih,
		})
	}

	schedule := model.DailySchedule{
		LocationID: locationID,
		Date:       day,
		Events:     events,
		Twilight: model.TwilightMarkers{
			Sunrise:   rec.Sunrise,
			SolarNoon: rec.SolarNoon,
			Sunset:    rec.Sunset,
		},
	}
	if err := schedule.Validate(); err != nil {
		return model.DailySchedule{}, fmt.Errorf("derived schedule invalid: %w", err)
	}
	return schedule, nil
}

func orElse(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
