// Package recovery persists the minimal record needed to re-arm today's
// alarms after a device cold boot: the day's event list and its date,
// written as plain JSON readable by a boot-time agent with no application
// context.
package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/model"
)

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(locationID int) string {
	return filepath.Join(s.dir, fmt.Sprintf("boot_record_%d.json", locationID))
}

// Persist writes the boot record for the schedule's location, replacing any
// previous record atomically (write to a temp file, then rename). Retried
// once; a second failure is PersistenceFailed and the previous record
// survives.
func (s *Store) Persist(schedule model.DailySchedule, modeEffective bool) error {
	record := model.BootRecord{
		LocationID:       schedule.LocationID,
		Timezone:         schedule.Date.Location().String(),
		ScheduledForDate: schedule.DateKey(),
		ModeEffective:    modeEffective,
		Events:           schedule.Events,
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode boot record: %w", err)
	}

	if err := s.writeAtomic(s.path(schedule.LocationID), payload); err != nil {
		if err := s.writeAtomic(s.path(schedule.LocationID), payload); err != nil {
			log.Error().Err(err).Int("location_id", schedule.LocationID).Msg("boot record write failed")
			return fmt.Errorf("%w: boot record", model.ErrPersistenceFailed)
		}
	}
	return nil
}

func (s *Store) writeAtomic(path string, payload []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".boot_record_*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Recovered is a boot record reconstructed into reconcile inputs.
type Recovered struct {
	Schedule      model.DailySchedule
	ModeEffective bool
}

// Recover reads the boot record for a location and reconstructs the
// schedule it described. A record for any day other than today (in the
// record's own timezone) is discarded: re-arming yesterday's alarms after
// the day rolled over would alert at the wrong times. A nil result with a
// nil error means no usable record exists; that is not an error.
func (s *Store) Recover(locationID int, now time.Time) (*Recovered, error) {
	payload, err := os.ReadFile(s.path(locationID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read boot record: %w", err)
	}

	var record model.BootRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		log.Warn().Err(err).Int("location_id", locationID).Msg("discarding undecodable boot record")
		return nil, nil
	}

	tz, err := time.LoadLocation(record.Timezone)
	if err != nil {
		tz = time.UTC
	}
	today := now.In(tz).Format(model.DateLayout)
	if record.ScheduledForDate != today {
		log.Info().Int("location_id", locationID).Str("record_date", record.ScheduledForDate).
			Str("today", today).Msg("discarding stale boot record")
		return nil, nil
	}

	day, err := time.ParseInLocation(model.DateLayout, record.ScheduledForDate, tz)
	if err != nil {
		return nil, fmt.Errorf("parse boot record date: %w", err)
	}

	return &Recovered{
		Schedule: model.DailySchedule{
			LocationID: record.LocationID,
			Date:       day,
			Events:     record.Events,
		},
		ModeEffective: record.ModeEffective,
	}, nil
}
