package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/minaret-labs/minaret/internal/model"
)

// MemStore is an in-memory Store used by unit tests that exercise the
// resolver, mode controller and orchestrator without a database.
type MemStore struct {
	mu sync.Mutex

	users     map[int]model.User
	nextUser  int
	schedules map[string]cachedSchedule
	locations map[int]model.Location
	modes     map[int]model.ModeState
	settings  map[int]model.AlertSettings
	ledger    map[string]model.InstalledAlertSet

	// FailSwaps makes the next N SwapInstalledAlertSet calls fail, for
	// persistence-retry tests.
	FailSwaps int
}

type cachedSchedule struct {
	schedule  model.DailySchedule
	fetchedAt time.Time
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		users:     map[int]model.User{},
		schedules: map[string]cachedSchedule{},
		locations: map[int]model.Location{},
		modes:     map[int]model.ModeState{},
		settings:  map[int]model.AlertSettings{},
		ledger:    map[string]model.InstalledAlertSet{},
	}
}

func scheduleKey(locationID int, date string) string {
	return fmt.Sprintf("%d/%s", locationID, date)
}

func (m *MemStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUser++
	u := model.User{ID: m.nextUser, Email: email, HashedPassword: hashedPassword, Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *MemStore) GetUserByEmail(email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MemStore) GetUserByID(id int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := u
	return &out, nil
}

func (m *MemStore) UpsertCachedSchedule(locationID int, date string, schedule model.DailySchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[scheduleKey(locationID, date)] = cachedSchedule{schedule: schedule, fetchedAt: time.Now()}
	return nil
}

func (m *MemStore) GetCachedSchedule(locationID int, date string) (model.DailySchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.schedules[scheduleKey(locationID, date)]
	if !ok {
		return model.DailySchedule{}, model.ErrNoDataForDate
	}
	return c.schedule, nil
}

func (m *MemStore) PurgeCachedSchedules(olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, c := range m.schedules {
		if c.fetchedAt.Before(olderThan) {
			delete(m.schedules, k)
			n++
		}
	}
	return n, nil
}

func (m *MemStore) ReplaceCachedLocations(locations []model.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = map[int]model.Location{}
	for _, l := range locations {
		m.locations[l.ID] = l
	}
	return nil
}

func (m *MemStore) ListCachedLocations() ([]model.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Location, 0, len(m.locations))
	for _, l := range m.locations {
		out = append(out, l)
	}
	return out, nil
}

func (m *MemStore) GetCachedLocation(locationID int) (model.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locations[locationID]
	if !ok {
		return model.Location{}, sql.ErrNoRows
	}
	return l, nil
}

func (m *MemStore) ActiveLocationIDs() ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int
	for id, l := range m.locations {
		if l.Active {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MemStore) GetModeState(locationID int) (model.ModeState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modes[locationID], nil
}

func (m *MemStore) SaveModeState(locationID int, state model.ModeState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[locationID] = state
	return nil
}

func (m *MemStore) GetAlertSettings(locationID int) (model.AlertSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[locationID]
	if !ok {
		return model.DefaultAlertSettings(), nil
	}
	return s, nil
}

func (m *MemStore) SaveAlertSettings(locationID int, settings model.AlertSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[locationID] = settings
	return nil
}

func (m *MemStore) GetInstalledAlertSet(locationID int, date string) (*model.InstalledAlertSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.ledger[scheduleKey(locationID, date)]
	if !ok {
		return nil, nil
	}
	out := set
	return &out, nil
}

func (m *MemStore) SwapInstalledAlertSet(set model.InstalledAlertSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSwaps > 0 {
		m.FailSwaps--
		return model.ErrPersistenceFailed
	}
	m.ledger[scheduleKey(set.LocationID, set.Date)] = set
	return nil
}
