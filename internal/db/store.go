// exposes a Store interface that is passed to the engine and API handlers
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/minaret-labs/minaret/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)

	// cached schedule functions (resolver tier 3)
	UpsertCachedSchedule(locationID int, date string, schedule model.DailySchedule) error
	GetCachedSchedule(locationID int, date string) (model.DailySchedule, error)
	PurgeCachedSchedules(olderThan time.Time) (int, error)

	// cached location directory
	ReplaceCachedLocations(locations []model.Location) error
	ListCachedLocations() ([]model.Location, error)
	GetCachedLocation(locationID int) (model.Location, error)
	ActiveLocationIDs() ([]int, error)

	// seasonal mode state
	GetModeState(locationID int) (model.ModeState, error)
	SaveModeState(locationID int, state model.ModeState) error

	// alert settings
	GetAlertSettings(locationID int) (model.AlertSettings, error)
	SaveAlertSettings(locationID int, settings model.AlertSettings) error

	// installed alert ledger
	GetInstalledAlertSet(locationID int, date string) (*model.InstalledAlertSet, error)
	SwapInstalledAlertSet(set model.InstalledAlertSet) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(database *sqlx.DB) Store {
	if database == nil {
		database = DB
	}
	return &pgStore{db: database}
}
