// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crescent-hq/minaret/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// settings functions
	GetSettings(userID int) (model.Settings, error)
	SaveSettings(s model.Settings) error

	// completion functions
	LoadCompletion(userID int, day time.Time) (map[model.PrayerName]bool, error)
	SaveCompletion(userID int, day time.Time, completion map[model.PrayerName]bool) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore() Store {
	return &pgStore{db: DB}
}

func (s *pgStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	return CreateUser(email, hashedPassword, name)
}

func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	return GetUserByEmail(email)
}

func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	return GetUserByID(id)
}

func (s *pgStore) UpdateUserProfile(id int, email string, name *string) error {
	return UpdateUserProfile(id, email, name)
}

func (s *pgStore) GetSettings(userID int) (model.Settings, error) {
	return GetSettings(userID)
}

func (s *pgStore) SaveSettings(settings model.Settings) error {
	return SaveSettings(settings)
}

func (s *pgStore) LoadCompletion(userID int, day time.Time) (map[model.PrayerName]bool, error) {
	return LoadCompletion(userID, day)
}

func (s *pgStore) SaveCompletion(userID int, day time.Time, completion map[model.PrayerName]bool) error {
	return SaveCompletion(userID, day, completion)
}
