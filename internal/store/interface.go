package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/formula-evergreen/grandstand/internal/models"
)

type RaceStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateDriver(entry *models.DriverEntry) error
	GetDriver(id int64) (*models.DriverEntry, error)
	ListDrivers() ([]models.DriverEntry, error)
	UpdateDriver(entry *models.DriverEntry) error
	DeleteDriver(id int64) error

	GetRaceSettings() (*models.RaceSettings, error)
	CreateRaceSettings(settings *models.RaceSettings) error
	UpdateRaceSettings(settings *models.RaceSettings) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) GetDriver(id int64) (*models.DriverEntry, error) {
	var entry models.DriverEntry
	query := s.Converter(`
		SELECT id, driver_name, points, profile_picture
		FROM leaderboard_entries
		WHERE id = ?
	`)

	err := s.DB.Get(&entry, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return &entry, nil
}

// ListDrivers returns the whole leaderboard, best score first. Ties keep
// insertion order.
func (s *BaseStore) ListDrivers() ([]models.DriverEntry, error) {
	var entries []models.DriverEntry
	err := s.DB.Select(&entries, `
		SELECT id, driver_name, points, profile_picture
		FROM leaderboard_entries
		ORDER BY points DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}

	return entries, nil
}

func (s *BaseStore) UpdateDriver(entry *models.DriverEntry) error {
	_, err := s.DB.NamedExec(`
		UPDATE leaderboard_entries
		SET driver_name = :driver_name,
		    points = :points,
		    profile_picture = :profile_picture
		WHERE id = :id
	`, entry)
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	return nil
}

func (s *BaseStore) DeleteDriver(id int64) error {
	query := s.Converter(`DELETE FROM leaderboard_entries WHERE id = ?`)
	if _, err := s.DB.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete driver: %w", err)
	}
	return nil
}

// GetRaceSettings returns the announcement row, or nil when none exists yet.
func (s *BaseStore) GetRaceSettings() (*models.RaceSettings, error) {
	var settings models.RaceSettings
	err := s.DB.Get(&settings, `
		SELECT id, next_race_location, next_race_date, race_description, circuit_image
		FROM race_settings
		ORDER BY id ASC
		LIMIT 1
	`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race settings: %w", err)
	}
	return &settings, nil
}

func (s *BaseStore) UpdateRaceSettings(settings *models.RaceSettings) error {
	_, err := s.DB.NamedExec(`
		UPDATE race_settings
		SET next_race_location = :next_race_location,
		    next_race_date = :next_race_date,
		    race_description = :race_description,
		    circuit_image = :circuit_image
		WHERE id = :id
	`, settings)
	if err != nil {
		return fmt.Errorf("failed to update race settings: %w", err)
	}
	return nil
}
