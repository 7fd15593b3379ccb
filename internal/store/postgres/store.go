package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/formula-evergreen/grandstand/internal/models"
	"github.com/formula-evergreen/grandstand/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

func (s *PostgresStore) CreateDriver(entry *models.DriverEntry) error {
	rows, err := s.DB.NamedQuery(`
		INSERT INTO leaderboard_entries (driver_name, points, profile_picture)
		VALUES (:driver_name, :points, :profile_picture)
		RETURNING id
	`, entry)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return fmt.Errorf("failed to read new driver id")
	}
	if err := rows.Scan(&entry.ID); err != nil {
		return fmt.Errorf("failed to scan new driver id: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateRaceSettings(settings *models.RaceSettings) error {
	rows, err := s.DB.NamedQuery(`
		INSERT INTO race_settings (next_race_location, next_race_date, race_description, circuit_image)
		VALUES (:next_race_location, :next_race_date, :race_description, :circuit_image)
		RETURNING id
	`, settings)
	if err != nil {
		return fmt.Errorf("failed to create race settings: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return fmt.Errorf("failed to read new race settings id")
	}
	if err := rows.Scan(&settings.ID); err != nil {
		return fmt.Errorf("failed to scan new race settings id: %w", err)
	}
	return nil
}
