// internal/store/sqlite/store.go
package sqlite

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/formula-evergreen/grandstand/internal/models"
	"github.com/formula-evergreen/grandstand/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn, migrationsDir string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

// sqliteReplacements converts Postgres SQL to SQLite dialect. Order matters:
// longer fragments go first so their prefixes don't get rewritten from under
// them.
var sqliteReplacements = []struct {
	from string
	to   string
}{
	{"BIGSERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT"},
	{"SERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT"},
	{"TIMESTAMPTZ", "DATETIME"},
	{"BIGINT", "INTEGER"},
	{"now()", "CURRENT_TIMESTAMP"},
	{"TRUE", "1"},
	{"FALSE", "0"},
}

func translateToSQLite(sql string) string {
	result := sql
	for _, r := range sqliteReplacements {
		result = strings.ReplaceAll(result, r.from, r.to)
	}
	return result
}

func (s *SQLiteStore) CreateDriver(entry *models.DriverEntry) error {
	res, err := s.DB.NamedExec(`
		INSERT INTO leaderboard_entries (driver_name, points, profile_picture)
		VALUES (:driver_name, :points, :profile_picture)
	`, entry)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new driver id: %w", err)
	}
	entry.ID = id
	return nil
}

func (s *SQLiteStore) CreateRaceSettings(settings *models.RaceSettings) error {
	res, err := s.DB.NamedExec(`
		INSERT INTO race_settings (next_race_location, next_race_date, race_description, circuit_image)
		VALUES (:next_race_location, :next_race_date, :race_description, :circuit_image)
	`, settings)
	if err != nil {
		return fmt.Errorf("failed to create race settings: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new race settings id: %w", err)
	}
	settings.ID = id
	return nil
}
