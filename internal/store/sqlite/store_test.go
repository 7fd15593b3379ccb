// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formula-evergreen/grandstand/internal/models"
)

func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func strptr(s string) *string { return &s }

func TestDriverCRUD(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	entry := models.DriverEntry{
		DriverName: "Ada Grove",
		Points:     50,
	}

	t.Run("create assigns id", func(t *testing.T) {
		err := s.CreateDriver(&entry)
		require.NoError(t, err)
		assert.NotZero(t, entry.ID)
	})

	t.Run("get roundtrip", func(t *testing.T) {
		got, err := s.GetDriver(entry.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, entry.DriverName, got.DriverName)
		assert.Equal(t, entry.Points, got.Points)
		assert.Nil(t, got.ProfilePicture)
	})

	t.Run("get non-existent driver", func(t *testing.T) {
		got, err := s.GetDriver(424242)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update", func(t *testing.T) {
		entry.Points = 62
		entry.ProfilePicture = strptr("/uploads/ada.png")
		require.NoError(t, s.UpdateDriver(&entry))

		got, err := s.GetDriver(entry.ID)
		require.NoError(t, err)
		assert.Equal(t, 62, got.Points)
		require.NotNil(t, got.ProfilePicture)
		assert.Equal(t, "/uploads/ada.png", *got.ProfilePicture)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteDriver(entry.ID))

		got, err := s.GetDriver(entry.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestListDrivers_Ordering(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	for _, d := range []models.DriverEntry{
		{DriverName: "A", Points: 50},
		{DriverName: "B", Points: 100},
		{DriverName: "C", Points: 75},
		{DriverName: "D", Points: 75},
	} {
		entry := d
		require.NoError(t, s.CreateDriver(&entry))
	}

	entries, err := s.ListDrivers()
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "B", entries[0].DriverName)
	assert.Equal(t, "C", entries[1].DriverName, "ties keep insertion order")
	assert.Equal(t, "D", entries[2].DriverName)
	assert.Equal(t, "A", entries[3].DriverName)
}

func TestRaceSettings(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	t.Run("no row yet", func(t *testing.T) {
		got, err := s.GetRaceSettings()
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	raceDate := time.Date(2024, 5, 26, 15, 0, 0, 0, time.UTC)
	settings := models.RaceSettings{
		NextRaceLocation: strptr("Monaco"),
		NextRaceDate:     &raceDate,
		RaceDescription:  strptr("GP desc"),
		CircuitImage:     strptr("/uploads/circuits/monaco.png"),
	}

	t.Run("create assigns id", func(t *testing.T) {
		require.NoError(t, s.CreateRaceSettings(&settings))
		assert.NotZero(t, settings.ID)
	})

	t.Run("get returns first row", func(t *testing.T) {
		got, err := s.GetRaceSettings()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, settings.ID, got.ID)
		require.NotNil(t, got.NextRaceLocation)
		assert.Equal(t, "Monaco", *got.NextRaceLocation)
		require.NotNil(t, got.NextRaceDate)
		assert.True(t, got.NextRaceDate.Equal(raceDate))
	})

	t.Run("update nulls all fields at once", func(t *testing.T) {
		settings.NextRaceLocation = nil
		settings.NextRaceDate = nil
		settings.RaceDescription = nil
		settings.CircuitImage = nil
		require.NoError(t, s.UpdateRaceSettings(&settings))

		got, err := s.GetRaceSettings()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Nil(t, got.NextRaceLocation)
		assert.Nil(t, got.NextRaceDate)
		assert.Nil(t, got.RaceDescription)
		assert.Nil(t, got.CircuitImage)
	})
}

func TestTranslateToSQLite(t *testing.T) {
	sql := "CREATE TABLE x (id BIGSERIAL PRIMARY KEY, points BIGINT, at TIMESTAMPTZ)"
	got := translateToSQLite(sql)
	assert.Equal(t, "CREATE TABLE x (id INTEGER PRIMARY KEY AUTOINCREMENT, points INTEGER, at DATETIME)", got)
}
