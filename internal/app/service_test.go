package app

import (
	"mime/multipart"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formula-evergreen/grandstand/internal/store/sqlite"
)

const adminEmail = "race.control@evergreen.example"

var (
	adminCaller = &Identity{Subject: "1", Email: adminEmail, Name: "Race Control"}
	fanCaller   = &Identity{Subject: "2", Email: "fan@example.com", Name: "A Fan"}
)

// fakeImages records resource releases so tests can assert the best-effort
// deletion attempts without touching disk.
type fakeImages struct {
	deleted     []string
	failDeletes bool
}

func (f *fakeImages) SaveUpload(subdir string, file multipart.File, header *multipart.FileHeader) (string, error) {
	return "/uploads/" + subdir + "/fake.png", nil
}

func (f *fakeImages) DeleteIfExists(publicPath string) bool {
	f.deleted = append(f.deleted, publicPath)
	return !f.failDeletes
}

type serviceFixture struct {
	svc    *Service
	images *fakeImages
	now    time.Time
}

func (f *serviceFixture) setNow(now time.Time) {
	f.now = now
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	st, err := sqlite.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), "../../migrations")
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { st.Close() })

	config := &Config{}
	config.Auth.AuthorizedEmails = []string{adminEmail}

	fixture := &serviceFixture{
		images: &fakeImages{},
		now:    time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC),
	}
	fixture.svc = &Service{
		Config:   config,
		Store:    st,
		Sessions: NewMemorySessions(time.Hour),
		Gate:     NewGate(config),
		Files:    fixture.images,
		Now:      func() time.Time { return fixture.now },
	}

	return fixture
}

func TestGetRaceSettings_LazilyCreatesRow(t *testing.T) {
	f := newServiceFixture(t)

	settings, err := f.svc.GetRaceSettings()
	require.NoError(t, err)
	require.NotNil(t, settings)

	assert.NotZero(t, settings.ID)
	assert.Nil(t, settings.NextRaceLocation)
	assert.Nil(t, settings.NextRaceDate)
	assert.Nil(t, settings.RaceDescription)
	assert.Nil(t, settings.CircuitImage)

	again, err := f.svc.GetRaceSettings()
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID, "second read must reuse the same row")
}

func TestUpdateRaceSettings(t *testing.T) {
	t.Run("converts pacific input to UTC and trims text", func(t *testing.T) {
		f := newServiceFixture(t)

		settings, err := f.svc.UpdateRaceSettings(fanCaller, SettingsUpdate{
			NextRaceLocation: "  Monaco  ",
			NextRaceDate:     "2024-05-26T07:00:00",
			RaceDescription:  " GP desc ",
		})
		require.NoError(t, err)

		require.NotNil(t, settings.NextRaceLocation)
		assert.Equal(t, "Monaco", *settings.NextRaceLocation)
		require.NotNil(t, settings.NextRaceDate)
		assert.True(t, settings.NextRaceDate.Equal(time.Date(2024, 5, 26, 15, 0, 0, 0, time.UTC)))
		require.NotNil(t, settings.RaceDescription)
		assert.Equal(t, "GP desc", *settings.RaceDescription)
	})

	t.Run("requires only authentication, not allow-list membership", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.UpdateRaceSettings(fanCaller, SettingsUpdate{NextRaceLocation: "Spa"})
		assert.NoError(t, err)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.UpdateRaceSettings(nil, SettingsUpdate{NextRaceLocation: "Spa"})
		assert.ErrorIs(t, err, ErrAuthRequired)
	})

	t.Run("unparseable date", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.UpdateRaceSettings(fanCaller, SettingsUpdate{NextRaceDate: "soon"})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("empty fields persist as null", func(t *testing.T) {
		f := newServiceFixture(t)

		settings, err := f.svc.UpdateRaceSettings(fanCaller, SettingsUpdate{})
		require.NoError(t, err)
		assert.Nil(t, settings.NextRaceLocation)
		assert.Nil(t, settings.NextRaceDate)
		assert.Nil(t, settings.RaceDescription)
	})
}

func TestGetRaceSettings_ExpiryClearsAndPersists(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.UpdateRaceSettings(adminCaller, SettingsUpdate{
		NextRaceLocation: "Monaco",
		NextRaceDate:     "2024-05-26T07:00", // stored as 2024-05-26T15:00:00Z
		RaceDescription:  "GP desc",
	})
	require.NoError(t, err)
	_, err = f.svc.SetCircuitImage(adminCaller, "/uploads/circuits/monaco.png")
	require.NoError(t, err)

	boundary := time.Date(2024, 5, 27, 8, 0, 0, 0, time.UTC)

	t.Run("still announced just before the boundary", func(t *testing.T) {
		f.setNow(boundary.Add(-time.Second))

		settings, err := f.svc.GetRaceSettings()
		require.NoError(t, err)
		require.NotNil(t, settings.NextRaceDate)
		assert.Empty(t, f.images.deleted)
	})

	t.Run("cleared at the boundary, clearing persisted", func(t *testing.T) {
		f.setNow(boundary)

		settings, err := f.svc.GetRaceSettings()
		require.NoError(t, err)
		assert.Nil(t, settings.NextRaceLocation)
		assert.Nil(t, settings.NextRaceDate)
		assert.Nil(t, settings.RaceDescription)
		assert.Nil(t, settings.CircuitImage)
		assert.Equal(t, []string{"/uploads/circuits/monaco.png"}, f.images.deleted)

		// straight from the store, bypassing the service
		persisted, err := f.svc.Store.GetRaceSettings()
		require.NoError(t, err)
		require.NotNil(t, persisted)
		assert.Nil(t, persisted.NextRaceDate)
	})

	t.Run("second read is idempotent", func(t *testing.T) {
		settings, err := f.svc.GetRaceSettings()
		require.NoError(t, err)
		assert.Nil(t, settings.NextRaceDate)
		assert.Len(t, f.images.deleted, 1, "no second deletion attempt for an already-cleared race")
	})
}

func TestGetRaceSettings_ImageDeleteFailureDoesNotBlockClearing(t *testing.T) {
	f := newServiceFixture(t)
	f.images.failDeletes = true

	_, err := f.svc.UpdateRaceSettings(adminCaller, SettingsUpdate{NextRaceDate: "2024-05-26T07:00"})
	require.NoError(t, err)
	_, err = f.svc.SetCircuitImage(adminCaller, "/uploads/circuits/monaco.png")
	require.NoError(t, err)

	f.setNow(time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC))

	settings, err := f.svc.GetRaceSettings()
	require.NoError(t, err)
	assert.Nil(t, settings.NextRaceDate)
	assert.Nil(t, settings.CircuitImage)
	assert.Len(t, f.images.deleted, 1, "deletion must still be attempted")
}

func TestClearNextRace(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.UpdateRaceSettings(fanCaller, SettingsUpdate{
		NextRaceLocation: "Monza",
		NextRaceDate:     "2024-09-01T05:00",
	})
	require.NoError(t, err)
	_, err = f.svc.SetCircuitImage(fanCaller, "/uploads/circuits/monza.png")
	require.NoError(t, err)

	settings, err := f.svc.ClearNextRace(fanCaller)
	require.NoError(t, err)
	assert.Nil(t, settings.NextRaceLocation)
	assert.Nil(t, settings.NextRaceDate)
	assert.Nil(t, settings.RaceDescription)
	assert.Nil(t, settings.CircuitImage)
	assert.Equal(t, []string{"/uploads/circuits/monza.png"}, f.images.deleted)

	t.Run("anonymous caller", func(t *testing.T) {
		_, err := f.svc.ClearNextRace(nil)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})
}

func TestSetCircuitImage_ReleasesPreviousImage(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.SetCircuitImage(fanCaller, "/uploads/circuits/old.png")
	require.NoError(t, err)
	settings, err := f.svc.SetCircuitImage(fanCaller, "/uploads/circuits/new.png")
	require.NoError(t, err)

	require.NotNil(t, settings.CircuitImage)
	assert.Equal(t, "/uploads/circuits/new.png", *settings.CircuitImage)
	assert.Equal(t, []string{"/uploads/circuits/old.png"}, f.images.deleted)
}

func TestDeleteCircuitImage(t *testing.T) {
	t.Run("no settings row", func(t *testing.T) {
		f := newServiceFixture(t)

		err := f.svc.DeleteCircuitImage(fanCaller)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deletes file and nulls reference", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.SetCircuitImage(fanCaller, "/uploads/circuits/spa.png")
		require.NoError(t, err)
		require.NoError(t, f.svc.DeleteCircuitImage(fanCaller))

		settings, err := f.svc.Store.GetRaceSettings()
		require.NoError(t, err)
		assert.Nil(t, settings.CircuitImage)
		assert.Equal(t, []string{"/uploads/circuits/spa.png"}, f.images.deleted)
	})
}

func TestCreateDriver(t *testing.T) {
	f := newServiceFixture(t)

	t.Run("valid entry", func(t *testing.T) {
		entry, err := f.svc.CreateDriver(adminCaller, "  Ada Grove  ", 50)
		require.NoError(t, err)
		assert.NotZero(t, entry.ID)
		assert.Equal(t, "Ada Grove", entry.DriverName)
		assert.Equal(t, 50, entry.Points)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := f.svc.CreateDriver(adminCaller, "", 10)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("whitespace-only name", func(t *testing.T) {
		_, err := f.svc.CreateDriver(adminCaller, "   ", 10)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("negative points", func(t *testing.T) {
		_, err := f.svc.CreateDriver(adminCaller, "Bad Points", -1)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		_, err := f.svc.CreateDriver(nil, "Ada Grove", 50)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})

	t.Run("authenticated but not admin", func(t *testing.T) {
		_, err := f.svc.CreateDriver(fanCaller, "Ada Grove", 50)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestListDrivers_OrderedByPointsDescending(t *testing.T) {
	f := newServiceFixture(t)

	for _, d := range []struct {
		name   string
		points int
	}{
		{"A", 50},
		{"B", 100},
		{"C", 75},
	} {
		_, err := f.svc.CreateDriver(adminCaller, d.name, d.points)
		require.NoError(t, err)
	}

	entries, err := f.svc.ListDrivers()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "B", entries[0].DriverName)
	assert.Equal(t, "C", entries[1].DriverName)
	assert.Equal(t, "A", entries[2].DriverName)
}

func TestUpdateDriver(t *testing.T) {
	f := newServiceFixture(t)

	entry, err := f.svc.CreateDriver(adminCaller, "Ada Grove", 50)
	require.NoError(t, err)

	t.Run("updates name and points", func(t *testing.T) {
		updated, err := f.svc.UpdateDriver(adminCaller, entry.ID, "Ada Grove-Hill", 62)
		require.NoError(t, err)
		assert.Equal(t, "Ada Grove-Hill", updated.DriverName)
		assert.Equal(t, 62, updated.Points)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := f.svc.UpdateDriver(adminCaller, 424242, "Nobody", 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("validation still applies", func(t *testing.T) {
		_, err := f.svc.UpdateDriver(adminCaller, entry.ID, "", 10)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("non-admin", func(t *testing.T) {
		_, err := f.svc.UpdateDriver(fanCaller, entry.ID, "Ada", 1)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestDeleteDriver(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		f := newServiceFixture(t)
		assert.ErrorIs(t, f.svc.DeleteDriver(adminCaller, 424242), ErrNotFound)
	})

	t.Run("releases attached picture even when the delete fails", func(t *testing.T) {
		f := newServiceFixture(t)
		f.images.failDeletes = true

		entry, err := f.svc.CreateDriver(adminCaller, "Ada Grove", 50)
		require.NoError(t, err)
		_, err = f.svc.SetProfilePicture(adminCaller, entry.ID, "/uploads/ada.png")
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteDriver(adminCaller, entry.ID))
		assert.Equal(t, []string{"/uploads/ada.png"}, f.images.deleted)

		gone, err := f.svc.Store.GetDriver(entry.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestProfilePictureLifecycle(t *testing.T) {
	f := newServiceFixture(t)

	entry, err := f.svc.CreateDriver(adminCaller, "Ada Grove", 50)
	require.NoError(t, err)

	t.Run("set replaces previous picture", func(t *testing.T) {
		_, err := f.svc.SetProfilePicture(adminCaller, entry.ID, "/uploads/old.png")
		require.NoError(t, err)
		updated, err := f.svc.SetProfilePicture(adminCaller, entry.ID, "/uploads/new.png")
		require.NoError(t, err)

		require.NotNil(t, updated.ProfilePicture)
		assert.Equal(t, "/uploads/new.png", *updated.ProfilePicture)
		assert.Equal(t, []string{"/uploads/old.png"}, f.images.deleted)
	})

	t.Run("clear nulls the reference", func(t *testing.T) {
		require.NoError(t, f.svc.ClearProfilePicture(adminCaller, entry.ID))

		got, err := f.svc.Store.GetDriver(entry.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ProfilePicture)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := f.svc.SetProfilePicture(adminCaller, 424242, "/uploads/x.png")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-admin", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.ClearProfilePicture(fanCaller, entry.ID), ErrNotAuthorized)
	})
}
