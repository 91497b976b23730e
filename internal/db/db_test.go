package db

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for testing
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err, "failed to open test database")

	require.NoError(t, initSchema(db), "failed to initialize schema")

	testDB := &DB{db}
	t.Cleanup(func() { testDB.Close() })
	return testDB
}

func TestCachedWeather_Roundtrip(t *testing.T) {
	testDB := setupTestDB(t)

	payload := `{"hourly":[{"dt":1718193600,"temp":20.5}]}`
	require.NoError(t, testDB.SetCachedWeather(52.47, 13.41, payload, time.Hour))

	cw, err := testDB.GetCachedWeather(52.47, 13.41)
	require.NoError(t, err)
	require.NotNil(t, cw)
	assert.Equal(t, payload, cw.Data)
	assert.Equal(t, "52.47,13.41", cw.Key)
	assert.WithinDuration(t, time.Now().Add(time.Hour), cw.ExpiresAt, 5*time.Second)
}

func TestGetCachedWeather_MissingEntry(t *testing.T) {
	testDB := setupTestDB(t)

	cw, err := testDB.GetCachedWeather(1.0, 2.0)
	require.NoError(t, err)
	assert.Nil(t, cw)
}

func TestGetCachedWeather_ExpiredEntry(t *testing.T) {
	testDB := setupTestDB(t)

	require.NoError(t, testDB.SetCachedWeather(52.47, 13.41, "{}", -time.Minute))

	cw, err := testDB.GetCachedWeather(52.47, 13.41)
	require.NoError(t, err)
	assert.Nil(t, cw, "expired entries read as a miss")
}

func TestSetCachedWeather_LastWriterWins(t *testing.T) {
	testDB := setupTestDB(t)

	require.NoError(t, testDB.SetCachedWeather(52.47, 13.41, "first", time.Hour))
	require.NoError(t, testDB.SetCachedWeather(52.47, 13.41, "second", time.Hour))

	cw, err := testDB.GetCachedWeather(52.47, 13.41)
	require.NoError(t, err)
	require.NotNil(t, cw)
	assert.Equal(t, "second", cw.Data)
}

func TestCacheKey_SeparatesLocations(t *testing.T) {
	testDB := setupTestDB(t)

	require.NoError(t, testDB.SetCachedWeather(52.47, 13.41, "berlin", time.Hour))
	require.NoError(t, testDB.SetCachedWeather(48.14, 11.58, "munich", time.Hour))

	cw, err := testDB.GetCachedWeather(48.14, 11.58)
	require.NoError(t, err)
	require.NotNil(t, cw)
	assert.Equal(t, "munich", cw.Data)
}

func TestPurgeExpired(t *testing.T) {
	testDB := setupTestDB(t)

	require.NoError(t, testDB.SetCachedWeather(52.47, 13.41, "fresh", time.Hour))
	require.NoError(t, testDB.SetCachedWeather(48.14, 11.58, "stale", -time.Minute))

	n, err := testDB.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	cw, err := testDB.GetCachedWeather(52.47, 13.41)
	require.NoError(t, err)
	assert.NotNil(t, cw, "fresh entry survives the purge")
}
