// Package db provides the persistent tier of the weather cache: a small
// sqlite store holding raw upstream weather payloads with an expiry. Scores
// are never stored; they are recomputed on every request.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a database connection
type DB struct {
	*sql.DB
}

// NewDB opens the cache database. The path comes from FELDCAST_DB, with a
// local file default for development.
func NewDB() (*DB, error) {
	path := os.Getenv("FELDCAST_DB")
	if path == "" {
		path = "feldcast.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(db); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS weather_cache (
			cache_key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// CachedWeather is one cache row: the raw JSON payload plus its lifetime.
type CachedWeather struct {
	Key       string
	Data      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

// GetCachedWeather returns the cached payload for a location, or nil if
// there is no entry or the entry has expired. The TTL check happens at read
// time; expired rows are left for PurgeExpired.
func (d *DB) GetCachedWeather(lat, lon float64) (*CachedWeather, error) {
	row := d.QueryRow(
		"SELECT cache_key, data, created_at, expires_at FROM weather_cache WHERE cache_key = ?",
		cacheKey(lat, lon),
	)

	var cw CachedWeather
	if err := row.Scan(&cw.Key, &cw.Data, &cw.CreatedAt, &cw.ExpiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read weather cache: %w", err)
	}

	if time.Now().After(cw.ExpiresAt) {
		return nil, nil
	}
	return &cw, nil
}

// SetCachedWeather stores a payload for a location, replacing any previous
// entry (last writer wins).
func (d *DB) SetCachedWeather(lat, lon float64, data string, ttl time.Duration) error {
	now := time.Now()
	_, err := d.Exec(
		"INSERT OR REPLACE INTO weather_cache (cache_key, data, created_at, expires_at) VALUES (?, ?, ?, ?)",
		cacheKey(lat, lon), data, now, now.Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("failed to write weather cache: %w", err)
	}
	return nil
}

// PurgeExpired deletes rows whose expiry has passed and reports how many
// were removed.
func (d *DB) PurgeExpired() (int64, error) {
	res, err := d.Exec("DELETE FROM weather_cache WHERE expires_at < ?", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge weather cache: %w", err)
	}
	return res.RowsAffected()
}
