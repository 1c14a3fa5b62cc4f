package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/halcyon-ops/botboard/internal/metrics"
)

const dateFormat = "2006-01-02"

// Cache is the sqlite-backed snapshot cache. Only closed report days
// are cached: the current day's spreadsheet is still being written to,
// so its snapshots always go to the service.
type Cache struct {
	db *sql.DB
}

// NewCache wraps an open database handle.
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// Get returns the cached snapshot for the given key, or ok=false on a
// miss. Cache read errors degrade to a miss with a log line; the caller
// falls through to the service.
func (c *Cache) Get(department string, date time.Time, subDepartment string) (metrics.Snapshot, bool) {
	var payload string
	err := c.db.QueryRow(`
		SELECT payload FROM snapshots
		WHERE department = ? AND date = ? AND sub_department = ?
	`, department, date.Format(dateFormat), subDepartment).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Printf("WARNING: snapshot cache read failed for %s/%s: %v", department, date.Format(dateFormat), err)
		return nil, false
	}

	var snap metrics.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		log.Printf("WARNING: snapshot cache payload corrupt for %s/%s: %v", department, date.Format(dateFormat), err)
		return nil, false
	}
	return snap, true
}

// Put stores a fetched snapshot. Snapshots for today or future dates
// are skipped: the day is not closed yet.
func (c *Cache) Put(department string, date time.Time, subDepartment string, snap metrics.Snapshot) error {
	if !cacheable(date, time.Now()) {
		return nil
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = c.db.Exec(`
		INSERT INTO snapshots (department, date, sub_department, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(department, date, sub_department) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, department, date.Format(dateFormat), subDepartment, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing snapshot cache: %w", err)
	}
	return nil
}

// Prune deletes cached snapshots older than retentionDays.
func (c *Cache) Prune(retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Format(dateFormat)
	_, err := c.db.Exec("DELETE FROM snapshots WHERE date < ?", cutoff)
	if err != nil {
		return fmt.Errorf("pruning snapshot cache: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// cacheable reports whether the report date is a closed day relative to now.
func cacheable(date, now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ry, rm, rd := date.Date()
	report := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	return report.Before(today)
}
