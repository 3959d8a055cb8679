package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Database caches resolved lyrics keyed by the exact (song, artist) strings
// of the request that found them.
type Database struct {
	db *sql.DB
}

// New opens or creates the cache at dbPath.
func New(dbPath string) (*Database, error) {
	if dbPath == "" {
		dbPath = "/app/data/jamtools.db"
	}

	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	// Batch write-back runs from many goroutines; sqlite allows one writer.
	db.SetMaxOpenConns(1)

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Infof("Database initialized at %s", dbPath)
	return d, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS lyrics (
			song TEXT NOT NULL,
			artist TEXT NOT NULL,
			lyrics TEXT NOT NULL,
			fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (song, artist)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lyrics_fetched_at ON lyrics(fetched_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// Get returns the cached lyrics for an exact (song, artist) pair.
func (d *Database) Get(ctx context.Context, song, artist string) (string, bool, error) {
	var text string
	err := d.db.QueryRowContext(ctx,
		`SELECT lyrics FROM lyrics WHERE song = ? AND artist = ?`,
		song, artist,
	).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query lyrics: %w", err)
	}
	return text, true, nil
}

// Put stores lyrics unless the pair is already cached; the first writer wins.
// It reports whether a row was inserted.
func (d *Database) Put(ctx context.Context, song, artist, text string) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO lyrics (song, artist, lyrics, fetched_at) VALUES (?, ?, ?, ?)`,
		song, artist, text, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("failed to cache lyrics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to cache lyrics: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of cached songs.
func (d *Database) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lyrics`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count lyrics: %w", err)
	}
	return n, nil
}
