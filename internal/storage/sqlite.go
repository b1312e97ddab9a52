package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS vessels (
		mmsi      INTEGER PRIMARY KEY,
		name      TEXT,
		imo       INTEGER,
		call_sign TEXT,
		ship_type INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS position_reports (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		mmsi        INTEGER NOT NULL REFERENCES vessels (mmsi),
		reported_at INTEGER NOT NULL,
		latitude    REAL NOT NULL,
		longitude   REAL NOT NULL,
		UNIQUE (mmsi, reported_at)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_position_reports_reported_at ON position_reports (reported_at)`,
	`CREATE INDEX IF NOT EXISTS idx_position_reports_mmsi_time ON position_reports (mmsi, reported_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_position_reports_lat_lon ON position_reports (latitude, longitude)`,
}

var sqliteMaintenance = []string{
	`PRAGMA wal_checkpoint(PASSIVE)`,
	`PRAGMA optimize`,
}

func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "foreign_keys(ON)")
	return "file:" + path + "?" + q.Encode()
}

// NewSQLiteStore opens (creating if needed) a WAL-mode database file. Writes
// are serialized through a single connection; readers get their own pool so
// queries never wait behind ingestion.
func NewSQLiteStore(ctx context.Context, path string, readConns int) (Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database dir %s: %w", dir, err)
		}
	}
	if readConns <= 0 {
		readConns = 4
	}

	dsn := sqliteDSN(path)
	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	s := newSQLStore(writer, nil, dialect{name: "sqlite", schema: sqliteSchema, maintenance: sqliteMaintenance})
	if err := s.migrate(ctx); err != nil {
		writer.Close()
		return nil, err
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open sqlite reader: %w", err)
	}
	reader.SetMaxOpenConns(readConns)
	reader.SetMaxIdleConns(readConns)
	s.reader = reader

	return s, nil
}
