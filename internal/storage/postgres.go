package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS vessels (
		mmsi      BIGINT PRIMARY KEY,
		name      TEXT,
		imo       BIGINT,
		call_sign TEXT,
		ship_type INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS position_reports (
		id          BIGSERIAL PRIMARY KEY,
		mmsi        BIGINT NOT NULL REFERENCES vessels (mmsi),
		reported_at BIGINT NOT NULL,
		latitude    DOUBLE PRECISION NOT NULL,
		longitude   DOUBLE PRECISION NOT NULL,
		UNIQUE (mmsi, reported_at)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_position_reports_reported_at ON position_reports (reported_at)`,
	`CREATE INDEX IF NOT EXISTS idx_position_reports_mmsi_time ON position_reports (mmsi, reported_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_position_reports_lat_lon ON position_reports (latitude, longitude)`,
}

var postgresMaintenance = []string{
	`ANALYZE vessels`,
	`ANALYZE position_reports`,
}

// rebindDollar turns '?' placeholders into $1..$n.
func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// NewPostgresStore connects through lib/pq. Writes go through a dedicated
// single-connection handle, mirroring the SQLite layout.
func NewPostgresStore(ctx context.Context, dsn string, readConns int) (Store, error) {
	if readConns <= 0 {
		readConns = 8
	}

	writer, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres writer: %w", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(ctx); err != nil {
		writer.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := newSQLStore(writer, nil, dialect{
		name:        "postgres",
		schema:      postgresSchema,
		maintenance: postgresMaintenance,
		rebind:      rebindDollar,
	})
	if err := s.migrate(ctx); err != nil {
		writer.Close()
		return nil, err
	}

	reader, err := sql.Open("postgres", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open postgres reader: %w", err)
	}
	reader.SetMaxOpenConns(readConns)
	s.reader = reader

	return s, nil
}
