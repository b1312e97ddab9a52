// Package storage persists vessels and position reports and serves the
// read queries behind the query engine. One write handle is reserved for the
// ingester; queries run on a separate read pool.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"aisd/internal/geo"
	"aisd/internal/models"
)

// maxIDsPerQuery bounds IN-list size so large id sets never hit the
// driver's bind-parameter limit.
const maxIDsPerQuery = 500

// Writer is the ingestion side of the store.
type Writer interface {
	UpsertVessel(ctx context.Context, v models.Vessel) error
	// InsertPosition stores a report unless one already exists for the
	// same vessel and instant; inserted is false for such duplicates.
	InsertPosition(ctx context.Context, p models.PositionReport) (inserted bool, err error)
	LastReportTimes(ctx context.Context) (map[int64]time.Time, error)
}

// Reader is the query side of the store.
type Reader interface {
	LatestReportTime(ctx context.Context) (time.Time, bool, error)
	LatestPositionsInWindow(ctx context.Context, start, end time.Time, bounds geo.BoundingBox) ([]models.VesselPosition, error)
	RecentTrails(ctx context.Context, ids []int64, end time.Time, limit int) (map[int64][]models.TrailPoint, error)
	TrailsInWindow(ctx context.Context, ids []int64, start, end time.Time) (map[int64][]models.TrailPoint, error)
	VesselIDsInZone(ctx context.Context, bounds geo.BoundingBox) ([]int64, error)
	AllVesselIDs(ctx context.Context) ([]int64, error)
	VesselNames(ctx context.Context, ids []int64) (map[int64]string, error)
	Vessel(ctx context.Context, id int64) (*models.Vessel, error)
	Route(ctx context.Context, id int64) ([]models.Coordinate, error)
	Counts(ctx context.Context) (vessels, reports int64, err error)
}

type Store interface {
	Writer
	Reader
	// Maintain runs backend housekeeping (WAL checkpoint, planner statistics).
	Maintain(ctx context.Context) error
	Close() error
}

// dialect captures the few places the two backends disagree.
type dialect struct {
	name        string
	schema      []string
	maintenance []string
	// rebind rewrites '?' placeholders for drivers that need numbered ones.
	rebind func(query string) string
}

type sqlStore struct {
	writer  *sql.DB
	reader  *sql.DB
	dialect dialect
}

func newSQLStore(writer, reader *sql.DB, d dialect) *sqlStore {
	if d.rebind == nil {
		d.rebind = func(q string) string { return q }
	}
	return &sqlStore{writer: writer, reader: reader, dialect: d}
}

func (s *sqlStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.writer.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s schema: %w", s.dialect.name, err)
		}
	}
	return nil
}

func (s *sqlStore) Close() error {
	return errors.Join(s.reader.Close(), s.writer.Close())
}

func (s *sqlStore) Maintain(ctx context.Context) error {
	for _, stmt := range s.dialect.maintenance {
		if _, err := s.writer.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s maintenance %q: %w", s.dialect.name, stmt, err)
		}
	}
	return nil
}

func (s *sqlStore) UpsertVessel(ctx context.Context, v models.Vessel) error {
	_, err := s.writer.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO vessels (mmsi, name, imo, call_sign, ship_type)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (mmsi) DO UPDATE SET
			name      = COALESCE(excluded.name, vessels.name),
			imo       = COALESCE(excluded.imo, vessels.imo),
			call_sign = COALESCE(excluded.call_sign, vessels.call_sign),
			ship_type = COALESCE(excluded.ship_type, vessels.ship_type)`),
		v.MMSI, v.Name, v.IMO, v.CallSign, v.ShipType)
	if err != nil {
		return fmt.Errorf("upsert vessel %d: %w", v.MMSI, err)
	}
	return nil
}

func (s *sqlStore) InsertPosition(ctx context.Context, p models.PositionReport) (bool, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin insert position: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.dialect.rebind(
		`INSERT INTO vessels (mmsi) VALUES (?) ON CONFLICT (mmsi) DO NOTHING`), p.MMSI); err != nil {
		return false, fmt.Errorf("ensure vessel %d: %w", p.MMSI, err)
	}

	res, err := tx.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO position_reports (mmsi, reported_at, latitude, longitude)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (mmsi, reported_at) DO NOTHING`),
		p.MMSI, toMicros(p.Timestamp), p.Latitude, p.Longitude)
	if err != nil {
		return false, fmt.Errorf("insert position %d: %w", p.MMSI, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert position %d: %w", p.MMSI, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit position %d: %w", p.MMSI, err)
	}
	return affected > 0, nil
}

func (s *sqlStore) LastReportTimes(ctx context.Context) (map[int64]time.Time, error) {
	rows, err := s.writer.QueryContext(ctx,
		`SELECT mmsi, MAX(reported_at) FROM position_reports GROUP BY mmsi`)
	if err != nil {
		return nil, fmt.Errorf("last report times: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]time.Time)
	for rows.Next() {
		var id, ts int64
		if err := rows.Scan(&id, &ts); err != nil {
			return nil, fmt.Errorf("scan last report time: %w", err)
		}
		result[id] = fromMicros(ts)
	}
	return result, rows.Err()
}

func (s *sqlStore) LatestReportTime(ctx context.Context) (time.Time, bool, error) {
	var ts sql.NullInt64
	err := s.reader.QueryRowContext(ctx, `SELECT MAX(reported_at) FROM position_reports`).Scan(&ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest report time: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return fromMicros(ts.Int64), true, nil
}

func (s *sqlStore) LatestPositionsInWindow(ctx context.Context, start, end time.Time, bounds geo.BoundingBox) ([]models.VesselPosition, error) {
	if bounds.Empty() || end.Before(start) {
		return []models.VesselPosition{}, nil
	}

	rows, err := s.reader.QueryContext(ctx, s.dialect.rebind(`
		SELECT p.mmsi, COALESCE(v.name, ''), p.latitude, p.longitude, p.reported_at
		FROM position_reports p
		JOIN (
			SELECT mmsi, MAX(reported_at) AS reported_at
			FROM position_reports
			WHERE reported_at BETWEEN ? AND ?
			GROUP BY mmsi
		) last ON last.mmsi = p.mmsi AND last.reported_at = p.reported_at
		LEFT JOIN vessels v ON v.mmsi = p.mmsi
		WHERE p.latitude BETWEEN ? AND ? AND p.longitude BETWEEN ? AND ?
		ORDER BY p.mmsi`),
		toMicros(start), toMicros(end),
		bounds.SouthWestLat, bounds.NorthEastLat, bounds.SouthWestLon, bounds.NorthEastLon)
	if err != nil {
		return nil, fmt.Errorf("latest positions: %w", err)
	}
	defer rows.Close()

	result := make([]models.VesselPosition, 0, 64)
	for rows.Next() {
		var p models.VesselPosition
		var ts int64
		if err := rows.Scan(&p.MMSI, &p.Name, &p.Latitude, &p.Longitude, &ts); err != nil {
			return nil, fmt.Errorf("scan latest position: %w", err)
		}
		p.Timestamp = fromMicros(ts)
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *sqlStore) RecentTrails(ctx context.Context, ids []int64, end time.Time, limit int) (map[int64][]models.TrailPoint, error) {
	result := make(map[int64][]models.TrailPoint, len(ids))
	for _, chunk := range chunkIDs(ids) {
		args := make([]any, 0, len(chunk)+2)
		args = appendIDs(args, chunk)
		args = append(args, toMicros(end), limit)

		query := s.dialect.rebind(`
			SELECT mmsi, latitude, longitude, reported_at FROM (
				SELECT mmsi, latitude, longitude, reported_at,
				       ROW_NUMBER() OVER (PARTITION BY mmsi ORDER BY reported_at DESC) AS rn
				FROM position_reports
				WHERE mmsi IN (` + placeholders(len(chunk)) + `) AND reported_at <= ?
			) recent
			WHERE rn <= ?
			ORDER BY mmsi, reported_at ASC`)
		if err := s.collectTrails(ctx, result, query, args...); err != nil {
			return nil, fmt.Errorf("recent trails: %w", err)
		}
	}
	return result, nil
}

func (s *sqlStore) TrailsInWindow(ctx context.Context, ids []int64, start, end time.Time) (map[int64][]models.TrailPoint, error) {
	result := make(map[int64][]models.TrailPoint, len(ids))
	for _, chunk := range chunkIDs(ids) {
		args := make([]any, 0, len(chunk)+2)
		args = appendIDs(args, chunk)
		args = append(args, toMicros(start), toMicros(end))

		query := s.dialect.rebind(`
			SELECT mmsi, latitude, longitude, reported_at
			FROM position_reports
			WHERE mmsi IN (` + placeholders(len(chunk)) + `) AND reported_at BETWEEN ? AND ?
			ORDER BY mmsi, reported_at ASC`)
		if err := s.collectTrails(ctx, result, query, args...); err != nil {
			return nil, fmt.Errorf("trails in window: %w", err)
		}
	}
	return result, nil
}

func (s *sqlStore) collectTrails(ctx context.Context, into map[int64][]models.TrailPoint, query string, args ...any) error {
	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, ts int64
		var p models.TrailPoint
		if err := rows.Scan(&id, &p.Latitude, &p.Longitude, &ts); err != nil {
			return err
		}
		p.Timestamp = fromMicros(ts)
		into[id] = append(into[id], p)
	}
	return rows.Err()
}

// VesselIDsInZone uses the (latitude, longitude) index over all-time history.
func (s *sqlStore) VesselIDsInZone(ctx context.Context, bounds geo.BoundingBox) ([]int64, error) {
	if bounds.Empty() {
		return []int64{}, nil
	}
	return s.queryIDs(ctx, s.dialect.rebind(`
		SELECT DISTINCT mmsi FROM position_reports
		WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`),
		bounds.SouthWestLat, bounds.NorthEastLat, bounds.SouthWestLon, bounds.NorthEastLon)
}

func (s *sqlStore) AllVesselIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, `SELECT mmsi FROM vessels`)
}

func (s *sqlStore) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vessel ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 128)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan vessel id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *sqlStore) VesselNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	result := make(map[int64]string, len(ids))
	for _, chunk := range chunkIDs(ids) {
		args := appendIDs(make([]any, 0, len(chunk)), chunk)
		rows, err := s.reader.QueryContext(ctx, s.dialect.rebind(
			`SELECT mmsi, name FROM vessels WHERE name IS NOT NULL AND mmsi IN (`+placeholders(len(chunk))+`)`), args...)
		if err != nil {
			return nil, fmt.Errorf("vessel names: %w", err)
		}
		for rows.Next() {
			var id int64
			var name string
			if err := rows.Scan(&id, &name); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan vessel name: %w", err)
			}
			result[id] = name
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("vessel names: %w", err)
		}
	}
	return result, nil
}

// Vessel returns nil without error for an unknown id.
func (s *sqlStore) Vessel(ctx context.Context, id int64) (*models.Vessel, error) {
	var (
		v        = models.Vessel{MMSI: id}
		name     sql.NullString
		imo      sql.NullInt64
		callSign sql.NullString
		shipType sql.NullInt64
	)
	err := s.reader.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT name, imo, call_sign, ship_type FROM vessels WHERE mmsi = ?`), id).
		Scan(&name, &imo, &callSign, &shipType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vessel %d: %w", id, err)
	}
	if name.Valid {
		v.Name = &name.String
	}
	if imo.Valid {
		v.IMO = &imo.Int64
	}
	if callSign.Valid {
		v.CallSign = &callSign.String
	}
	if shipType.Valid {
		t := int(shipType.Int64)
		v.ShipType = &t
	}
	return &v, nil
}

func (s *sqlStore) Route(ctx context.Context, id int64) ([]models.Coordinate, error) {
	rows, err := s.reader.QueryContext(ctx, s.dialect.rebind(
		`SELECT latitude, longitude FROM position_reports WHERE mmsi = ? ORDER BY reported_at ASC`), id)
	if err != nil {
		return nil, fmt.Errorf("route %d: %w", id, err)
	}
	defer rows.Close()

	route := make([]models.Coordinate, 0, 256)
	for rows.Next() {
		var lat, lon float64
		if err := rows.Scan(&lat, &lon); err != nil {
			return nil, fmt.Errorf("scan route point: %w", err)
		}
		route = append(route, models.NewCoordinate(lat, lon))
	}
	return route, rows.Err()
}

func (s *sqlStore) Counts(ctx context.Context) (int64, int64, error) {
	var vessels, reports int64
	err := s.reader.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM vessels), (SELECT COUNT(*) FROM position_reports)`).
		Scan(&vessels, &reports)
	if err != nil {
		return 0, 0, fmt.Errorf("counts: %w", err)
	}
	return vessels, reports, nil
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func appendIDs(args []any, ids []int64) []any {
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

func chunkIDs(ids []int64) [][]int64 {
	chunks := make([][]int64, 0, len(ids)/maxIDsPerQuery+1)
	for len(ids) > 0 {
		n := min(len(ids), maxIDsPerQuery)
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}
	return chunks
}
