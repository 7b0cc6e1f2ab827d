package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/body/l2slices"
	"github.com/banshee-data/bodyslice/internal/body/l3measure"
	"github.com/banshee-data/bodyslice/internal/timeutil"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// connPragmas are applied by the driver to every pooled connection.
const connPragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
}

// Session is one persisted estimator run.
type Session struct {
	SessionID    string             `json:"session_id"`
	SubjectID    l1frames.SubjectID `json:"subject_id"`
	SettingsJSON string             `json:"settings_json,omitempty"`
	StartedAt    int64              `json:"started_at"`
	EndedAt      *int64             `json:"ended_at,omitempty"`
}

// Measurement is one stored record of one pass.
type Measurement struct {
	TimestampNanos int64           `json:"timestamp_ns"`
	Kind           l3measure.Kind  `json:"-"`
	KindName       string          `json:"kind"`
	Reason         l2slices.Reason `json:"reason"`
	// Record is zero apart from Valid and Reason for invalid measurements.
	Record l2slices.Record `json:"-"`
}

// Store persists sessions and passes. It is safe for concurrent use.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens or creates the database at path and migrates it to the latest
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?"+connPragmas)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	s := NewStore(db, timeutil.RealClock{})
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an already open database. The caller runs MigrateUp.
func NewStore(db *sql.DB, clock timeutil.Clock) *Store {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Store{db: db, clock: clock}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartSession records the start of a run for subject. settingsJSON is the
// effective settings the run uses and may be empty.
func (s *Store) StartSession(subject l1frames.SubjectID, settingsJSON []byte) (*Session, error) {
	sess := &Session{
		SessionID:    uuid.New().String(),
		SubjectID:    subject,
		SettingsJSON: string(settingsJSON),
		StartedAt:    s.clock.Now().UnixNano(),
	}
	var settings interface{}
	if len(settingsJSON) > 0 {
		settings = sess.SettingsJSON
	}
	err := retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO body_sessions (session_id, subject_id, settings_json, started_at)
			VALUES (?, ?, ?, ?)`,
			sess.SessionID, int64(sess.SubjectID), settings, sess.StartedAt,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// EndSession stamps the session's end time.
func (s *Store) EndSession(sessionID string) error {
	var n int64
	err := retryOnBusy(func() error {
		res, err := s.db.Exec(`UPDATE body_sessions SET ended_at = ? WHERE session_id = ?`,
			s.clock.Now().UnixNano(), sessionID)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("end session %s: %w", sessionID, ErrSessionNotFound)
	}
	return nil
}

// GetSession loads one session.
func (s *Store) GetSession(sessionID string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT session_id, subject_id, settings_json, started_at, ended_at
		FROM body_sessions WHERE session_id = ?`, sessionID)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %s: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// ListSessions returns sessions, newest first.
func (s *Store) ListSessions(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT session_id, subject_id, settings_json, started_at, ended_at
		FROM body_sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		sess     Session
		subject  int64
		settings sql.NullString
		ended    sql.NullInt64
	)
	if err := row.Scan(&sess.SessionID, &subject, &settings, &sess.StartedAt, &ended); err != nil {
		return nil, err
	}
	sess.SubjectID = l1frames.SubjectID(subject)
	sess.SettingsJSON = settings.String
	if ended.Valid {
		v := ended.Int64
		sess.EndedAt = &v
	}
	return &sess, nil
}

// RecordPass stores every enabled record of set under timestampNanos. A
// pass already stored for the same timestamp is replaced.
func (s *Store) RecordPass(sessionID string, timestampNanos int64, set *l3measure.Set) error {
	err := retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM body_passes WHERE session_id = ? AND timestamp_ns = ?`,
			sessionID, timestampNanos); err != nil {
			return err
		}
		res, err := tx.Exec(`INSERT INTO body_passes (session_id, timestamp_ns) VALUES (?, ?)`,
			sessionID, timestampNanos)
		if err != nil {
			return err
		}
		passID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO body_measurements (
				pass_id, kind, valid, reason, diameter, pixel_length, color_length,
				start_x, start_y, end_x, end_y,
				space_start_x, space_start_y, space_start_z,
				space_end_x, space_end_y, space_end_z,
				color_start_x, color_start_y, color_end_x, color_end_y
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, k := range set.Kinds() {
			if _, err := stmt.Exec(measurementArgs(passID, k, set.Record(k))...); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("record pass: %w", err)
	}
	return nil
}

func measurementArgs(passID int64, k l3measure.Kind, rec l2slices.Record) []interface{} {
	if !rec.Valid {
		return []interface{}{
			passID, k.String(), false, string(rec.Reason),
			nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil,
			nil, nil, nil, nil,
		}
	}
	return []interface{}{
		passID, k.String(), true, string(rec.Reason),
		rec.Diameter, rec.PixelLength, rec.ColorLength,
		rec.Start.X, rec.Start.Y, rec.End.X, rec.End.Y,
		rec.SpaceStart.X, rec.SpaceStart.Y, rec.SpaceStart.Z,
		rec.SpaceEnd.X, rec.SpaceEnd.Y, rec.SpaceEnd.Z,
		rec.ColorStart.X, rec.ColorStart.Y, rec.ColorEnd.X, rec.ColorEnd.Y,
	}
}

// ListPasses returns the stored records of kind for a session, oldest
// first. A limit of zero or less returns every pass.
func (s *Store) ListPasses(sessionID string, kind l3measure.Kind, limit int) ([]Measurement, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT p.timestamp_ns, m.valid, m.reason, m.diameter, m.pixel_length, m.color_length,
			m.start_x, m.start_y, m.end_x, m.end_y,
			m.space_start_x, m.space_start_y, m.space_start_z,
			m.space_end_x, m.space_end_y, m.space_end_z,
			m.color_start_x, m.color_start_y, m.color_end_x, m.color_end_y
		FROM body_measurements m
		JOIN body_passes p ON p.pass_id = m.pass_id
		WHERE p.session_id = ? AND m.kind = ?
		ORDER BY p.timestamp_ns ASC
		LIMIT ?`, sessionID, kind.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	var out []Measurement
	for rows.Next() {
		var (
			m                  Measurement
			valid              bool
			reason             string
			diameter, colorLen sql.NullFloat64
			pixelLen           sql.NullInt64
			sx, sy, ex, ey     sql.NullInt64
			ssx, ssy, ssz      sql.NullFloat64
			sex, sey, sez      sql.NullFloat64
			csx, csy, cex, cey sql.NullFloat64
		)
		if err := rows.Scan(&m.TimestampNanos, &valid, &reason, &diameter, &pixelLen, &colorLen,
			&sx, &sy, &ex, &ey, &ssx, &ssy, &ssz, &sex, &sey, &sez,
			&csx, &csy, &cex, &cey); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		m.Kind = kind
		m.KindName = kind.String()
		m.Reason = l2slices.Reason(reason)
		m.Record.Reason = m.Reason
		if valid {
			m.Record.Valid = true
			m.Record.Diameter = diameter.Float64
			m.Record.PixelLength = int(pixelLen.Int64)
			m.Record.ColorLength = colorLen.Float64
			m.Record.Start.X, m.Record.Start.Y = int(sx.Int64), int(sy.Int64)
			m.Record.End.X, m.Record.End.Y = int(ex.Int64), int(ey.Int64)
			m.Record.SpaceStart.X, m.Record.SpaceStart.Y, m.Record.SpaceStart.Z = ssx.Float64, ssy.Float64, ssz.Float64
			m.Record.SpaceEnd.X, m.Record.SpaceEnd.Y, m.Record.SpaceEnd.Z = sex.Float64, sey.Float64, sez.Float64
			m.Record.ColorStart.X, m.Record.ColorStart.Y = csx.Float64, csy.Float64
			m.Record.ColorEnd.X, m.Record.ColorEnd.Y = cex.Float64, cey.Float64
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountPasses returns the number of passes stored for a session.
func (s *Store) CountPasses(sessionID string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM body_passes WHERE session_id = ?`, sessionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count passes: %w", err)
	}
	return n, nil
}
