// Package storage records drained scope batches into a sqlite capture
// database and reads captured sessions back for offline rendering.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Store handles capture database operations. Write and read connections
// are opened lazily: a WAL-mode writer for the live capture path and a
// read-only connection for the offline tools.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store for the database at dbPath. No connection is opened
// until the first operation.
func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("database path is required")
	}
	return &Store{dbPath: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", s.dbPath)
		db, err := sql.Open("sqlite3", dsn)
		if err != nil {
			s.writeDBErr = err
			return
		}

		if err = initSchema(db); err != nil {
			_ = db.Close()
			s.writeDBErr = err
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.dbPath))
		if err != nil {
			s.readDBErr = err
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// CreateSession records a new capture session and returns its ID. The
// config may be a string, []byte or any JSON-serializable value.
func (s *Store) CreateSession(sourceType string, sampleRate float64, channels int, labels []string, config any) (sessionID int64, err error) {
	var labelsData sql.NullString
	if labels != nil {
		p, mErr := json.Marshal(labels)
		if mErr != nil {
			return 0, fmt.Errorf("marshaling labels: %w", mErr)
		}
		labelsData = sql.NullString{String: string(p), Valid: true}
	}

	var configData sql.NullString
	if config != nil {
		switch v := config.(type) {
		case string:
			configData = sql.NullString{String: v, Valid: true}

		case []byte:
			configData = sql.NullString{String: string(v), Valid: true}

		default:
			p, mErr := json.Marshal(config)
			if mErr != nil {
				return 0, fmt.Errorf("marshaling config: %w", mErr)
			}
			configData = sql.NullString{String: string(p), Valid: true}
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		return 0, fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.Prepare(insertSessionSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.Exec(sourceType, sampleRate, channels, labelsData, configData)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}

	return result.LastInsertId()
}

// BatchInsertSamples stores a chunk of sample rows in one transaction.
func (s *Store) BatchInsertSamples(rows []SampleRow) (err error) {
	if len(rows) == 0 {
		return nil
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.Prepare(insertSampleSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, row := range rows {
		if _, err = stmt.Exec(row.SessionID, row.Index, row.Time, row.Channel, row.Value); err != nil {
			return fmt.Errorf("inserting sample: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Session returns a session by its ID.
func (s *Store) Session(id int64) (session *SessionData, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	stmt, err := db.Prepare(selectSessionSQL)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	sess, err := scanSession(stmt.QueryRow(id))
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return sess, nil
}

// Sessions returns all capture sessions ordered by start time.
func (s *Store) Sessions() (sessions []*SessionData, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	rows, err := db.Query(selectSessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		sess, sErr := scanSession(rows)
		if sErr != nil {
			return nil, fmt.Errorf("scanning session: %w", sErr)
		}
		sessions = append(sessions, sess)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// ReadSeries reconstructs the full captured time series of a session.
func (s *Store) ReadSeries(sessionID int64) (series *SeriesData, err error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}

	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	rows, err := db.Query(selectSeriesSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer closeWithError(rows, &err)

	sd := SeriesData{
		Session: *sess,
		Values:  make([][]float64, sess.Channels),
	}

	lastIdx := int64(-1)
	for rows.Next() {
		var (
			idx     int64
			t       float64
			channel int
			value   float64
		)
		if err = rows.Scan(&idx, &t, &channel, &value); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		if channel < 0 || channel >= sess.Channels {
			return nil, fmt.Errorf("sample at index %d references channel %d of %d", idx, channel, sess.Channels)
		}
		if idx != lastIdx {
			sd.Times = append(sd.Times, t)
			lastIdx = idx
		}
		sd.Values[channel] = append(sd.Values[channel], value)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating samples: %w", err)
	}

	for ch := range sd.Values {
		if len(sd.Values[ch]) != len(sd.Times) {
			return nil, fmt.Errorf("channel %d has %d samples, time axis has %d",
				ch, len(sd.Values[ch]), len(sd.Times))
		}
	}

	return &sd, nil
}

// Close closes the database connections. It is safe to call multiple
// times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*SessionData, error) {
	var (
		sess   SessionData
		labels sql.NullString
	)
	if err := r.Scan(&sess.ID, &sess.StartTime, &sess.SourceType, &sess.SampleRate,
		&sess.Channels, &labels, &sess.Config); err != nil {
		return nil, err
	}
	if labels.Valid {
		if err := json.Unmarshal([]byte(labels.String), &sess.Labels); err != nil {
			return nil, fmt.Errorf("unmarshaling labels: %w", err)
		}
	}
	return &sess, nil
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = fmt.Errorf("closing: %w", cErr)
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = fmt.Errorf("rolling back transaction: %w", cErr)
	}
}
