package storage

import (
	"database/sql"
	"time"
)

// SessionData describes one recorded capture session.
type SessionData struct {
	ID         int64
	StartTime  time.Time
	SourceType string
	SampleRate float64
	Channels   int
	Labels     []string
	Config     sql.NullString
}

// SampleRow is a single (sample index, channel) cell of a captured batch.
type SampleRow struct {
	SessionID int64
	Index     int64
	Time      float64
	Channel   int
	Value     float64
}

// SeriesData is a captured session reconstructed into the scope's series
// shape: a shared time axis and one value slice per channel.
type SeriesData struct {
	Session SessionData
	Times   []float64
	Values  [][]float64
}
