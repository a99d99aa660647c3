package storage

import (
	"fmt"

	"github.com/sigview/sigview/internal/scope"
)

const defaultMaxBatchSize = 500

// CaptureSink adapts a Store to the scope's frame sink so every drained
// batch is appended to a capture session. Rows are written in chunks of at
// most maxBatchSize per transaction.
type CaptureSink struct {
	store        *Store
	sessionID    int64
	maxBatchSize int
}

// WithMaxBatchSize sets the maximum number of rows stored within a single
// database transaction.
func WithMaxBatchSize(size int) func(*CaptureSink) {
	return func(c *CaptureSink) {
		if size > 0 {
			c.maxBatchSize = size
		}
	}
}

// NewCaptureSink creates a sink recording into the given session.
func NewCaptureSink(store *Store, sessionID int64, options ...func(*CaptureSink)) *CaptureSink {
	c := CaptureSink{
		store:        store,
		sessionID:    sessionID,
		maxBatchSize: defaultMaxBatchSize,
	}

	for _, option := range options {
		option(&c)
	}

	return &c
}

// HandleFrame stores the newly drained batch carried by the frame.
func (c *CaptureSink) HandleFrame(f *scope.Frame) error {
	n := len(f.BatchTimes)
	rows := make([]SampleRow, 0, n*len(f.Batch))
	for i := 0; i < n; i++ {
		for ch := range f.Batch {
			rows = append(rows, SampleRow{
				SessionID: c.sessionID,
				Index:     int64(f.BatchStart + i),
				Time:      f.BatchTimes[i],
				Channel:   ch,
				Value:     f.Batch[ch][i],
			})
		}
	}

	for start := 0; start < len(rows); start += c.maxBatchSize {
		end := start + c.maxBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := c.store.BatchInsertSamples(rows[start:end]); err != nil {
			return fmt.Errorf("storing batch at index %d: %w", f.BatchStart, err)
		}
	}
	return nil
}
