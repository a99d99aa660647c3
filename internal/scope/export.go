package scope

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV dumps the full retained time series in tabular form: a header
// row with the time column and one column per channel label (CHn when no
// labels were configured), then one row per retained sample. It is a
// pass-through of the series contents.
func (s *Scope) WriteCSV(w io.Writer) error {
	if !s.configured {
		return ErrNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cw := csv.NewWriter(w)

	header := make([]string, 0, s.channels+1)
	header = append(header, "Time")
	for ch := 0; ch < s.channels; ch++ {
		header = append(header, s.Label(ch))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, s.channels+1)
	for i, t := range s.series.times {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for ch := 0; ch < s.channels; ch++ {
			row[ch+1] = strconv.FormatFloat(s.series.values[ch][i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}
	return nil
}
