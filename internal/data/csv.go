package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/quantsim/internal/core"
)

// timestamp layouts accepted in the first column, tried in order
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// DecodeCSV parses a price table whose first column holds the timestamp and
// whose header names at least close and volume. open, high and low are
// optional. An empty close cell decodes as NaN and fails validation later.
func DecodeCSV(r io.Reader) (core.Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, core.ErrNoData
	}
	if err != nil {
		return nil, core.WrapError(core.ErrDataFormat, fmt.Errorf("reading header: %w", err))
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			continue
		}
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"close", "volume"} {
		if _, ok := cols[required]; !ok {
			return nil, core.WrapError(core.ErrMissingField,
				fmt.Errorf("price table needs a %s column, header is %v", required, header))
		}
	}

	var series core.Series
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.WrapError(core.ErrDataFormat, fmt.Errorf("line %d: %w", line, err))
		}

		ts, err := parseTime(record[0])
		if err != nil {
			return nil, core.WrapError(core.ErrDataFormat, fmt.Errorf("line %d: %w", line, err))
		}

		bar := core.Bar{Time: ts}
		fields := []struct {
			name string
			dst  *float64
		}{
			{"open", &bar.Open},
			{"high", &bar.High},
			{"low", &bar.Low},
			{"close", &bar.Close},
			{"volume", &bar.Volume},
		}
		for _, f := range fields {
			idx, ok := cols[f.name]
			if !ok {
				continue
			}
			v, err := parseFloat(record[idx])
			if err != nil {
				return nil, core.WrapError(core.ErrDataFormat, fmt.Errorf("line %d, %s: %w", line, f.name, err))
			}
			*f.dst = v
		}
		if _, ok := cols["open"]; !ok {
			bar.Open = bar.Close
		}
		if _, ok := cols["high"]; !ok {
			bar.High = bar.Close
		}
		if _, ok := cols["low"]; !ok {
			bar.Low = bar.Close
		}
		series = append(series, bar)
	}

	if len(series) == 0 {
		return nil, core.ErrNoData
	}
	return series, nil
}

// EncodeCSV writes the series with a time,open,high,low,close,volume header
func EncodeCSV(w io.Writer, s core.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range s {
		err := cw.Write([]string{
			b.Time.Format(time.RFC3339),
			formatF(b.Open), formatF(b.High), formatF(b.Low), formatF(b.Close), formatF(b.Volume),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
