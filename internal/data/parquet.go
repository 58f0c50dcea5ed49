package data

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/parquet-go/parquet-go"
)

// BarRecord is the Parquet schema for price tables
type BarRecord struct {
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// DecodeParquet reads every row of a Parquet price table. Timestamps are
// returned in UTC.
func DecodeParquet(data []byte) (core.Series, error) {
	records, err := parquet.Read[BarRecord](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, core.WrapError(core.ErrDataFormat, fmt.Errorf("reading parquet: %w", err))
	}
	if len(records) == 0 {
		return nil, core.ErrNoData
	}

	series := make(core.Series, len(records))
	for i, r := range records {
		series[i] = core.Bar{
			Time:   time.UnixMilli(r.Timestamp).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	return series, nil
}

// EncodeParquet writes the series as Parquet rows
func EncodeParquet(w io.Writer, s core.Series) error {
	records := make([]BarRecord, len(s))
	for i, b := range s {
		records[i] = BarRecord{
			Timestamp: b.Time.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	return parquet.Write(w, records)
}
