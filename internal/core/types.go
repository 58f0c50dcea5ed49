package core

import (
	"fmt"
	"math"
	"time"
)

// Bar represents one sample of the price table
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is a time-ordered price table for a single asset.
// Strategies receive prefixes of a Series and must treat them as read-only.
type Series []Bar

// Validate checks the invariants every price table must satisfy:
// at least one bar, strictly increasing timestamps and a finite close.
func (s Series) Validate() error {
	if len(s) == 0 {
		return ErrNoData
	}
	for i, b := range s {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			return WrapError(ErrMissingField,
				fmt.Errorf("bar %d (%s) has no usable close", i, b.Time.Format(time.RFC3339)))
		}
		if i > 0 && !b.Time.After(s[i-1].Time) {
			return WrapError(ErrDataFormat,
				fmt.Errorf("timestamps must be strictly increasing: %s follows %s",
					b.Time.Format(time.RFC3339), s[i-1].Time.Format(time.RFC3339)))
		}
	}
	return nil
}

// Closes returns the close prices
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the traded volumes
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// Times returns the timestamp index
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s))
	for i, b := range s {
		out[i] = b.Time
	}
	return out
}

// Last returns the most recent bar. It panics on an empty series.
func (s Series) Last() Bar {
	return s[len(s)-1]
}

// PositionPoint is the target exposure held at a timestamp.
// -1 is fully short, 0 flat, +1 fully long.
type PositionPoint struct {
	Time     time.Time
	Position float64
}

// PositionSeries is aligned bar-for-bar with the Series it was produced from
type PositionSeries []PositionPoint

// Values returns the raw exposures
func (p PositionSeries) Values() []float64 {
	out := make([]float64, len(p))
	for i, pt := range p {
		out[i] = pt.Position
	}
	return out
}
