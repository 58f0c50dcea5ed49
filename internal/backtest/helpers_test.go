package backtest

import (
	"math"
	"time"

	"github.com/newthinker/quantsim/internal/core"
)

// sineSeries builds n bars spaced by step whose closes oscillate around 100
func sineSeries(start time.Time, step time.Duration, n int) core.Series {
	s := make(core.Series, n)
	for i := range s {
		x := 4 * math.Pi * float64(i) / float64(n-1)
		c := math.Sin(x)*10 + 100
		s[i] = core.Bar{
			Time:   start.Add(time.Duration(i) * step),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + float64(i),
		}
	}
	return s
}

// dailyData starts on Monday 2023-01-02
func dailyData() core.Series {
	return sineSeries(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), 24*time.Hour, 100)
}

func intradayData() core.Series {
	return sineSeries(time.Date(2023, 1, 2, 9, 30, 0, 0, time.UTC), 5*time.Minute, 100)
}

func closesSeries(closes ...float64) core.Series {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	s := make(core.Series, len(closes))
	for i, c := range closes {
		s[i] = core.Bar{Time: start.AddDate(0, 0, i), Close: c, Volume: 1000}
	}
	return s
}

func positionsFor(data core.Series, values ...float64) core.PositionSeries {
	p := make(core.PositionSeries, len(values))
	for i, v := range values {
		p[i] = core.PositionPoint{Time: data[i].Time, Position: v}
	}
	return p
}

// recordingStrategy remembers what the runner showed it
type recordingStrategy struct {
	fits      int
	fitLen    int
	fitErr    error
	calls     int
	histLens  []int
	histEnds  []time.Time
	histView  []core.Series
	decide    func(history core.Series, current float64) (float64, error)
	keepViews bool
}

func (r *recordingStrategy) Name() string { return "recording" }

func (r *recordingStrategy) Fit(history core.Series) error {
	r.fits++
	r.fitLen = len(history)
	return r.fitErr
}

func (r *recordingStrategy) Position(history core.Series, current float64) (float64, error) {
	r.calls++
	r.histLens = append(r.histLens, len(history))
	r.histEnds = append(r.histEnds, history.Last().Time)
	if r.keepViews {
		r.histView = append(r.histView, history)
	}
	if r.decide != nil {
		return r.decide(history, current)
	}
	return current, nil
}

// alternating flips between long and short on every call
func alternating(_ core.Series, current float64) (float64, error) {
	if current > 0 {
		return -1, nil
	}
	return 1, nil
}
