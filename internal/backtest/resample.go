package backtest

import (
	"math"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/frequency"
)

// resamplePeriods aggregates bars into rebalancing periods and expands each
// period's final aggregate back onto every bar of that period: last close,
// summed volume, first open and the period high/low. Row times stay on the
// original index.
//
// Rows of the still-open period carry values from later bars, so callers
// must only expose rows of finished periods.
func resamplePeriods(data core.Series, label frequency.Label) core.Series {
	out := make(core.Series, len(data))

	for start := 0; start < len(data); {
		anchor := frequency.PeriodStart(data[start].Time, label)
		end := start + 1
		for end < len(data) && frequency.PeriodStart(data[end].Time, label).Equal(anchor) {
			end++
		}

		agg := aggregate(data[start:end])
		for j := start; j < end; j++ {
			out[j] = agg
			out[j].Time = data[j].Time
		}
		start = end
	}
	return out
}

func aggregate(bars core.Series) core.Bar {
	agg := core.Bar{
		Open: bars[0].Open,
		High: bars[0].High,
		Low:  bars[0].Low,
	}
	for _, bar := range bars {
		agg.Close = bar.Close
		agg.Volume += bar.Volume
		agg.High = math.Max(agg.High, bar.High)
		agg.Low = math.Min(agg.Low, bar.Low)
	}
	return agg
}
