package backtest

import (
	"errors"
	"testing"
	"time"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/frequency"
	"github.com/newthinker/quantsim/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Defaults(t *testing.T) {
	data := dailyData()
	bt, err := New(data, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 10000.0, bt.Config().InitialCapital)
	assert.Equal(t, 0.001, bt.Config().Commission)
	assert.Equal(t, 0.0, bt.Config().Slippage)
	assert.Equal(t, frequency.Daily, bt.Rebalancing())
	assert.Equal(t, frequency.Daily, bt.DataFrequency())
}

func TestNew_InvalidFrequency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rebalancing = "Y"

	_, err := New(dailyData(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidFrequency))
	assert.Contains(t, err.Error(), "available frequencies")
}

func TestNew_FrequencyValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rebalancing = "1min"
	_, err := New(dailyData(), cfg)
	assert.True(t, errors.Is(err, core.ErrFrequencyTooFine), "1min on daily data, got %v", err)

	cfg.Rebalancing = "5min"
	bt, err := New(intradayData(), cfg)
	require.NoError(t, err)
	assert.Equal(t, frequency.Minute5, bt.Rebalancing())

	cfg.Rebalancing = "1min"
	_, err = New(intradayData(), cfg)
	assert.True(t, errors.Is(err, core.ErrFrequencyTooFine))
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero capital", func(c *Config) { c.InitialCapital = 0 }},
		{"negative commission", func(c *Config) { c.Commission = -0.01 }},
		{"negative slippage", func(c *Config) { c.Slippage = -0.01 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			_, err := New(dailyData(), cfg)
			assert.True(t, errors.Is(err, core.ErrConfigInvalid), "got %v", err)
		})
	}
}

func TestNew_InvalidData(t *testing.T) {
	_, err := New(core.Series{}, DefaultConfig())
	assert.True(t, errors.Is(err, core.ErrNoData))

	data := dailyData()
	data[5].Time = data[4].Time
	_, err = New(data, DefaultConfig())
	assert.True(t, errors.Is(err, core.ErrDataFormat))
}

func TestRun_EveryBar(t *testing.T) {
	data := dailyData()
	bt, err := New(data, DefaultConfig())
	require.NoError(t, err)

	strat := &recordingStrategy{decide: alternating}
	res, err := bt.Run(strat)
	require.NoError(t, err)

	assert.Equal(t, 1, strat.fits)
	assert.Equal(t, len(data), strat.fitLen, "fit sees the whole history")
	assert.Equal(t, len(data), strat.calls)

	for i := range data {
		assert.Equal(t, i+1, strat.histLens[i])
		assert.True(t, data[i].Time.Equal(strat.histEnds[i]), "history must end at the current bar")
	}

	positions := res.Positions()
	require.Len(t, positions, len(data))
	assert.Equal(t, 1.0, positions[0].Position)
	assert.Equal(t, -1.0, positions[1].Position)
	assert.Len(t, res.NAV(), len(data))
}

func TestRun_RebalancingCalls(t *testing.T) {
	tests := []struct {
		name      string
		data      core.Series
		label     string
		wantCalls int
	}{
		{"daily on daily", dailyData(), "D", 100},
		{"weekly on daily", dailyData(), "W", 15},
		{"monthly on daily", dailyData(), "M", 4},
		{"5min on 5min", intradayData(), "5min", 100},
		{"15min on 5min", intradayData(), "15min", 34},
		{"30min on 5min", intradayData(), "30min", 17},
		{"1H on 5min", intradayData(), "1H", 9},
		{"4H on 5min", intradayData(), "4H", 3},
		{"daily on 5min", intradayData(), "D", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Rebalancing = tt.label
			bt, err := New(tt.data, cfg)
			require.NoError(t, err)

			strat := &recordingStrategy{decide: alternating}
			res, err := bt.Run(strat)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCalls, strat.calls)
			assert.Len(t, res.Positions(), len(tt.data))
		})
	}
}

func TestRun_PositionHeldWithinPeriod(t *testing.T) {
	data := dailyData()
	cfg := DefaultConfig()
	cfg.Rebalancing = "W"
	bt, err := New(data, cfg)
	require.NoError(t, err)

	res, err := bt.Run(&recordingStrategy{decide: alternating})
	require.NoError(t, err)

	positions := res.Positions()
	for i := 1; i < len(data); i++ {
		sameWeek := frequency.PeriodStart(data[i].Time, frequency.Weekly).
			Equal(frequency.PeriodStart(data[i-1].Time, frequency.Weekly))
		if sameWeek {
			assert.Equal(t, positions[i-1].Position, positions[i].Position, "bar %d", i)
		} else {
			assert.NotEqual(t, positions[i-1].Position, positions[i].Position, "bar %d", i)
			assert.Equal(t, time.Monday, data[i].Time.Weekday())
		}
	}
}

func TestRun_ResampledViewHasNoLookahead(t *testing.T) {
	data := dailyData()
	cfg := DefaultConfig()
	cfg.Rebalancing = "W"
	bt, err := New(data, cfg)
	require.NoError(t, err)

	strat := &recordingStrategy{keepViews: true}
	_, err = bt.Run(strat)
	require.NoError(t, err)

	for call, view := range strat.histView {
		end := strat.histEnds[call]
		for _, bar := range view {
			assert.False(t, bar.Time.After(end))
		}
		// decisions happen on the first bar of a week, so the current
		// period is known only through that bar
		last := view.Last()
		idx := len(view) - 1
		assert.Equal(t, data[idx].Close, last.Close)
		assert.Equal(t, data[idx].Volume, last.Volume)

		// earlier rows close on the last bar of their week, never later
		for i := 0; i < idx; i++ {
			weekEnd := i
			for weekEnd+1 < idx && frequency.PeriodStart(data[weekEnd+1].Time, frequency.Weekly).
				Equal(frequency.PeriodStart(data[i].Time, frequency.Weekly)) {
				weekEnd++
			}
			assert.Equal(t, data[weekEnd].Close, view[i].Close, "call %d row %d", call, i)
		}
	}
}

func TestResamplePeriods(t *testing.T) {
	// Monday 2023-01-02 onwards: seven bars in the first week, two in the next
	data := closesSeries(10, 11, 12, 13, 14, 15, 16, 17, 18)
	view := resamplePeriods(data, frequency.Weekly)

	require.Len(t, view, len(data))
	for i := range view {
		wantClose, wantVolume := 16.0, 7000.0
		if i >= 7 {
			wantClose, wantVolume = 18.0, 2000.0
		}
		assert.Equal(t, wantClose, view[i].Close, "bar %d", i)
		assert.Equal(t, wantVolume, view[i].Volume, "bar %d", i)
		assert.True(t, data[i].Time.Equal(view[i].Time))
	}
	assert.Equal(t, 10.0, data[0].Close, "input must not be modified")
	assert.Equal(t, 1000.0, data[0].Volume, "input must not be modified")
}

func TestResamplePeriods_OHLC(t *testing.T) {
	start := time.Date(2023, 1, 2, 9, 30, 0, 0, time.UTC)
	data := core.Series{
		{Time: start, Open: 10, High: 12, Low: 9, Close: 11, Volume: 5},
		{Time: start.Add(time.Hour), Open: 11, High: 15, Low: 10, Close: 14, Volume: 7},
		{Time: start.Add(2 * time.Hour), Open: 14, High: 14, Low: 8, Close: 9, Volume: 3},
	}

	view := resamplePeriods(data, frequency.Daily)
	for i := range view {
		assert.Equal(t, 10.0, view[i].Open)
		assert.Equal(t, 15.0, view[i].High)
		assert.Equal(t, 8.0, view[i].Low)
		assert.Equal(t, 9.0, view[i].Close)
		assert.Equal(t, 15.0, view[i].Volume)
	}
}

func TestRun_DecisionViewUsesFinishedPeriods(t *testing.T) {
	// two days of 5 minute bars, six per day
	var data core.Series
	for day, base := range []float64{100, 110} {
		open := time.Date(2023, 1, 2+day, 9, 30, 0, 0, time.UTC)
		for j := 0; j < 6; j++ {
			c := base + float64(j)
			data = append(data, core.Bar{
				Time:   open.Add(time.Duration(j) * 5 * time.Minute),
				Open:   c,
				High:   c,
				Low:    c,
				Close:  c,
				Volume: 1,
			})
		}
	}

	cfg := DefaultConfig()
	cfg.Rebalancing = "D"
	bt, err := New(data, cfg)
	require.NoError(t, err)

	strat := &recordingStrategy{keepViews: true}
	_, err = bt.Run(strat)
	require.NoError(t, err)
	require.Len(t, strat.histView, 2)

	first := strat.histView[0]
	require.Len(t, first, 1)
	assert.Equal(t, 100.0, first[0].Close, "opening bar only")
	assert.Equal(t, 1.0, first[0].Volume)

	second := strat.histView[1]
	require.Len(t, second, 7)
	for i := 0; i < 6; i++ {
		assert.Equal(t, 105.0, second[i].Close, "row %d of the finished day", i)
		assert.Equal(t, 6.0, second[i].Volume, "row %d of the finished day", i)
		assert.True(t, data[i].Time.Equal(second[i].Time))
	}
	assert.Equal(t, 110.0, second[6].Close, "current day is known up to its opening bar")
	assert.Equal(t, 1.0, second[6].Volume)
}

func TestRun_FitErrorPropagates(t *testing.T) {
	bt, err := New(dailyData(), DefaultConfig())
	require.NoError(t, err)

	cause := errors.New("not enough history")
	_, err = bt.Run(&recordingStrategy{fitErr: cause})
	assert.True(t, errors.Is(err, core.ErrStrategyFailed))
	assert.True(t, errors.Is(err, cause))
}

func TestRun_StrategyErrorPropagates(t *testing.T) {
	bt, err := New(dailyData(), DefaultConfig())
	require.NoError(t, err)

	cause := errors.New("model diverged")
	strat := &recordingStrategy{decide: func(history core.Series, current float64) (float64, error) {
		if len(history) == 10 {
			return 0, cause
		}
		return 1, nil
	}}

	res, err := bt.Run(strat)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, core.ErrStrategyFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, 10, strat.calls, "the run stops at the failing bar")
}

func TestRun_OutOfRangePositionRejected(t *testing.T) {
	bt, err := New(dailyData(), DefaultConfig())
	require.NoError(t, err)

	_, err = bt.Run(strategy.Func("leveraged", func(core.Series, float64) (float64, error) { return 2, nil }))
	assert.True(t, errors.Is(err, core.ErrPositionOutOfRange))
}

func TestRun_CostsReduceNAV(t *testing.T) {
	data := dailyData()

	free := DefaultConfig()
	free.Commission, free.Slippage = 0, 0
	paid := DefaultConfig()
	paid.Commission, paid.Slippage = 0.001, 0.001

	btFree, err := New(data, free)
	require.NoError(t, err)
	btPaid, err := New(data, paid)
	require.NoError(t, err)

	resFree, err := btFree.Run(strategy.Func("alt", alternating))
	require.NoError(t, err)
	resPaid, err := btPaid.Run(strategy.Func("alt", alternating))
	require.NoError(t, err)

	navFree, navPaid := resFree.NAV(), resPaid.NAV()
	assert.GreaterOrEqual(t, navFree[len(navFree)-1], navPaid[len(navPaid)-1])
}

func TestRun_WithLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rebalancing = "M"
	bt, err := New(dailyData(), cfg, WithLogger(zap.NewExample()), WithLogger(nil))
	require.NoError(t, err)

	_, err = bt.Run(strategy.Func("alt", alternating))
	require.NoError(t, err)
}

func TestRun_SharedDataIsNotModified(t *testing.T) {
	data := dailyData()
	snapshot := append(core.Series(nil), data...)

	for _, label := range []string{"D", "W", "M"} {
		cfg := DefaultConfig()
		cfg.Rebalancing = label
		bt, err := New(data, cfg)
		require.NoError(t, err)
		_, err = bt.Run(strategy.Func("alt", alternating))
		require.NoError(t, err)
	}
	assert.Equal(t, snapshot, data)
}
