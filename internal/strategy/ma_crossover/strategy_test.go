package ma_crossover

import (
	"testing"
	"time"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(prices ...float64) core.Series {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	s := make(core.Series, len(prices))
	for i, p := range prices {
		s[i] = core.Bar{Time: start.AddDate(0, 0, i), Close: p}
	}
	return s
}

func TestMACrossover_ImplementsStrategy(t *testing.T) {
	var _ strategy.Strategy = (*MACrossover)(nil)
}

func TestMACrossover_Name(t *testing.T) {
	s, err := New(5, 10)
	require.NoError(t, err)
	assert.Equal(t, "ma_crossover", s.Name())
	assert.Equal(t, "MA Crossover (5/10)", s.Description())
}

func TestMACrossover_InvalidWindows(t *testing.T) {
	_, err := New(0, 10)
	assert.Error(t, err)
	_, err = New(10, 10)
	assert.Error(t, err)
}

func TestMACrossover_GoldenCross(t *testing.T) {
	s, err := New(2, 4)
	require.NoError(t, err)

	// prev short 82.5 <= prev long 87.5, curr short 100 > curr long 93.75
	pos, err := s.Position(series(100, 95, 90, 85, 80, 120), 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos)
}

func TestMACrossover_DeathCross(t *testing.T) {
	s, err := New(2, 4)
	require.NoError(t, err)

	pos, err := s.Position(series(80, 85, 90, 95, 100, 60), 1)
	require.NoError(t, err)
	assert.Equal(t, -1.0, pos)
}

func TestMACrossover_NoCrossKeepsPosition(t *testing.T) {
	s, err := New(2, 4)
	require.NoError(t, err)

	rising := series(100, 101, 102, 103, 104, 105, 106)
	pos, err := s.Position(rising, -1)
	require.NoError(t, err)
	assert.Equal(t, -1.0, pos)
}

func TestMACrossover_ShortHistoryIsFlat(t *testing.T) {
	s, err := New(2, 4)
	require.NoError(t, err)

	pos, err := s.Position(series(100, 101, 102), 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pos)

	// exactly long_window bars: no previous long average yet
	pos, err = s.Position(series(100, 101, 102, 103), 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos)
}

func TestFactory(t *testing.T) {
	s, err := Factory(strategy.Params{"short_window": "3", "long_window": 7})
	require.NoError(t, err)
	assert.Equal(t, "MA Crossover (3/7)", s.(*MACrossover).Description())

	s, err = Factory(nil)
	require.NoError(t, err)
	assert.Equal(t, "MA Crossover (20/50)", s.(*MACrossover).Description())

	_, err = Factory(strategy.Params{"short_window": "x"})
	assert.Error(t, err)
}
