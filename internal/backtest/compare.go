package backtest

import (
	"fmt"

	"github.com/newthinker/quantsim/internal/core"
)

// Comparison is a side-by-side table of metrics: one row per metric, one
// column per compared result.
type Comparison struct {
	Metrics []string
	Labels  []string
	Values  [][]float64 // Values[metric][result]
}

// Get returns the value of metric for the column labelled label
func (c *Comparison) Get(metric, label string) (float64, bool) {
	for i, m := range c.Metrics {
		if m != metric {
			continue
		}
		for j, l := range c.Labels {
			if l == label {
				return c.Values[i][j], true
			}
		}
	}
	return 0, false
}

// Compare tabulates the chosen metrics for each result. Columns are
// labelled "Strategy 1", "Strategy 2", ... in argument order. With no
// metric names the essential set is used.
func Compare(results []*Result, metrics ...string) (*Comparison, error) {
	if len(results) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("at least one result must be provided"))
	}
	if len(metrics) == 0 {
		metrics = EssentialMetricNames
	}

	c := &Comparison{
		Metrics: append([]string(nil), metrics...),
		Labels:  make([]string, len(results)),
		Values:  make([][]float64, len(metrics)),
	}
	for i := range c.Values {
		c.Values[i] = make([]float64, len(results))
	}

	for j, res := range results {
		c.Labels[j] = fmt.Sprintf("Strategy %d", j+1)
		all := res.AllMetrics()
		for i, name := range metrics {
			v, ok := all[name]
			if !ok {
				return nil, core.WrapError(core.ErrUnknownMetric, fmt.Errorf("%q", name))
			}
			c.Values[i][j] = v
		}
	}
	return c, nil
}
