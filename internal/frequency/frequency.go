// Package frequency models the rebalancing cadences a backtest can use and
// the data sampling cadences it can infer.
package frequency

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/quantsim/internal/core"
)

// Label names a sampling or rebalancing cadence ("5min", "1H", "D", ...)
type Label string

const (
	Minute1  Label = "1min"
	Minute5  Label = "5min"
	Minute15 Label = "15min"
	Minute30 Label = "30min"
	Hour1    Label = "1H"
	Hour4    Label = "4H"
	Daily    Label = "D"
	Weekly   Label = "W"
	Monthly  Label = "M"
)

const (
	minutesPerDay   = 1440
	minutesPerWeek  = 10080
	minutesPerMonth = 43200
)

// Rebalancing lists the accepted rebalancing labels, finest first
var Rebalancing = []Label{Minute1, Minute5, Minute15, Minute30, Hour1, Hour4, Daily, Weekly, Monthly}

var descriptions = map[Label]string{
	Minute1:  "1 minute",
	Minute5:  "5 minutes",
	Minute15: "15 minutes",
	Minute30: "30 minutes",
	Hour1:    "1 hour",
	Hour4:    "4 hours",
	Daily:    "Daily",
	Weekly:   "Weekly",
	Monthly:  "Monthly",
}

// Parse validates a rebalancing label. Labels are case-sensitive.
func Parse(label string) (Label, error) {
	for _, l := range Rebalancing {
		if string(l) == label {
			return l, nil
		}
	}
	return "", core.WrapError(core.ErrInvalidFrequency,
		fmt.Errorf("%q, available frequencies: %s", label, joinLabels(Rebalancing)))
}

// Description returns a human readable name for the label
func (l Label) Description() string {
	if d, ok := descriptions[l]; ok {
		return d
	}
	return string(l)
}

// Minutes converts a label into its length in minutes. Sub-daily labels
// parse their numeric prefix; unknown labels yield 0.
func (l Label) Minutes() int {
	s := string(l)
	switch {
	case strings.HasSuffix(s, "min"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "min"))
		if err != nil {
			return 0
		}
		return n
	case strings.HasSuffix(strings.ToLower(s), "h"):
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil {
			return 0
		}
		return n * 60
	case s == "D":
		return minutesPerDay
	case strings.HasPrefix(s, "W"):
		return minutesPerWeek
	case strings.HasPrefix(s, "M"):
		return minutesPerMonth
	default:
		return 0
	}
}

// Infer guesses the sampling frequency of a timestamp index from the gap
// between its first two entries.
func Infer(times []time.Time) Label {
	if len(times) < 2 {
		return Daily
	}
	delta := times[1].Sub(times[0])
	switch {
	case delta < 24*time.Hour:
		return Label(fmt.Sprintf("%dmin", int(delta.Minutes())))
	case delta == 7*24*time.Hour:
		return Weekly
	case delta >= 28*24*time.Hour && delta <= 31*24*time.Hour:
		return Monthly
	default:
		return Daily
	}
}

// Available returns the rebalancing labels at or above the given data
// granularity.
func Available(data Label) []Label {
	floor := data.Minutes()
	var out []Label
	for _, l := range Rebalancing {
		if l.Minutes() >= floor {
			out = append(out, l)
		}
	}
	return out
}

// PeriodStart anchors t to the start of its rebalancing period:
// months start on the 1st at midnight, weeks on Monday at midnight, and
// every other label floors the wall clock of t to a multiple of its length,
// so hourly boundaries stay on the hour across DST changes.
func PeriodStart(t time.Time, l Label) time.Time {
	y, m, d := t.Date()
	switch l {
	case Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	case Weekly:
		back := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, t.Location())
	}

	step := l.Minutes()
	if step <= 0 || step >= minutesPerDay {
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
	minute := t.Hour()*60 + t.Minute()
	return time.Date(y, m, d, 0, minute-minute%step, 0, 0, t.Location())
}

func joinLabels(labels []Label) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}
