package stats

import "math"

// Skewness is the sample-bias-corrected (Fisher) third standardized moment
func Skewness(returns []float64) float64 {
	t := float64(len(returns))
	mean, sd := Mean(returns), Std(returns)
	var sum float64
	for _, r := range returns {
		sum += math.Pow((r-mean)/sd, 3)
	}
	return t / ((t - 1) * (t - 2)) * sum
}

// Kurtosis is the sample-bias-corrected excess kurtosis
func Kurtosis(returns []float64) float64 {
	t := float64(len(returns))
	mean, sd := Mean(returns), Std(returns)
	var sum float64
	for _, r := range returns {
		sum += math.Pow((r-mean)/sd, 4)
	}
	k := t * (t + 1) / ((t - 1) * (t - 2) * (t - 3)) * sum
	return k - 3*(t-1)*(t-1)/((t-2)*(t-3))
}

// Coskewness measures how a moves with the squared deviations of b
func Coskewness(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}
	t := float64(len(a))
	ma, mb := Mean(a), Mean(b)
	sa, sb := Std(a), Std(b)
	var sum float64
	for i := range a {
		sum += (a[i] - ma) * math.Pow(b[i]-mb, 2) / (sa * sb * sb)
	}
	return t / ((t - 1) * (t - 2)) * sum
}

// Cokurtosis measures how a moves with the cubed deviations of b
func Cokurtosis(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}
	t := float64(len(a))
	ma, mb := Mean(a), Mean(b)
	sa, sb := Std(a), Std(b)
	var sum float64
	for i := range a {
		sum += (a[i] - ma) * math.Pow(b[i]-mb, 3) / (sa * math.Pow(sb, 3))
	}
	ck := t * (t + 1) / ((t - 1) * (t - 2) * (t - 3)) * sum
	return ck - 3*(t-1)*(t-1)/((t-2)*(t-3))
}

// Drawdown returns nav[t]/max(nav[:t+1]) - 1 for every bar. Values are <= 0.
func Drawdown(nav []float64) []float64 {
	out := make([]float64, len(nav))
	peak := math.Inf(-1)
	for i, v := range nav {
		if v > peak {
			peak = v
		}
		out[i] = v/peak - 1
	}
	return out
}

// MaxDrawdown returns the deepest drawdown over the trailing window bars.
// A window <= 0 or longer than the series uses the full history.
func MaxDrawdown(nav []float64, window int) float64 {
	if window > 0 && window < len(nav) {
		nav = nav[len(nav)-window:]
	}
	if len(nav) == 0 {
		return math.NaN()
	}
	worst := 0.0
	for _, dd := range Drawdown(nav) {
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// DrawdownDuration is the length, in years of n periods, of the drawdown
// the series is currently in. It is 0 when the last bar is at a peak.
func DrawdownDuration(nav []float64, n int) float64 {
	dd := Drawdown(nav)
	var bars int
	for i := len(dd) - 1; i >= 0 && dd[i] < 0; i-- {
		bars++
	}
	return float64(bars) / float64(n)
}
