package indicator

// SMA calculates the simple moving average over a trailing window.
// Returns a slice of length len(prices)-period+1, or empty when there are
// fewer prices than the period.
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	out := make([]float64, 0, len(prices)-period+1)
	var sum float64
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// EMA calculates the exponential moving average seeded with the SMA of the
// first period prices
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	alpha := 2.0 / float64(period+1)
	seed := SMA(prices[:period], period)[0]

	out := make([]float64, 1, len(prices)-period+1)
	out[0] = seed
	for _, p := range prices[period:] {
		prev := out[len(out)-1]
		out = append(out, prev+alpha*(p-prev))
	}
	return out
}

// LastTwo returns the final two values of an indicator output
func LastTwo(values []float64) (prev, curr float64, ok bool) {
	if len(values) < 2 {
		return 0, 0, false
	}
	return values[len(values)-2], values[len(values)-1], true
}
