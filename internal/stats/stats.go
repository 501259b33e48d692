package stats

import "math"

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// ZScore calculates the standard score of a value. Returns 0 when the
// standard deviation is zero, so near-constant populations never divide
// by zero.
func ZScore(value, mean, std float64) float64 {
	if std == 0 {
		return 0
	}
	return (value - mean) / std
}

// Welford accumulates count, mean and variance in a single pass using
// Welford's online algorithm, which stays numerically stable on large
// sums where the naive sum-of-squares cancels catastrophically.
type Welford struct {
	n    int64
	mean float64
	m2   float64
}

// Add folds one observation into the accumulator
func (w *Welford) Add(x float64) {
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	w.m2 += delta * (x - w.mean)
}

// Count returns the number of observations
func (w *Welford) Count() int64 {
	return w.n
}

// Mean returns the running mean
func (w *Welford) Mean() float64 {
	return w.mean
}

// Variance returns the population variance (N denominator)
func (w *Welford) Variance() float64 {
	if w.n == 0 {
		return 0
	}
	return w.m2 / float64(w.n)
}

// StdDev returns the population standard deviation
func (w *Welford) StdDev() float64 {
	return math.Sqrt(w.Variance())
}
