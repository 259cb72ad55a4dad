package aggregate

import (
	"math"

	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean[T number](xs []T) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	return sum / float64(len(xs))
}

// Variance is the population variance.
func Variance[T number](xs []T) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := float64(x) - m
		ss += d * d
	}
	return ss / float64(len(xs))
}

// Summary holds descriptive statistics for one sample set.
type Summary struct {
	Count  int
	Mean   float64
	Min    float64
	Max    float64
	StdDev float64
}

func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(xs), Mean: Mean(xs), Min: xs[0], Max: xs[0]}
	for _, x := range xs[1:] {
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
	}
	s.StdDev = math.Sqrt(Variance(xs))
	return s
}

// Pearson returns the correlation coefficient of paired samples and a
// two-tailed p-value from the normal approximation of the t statistic.
// ok is false for mismatched lengths, fewer than 3 pairs, or zero variance.
func Pearson(xs, ys []float64) (r, p float64, ok bool) {
	n := len(xs)
	if n != len(ys) || n < 3 {
		return 0, 1, false
	}
	mx, my := Mean(xs), Mean(ys)
	var num, dx2, dy2 float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		num += dx * dy
		dx2 += dx * dx
		dy2 += dy * dy
	}
	if dx2 == 0 || dy2 == 0 {
		return 0, 1, false
	}
	r = num / math.Sqrt(dx2*dy2)
	if math.Abs(r) >= 1 {
		return r, 0, true
	}
	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	p = 2 * (1 - normalCDF(math.Abs(t)))
	return r, p, true
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(v*f) / f
}
