package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// WelchTTest performs a two-sided t-test for two independent samples without
// assuming equal variances. Sample variances use n-1 degrees of freedom and the
// test degrees of freedom follow Welch-Satterthwaite.
//
// When the standard error is zero (both samples constant) t is ±Inf or NaN and p is NaN.
func WelchTTest(a, b []float64) (t, p float64) {
	n1, n2 := float64(len(a)), float64(len(b))
	if n1 < 2 || n2 < 2 {
		return math.NaN(), math.NaN()
	}
	m1, v1 := stat.MeanVariance(a, nil)
	m2, v2 := stat.MeanVariance(b, nil)

	s1, s2 := v1/n1, v2/n2
	se2 := s1 + s2
	t = (m1 - m2) / math.Sqrt(se2)
	if se2 == 0 || math.IsNaN(t) {
		return t, math.NaN()
	}

	df := se2 * se2 / (s1*s1/(n1-1) + s2*s2/(n2-1))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.Survival(math.Abs(t))
	if p > 1 {
		p = 1
	}
	return t, p
}
