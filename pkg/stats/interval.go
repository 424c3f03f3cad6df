package stats

import "math"

// z975 is the upper 97.5% quantile of the standard normal distribution,
// fixing interval confidence at 95%.
const z975 = 1.959963984540054

// Proportion is a binomial success rate with its confidence bounds.
type Proportion struct {
	Rate  float64 `json:"rate" yaml:"rate"`
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Wilson returns the 95% Wilson-score interval for successes out of total.
// ok is false when total is zero: an empty sample has no defined rate.
func Wilson(successes, total int) (Proportion, bool) {
	if total == 0 {
		return Proportion{}, false
	}
	n := float64(total)
	p := float64(successes) / n
	z2 := z975 * z975
	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	margin := z975 * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / denom

	lower := center - margin
	upper := center + margin
	if lower < 0 {
		lower = 0
	}
	if upper > 1 {
		upper = 1
	}
	return Proportion{Rate: p, Lower: lower, Upper: upper}, true
}

// Rate divides successes by total, zero when the sample is empty.
func Rate(successes, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(successes) / float64(total)
}
