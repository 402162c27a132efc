// Package stats implements the rank-based grader comparison used by the
// moderation pass. The two-sample test is deliberately non-parametric:
// per-grader sample sizes are small and neither scores nor word counts are
// reliably Gaussian.
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrDegenerateSamples indicates a comparison with too few or incomparable
// values, e.g. an empty group or zero rank variance.
var ErrDegenerateSamples = errors.New("degenerate samples")

// exactLimit is the largest per-group size for which the exact null
// distribution is used. Larger (or tied) samples use the normal approximation
// with tie and continuity corrections.
const exactLimit = 8

// MannWhitneyU runs a two-sided Mann-Whitney U test of x against y and
// returns x's U statistic and the p-value.
func MannWhitneyU(x, y []float64) (u, p float64, err error) {
	n1, n2 := len(x), len(y)
	if n1 == 0 || n2 == 0 {
		return 0, 0, ErrDegenerateSamples
	}

	ranks, tieTerm, tied := rank(x, y)

	r1 := 0.0
	for i := 0; i < n1; i++ {
		r1 += ranks[i]
	}

	u1 := r1 - float64(n1)*float64(n1+1)/2
	u2 := float64(n1)*float64(n2) - u1

	if !tied && n1 <= exactLimit && n2 <= exactLimit {
		p = exactP(n1, n2, int(math.Min(u1, u2)))
		return u1, p, nil
	}

	n := float64(n1 + n2)
	mu := float64(n1) * float64(n2) / 2
	variance := float64(n1) * float64(n2) / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if variance <= 0 {
		return 0, 0, ErrDegenerateSamples
	}

	// Continuity correction, matching scipy's default.
	z := (math.Max(u1, u2) - mu - 0.5) / math.Sqrt(variance)
	p = 2 * distuv.UnitNormal.Survival(z)
	if p > 1 {
		p = 1
	}

	return u1, p, nil
}

// rank assigns midranks to the concatenation of x and y, returning the ranks
// in input order (x first), the tie-correction term sum(t^3-t), and whether
// any ties occurred.
func rank(x, y []float64) (ranks []float64, tieTerm float64, tied bool) {
	n := len(x) + len(y)
	values := make([]float64, 0, n)
	values = append(values, x...)
	values = append(values, y...)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// Midrank of positions i..j (1-based ranks).
		mid := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = mid
		}
		if j > i {
			tied = true
			t := float64(j - i + 1)
			tieTerm += t*t*t - t
		}
		i = j + 1
	}

	return ranks, tieTerm, tied
}

// exactP computes the exact two-sided p-value for the smaller U under the
// null distribution of untied ranks: p = min(1, 2*P(U <= u)).
func exactP(n1, n2, u int) float64 {
	maxU := n1 * n2
	if u < 0 {
		u = 0
	}
	if u > maxU {
		u = maxU
	}

	// ways[i][j][k]: rank arrangements of i and j items with U statistic k.
	ways := make([][][]float64, n1+1)
	for i := 0; i <= n1; i++ {
		ways[i] = make([][]float64, n2+1)
		for j := 0; j <= n2; j++ {
			ways[i][j] = make([]float64, maxU+1)
		}
	}
	for j := 0; j <= n2; j++ {
		ways[0][j][0] = 1
	}
	for i := 1; i <= n1; i++ {
		ways[i][0][0] = 1
		for j := 1; j <= n2; j++ {
			for k := 0; k <= maxU; k++ {
				v := ways[i][j-1][k]
				if k >= j {
					v += ways[i-1][j][k-j]
				}
				ways[i][j][k] = v
			}
		}
	}

	total := 0.0
	cumulative := 0.0
	for k := 0; k <= maxU; k++ {
		total += ways[n1][n2][k]
		if k <= u {
			cumulative += ways[n1][n2][k]
		}
	}

	p := 2 * cumulative / total
	if p > 1 {
		p = 1
	}

	return p
}

// Median returns the median of values, averaging the middle pair for even
// counts. values is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
