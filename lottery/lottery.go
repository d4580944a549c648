// Package lottery draws session participants from the applicant pool.
package lottery

import (
	"math"
	"sort"
)

// Source yields uniform floats in [0, 1).
type Source interface {
	Float64() float64
}

// Weighted draws min(k, len(candidates)) distinct winners without replacement.
// Candidates for which isPremium returns true are weight times more likely to
// be drawn than the others. The input slice is never modified.
func Weighted[T any](candidates []T, k int, weight float64, rng Source, isPremium func(T) bool) []T {
	pool := make([]T, len(candidates))
	copy(pool, candidates)
	if k >= len(pool) {
		return pool
	}
	if k <= 0 {
		return []T{}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return isPremium(pool[i]) && !isPremium(pool[j])
	})

	premium := 0
	for _, c := range pool {
		if isPremium(c) {
			premium++
		}
	}
	remaining := len(pool)

	winners := make([]T, 0, k)
	for i := 0; i < k; i++ {
		idx := int(math.Floor(inverseCDF(weight, premium, remaining, rng.Float64())))
		if idx >= remaining {
			idx = remaining - 1
		}
		if idx < 0 {
			idx = 0
		}
		if idx < premium {
			premium--
		}
		remaining--
		winners = append(winners, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return winners
}

// inverseCDF maps u in [0,1) onto [0, b). The premium range [0, a) receives
// w*a/(w*a + b - a) of the mass, the rest is spread uniformly over [a, b).
func inverseCDF(w float64, a, b int, u float64) float64 {
	fa, fb := float64(a), float64(b)
	if a == 0 || a == b {
		return u * fb
	}
	t := 1 / (fa*(w-1) + fb)
	atw := fa * t * w
	if u < atw {
		return u / (t * w)
	}
	return (fb-fa)*(u-atw)/(1-atw) + fa
}
