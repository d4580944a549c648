package lottery

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applicant struct {
	id      int
	premium bool
}

func isPremium(a applicant) bool { return a.premium }

func pool(normal, premium int) []applicant {
	out := make([]applicant, 0, normal+premium)
	for i := 0; i < normal; i++ {
		out = append(out, applicant{id: len(out)})
	}
	for i := 0; i < premium; i++ {
		out = append(out, applicant{id: len(out), premium: true})
	}
	return out
}

func TestWeightedReturnsDistinctWinners(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	candidates := pool(12, 5)
	for k := 0; k <= len(candidates); k++ {
		winners := Weighted(candidates, k, 3, rng, isPremium)
		require.Len(t, winners, k)

		seen := map[int]bool{}
		for _, w := range winners {
			assert.False(t, seen[w.id], "duplicate winner %d", w.id)
			seen[w.id] = true
			assert.Less(t, w.id, len(candidates))
		}
	}
}

func TestWeightedReturnsAllWhenKExceedsPool(t *testing.T) {
	candidates := pool(3, 2)
	winners := Weighted(candidates, 10, 5, rand.New(rand.NewSource(1)), isPremium)
	assert.Equal(t, candidates, winners)

	winners[0].id = 99
	assert.Equal(t, 0, candidates[0].id, "input must not be aliased")
}

func TestWeightedEmptyPool(t *testing.T) {
	winners := Weighted([]applicant{}, 3, 2, rand.New(rand.NewSource(1)), isPremium)
	assert.Empty(t, winners)
}

func TestWeightedAllPremiumOrNone(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	assert.Len(t, Weighted(pool(0, 6), 4, 3, rng, isPremium), 4)
	assert.Len(t, Weighted(pool(6, 0), 4, 3, rng, isPremium), 4)
}

func TestWeightedPremiumRateMatchesWeight(t *testing.T) {
	const trials = 20000
	for _, w := range []float64{1, 3} {
		rng := rand.New(rand.NewSource(11))
		hits := 0
		for i := 0; i < trials; i++ {
			winners := Weighted(pool(8, 2), 1, w, rng, isPremium)
			if winners[0].premium {
				hits++
			}
		}
		want := w * 2 / (w*2 + 8)
		got := float64(hits) / trials
		assert.InDelta(t, want, got, 0.02, "weight %v", w)
	}
}

func TestWeightedDeterministicForSeed(t *testing.T) {
	candidates := pool(8, 2)
	first := Weighted(candidates, 2, 3, rand.New(rand.NewSource(2525)), isPremium)
	for i := 0; i < 5; i++ {
		again := Weighted(candidates, 2, 3, rand.New(rand.NewSource(2525)), isPremium)
		assert.Equal(t, first, again)
	}
	require.Len(t, first, 2)
	assert.NotEqual(t, first[0].id, first[1].id)
}

func TestInverseCDFStaysInRange(t *testing.T) {
	for a := 0; a <= 5; a++ {
		for _, u := range []float64{0, 0.25, 0.5, 0.999999} {
			got := inverseCDF(4, a, 5, u)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.Less(t, got, 5.0)
		}
	}
}
