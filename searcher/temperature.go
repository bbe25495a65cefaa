package searcher

import (
	"math"

	"golang.org/x/exp/rand"
)

// distribution turns visit counts into action probabilities. Temperature 0 puts
// all mass on one most visited action, ties broken by r.
func distribution(counts []float64, temperature float64, r *rand.Rand) []float64 {
	probs := make([]float64, len(counts))

	maxCount := 0.0
	for _, c := range counts {
		maxCount = math.Max(maxCount, c)
	}
	if maxCount == 0 {
		return probs
	}

	if temperature == 0 {
		best := []int{}
		for a, c := range counts {
			if c == maxCount {
				best = append(best, a)
			}
		}
		probs[best[r.Intn(len(best))]] = 1
		return probs
	}

	// (N/maxN)^(1/T) is proportional to N^(1/T) and cannot overflow
	exponent := 1.0 / temperature
	sum := 0.0
	for a, c := range counts {
		if c > 0 {
			probs[a] = math.Pow(c/maxCount, exponent)
			sum += probs[a]
		}
	}
	for a := range probs {
		probs[a] /= sum
	}
	return probs
}
