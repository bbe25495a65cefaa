package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPUCT(t *testing.T) {
	t.Run("scoring an unvisited edge by prior alone", func(t *testing.T) {
		got := puct(0.5, 0.2, 9, edge{})

		require.InDelta(t, 0.5*0.2*math.Sqrt(9+epsilon), got, 1e-12,
			"Should compute c*P*sqrt(N+eps)")
	})

	t.Run("keeping a fresh state's unvisited edges apart", func(t *testing.T) {
		low := puct(0.5, 0.1, 0, edge{})
		high := puct(0.5, 0.3, 0, edge{})

		require.Greater(t, high, low, "Higher prior should win even with no parent visits")
	})

	t.Run("scoring a visited edge", func(t *testing.T) {
		got := puct(0.5, 0.2, 9, edge{visits: 2, q: 0.25})

		require.InDelta(t, 0.25+0.5*0.2*3/3, got, 1e-12,
			"Should compute Q + c*P*sqrt(N)/(1+n)")
	})

	t.Run("exploration term decreases with edge visits", func(t *testing.T) {
		score1 := puct(1, 0.5, 100, edge{visits: 1})
		score2 := puct(1, 0.5, 100, edge{visits: 10})

		require.Greater(t, score1, score2, "More edge visits should decrease exploration")
	})

	t.Run("exploitation term increases with value", func(t *testing.T) {
		score1 := puct(1, 0.5, 100, edge{visits: 10, q: -0.5})
		score2 := puct(1, 0.5, 100, edge{visits: 10, q: 0.5})

		require.Greater(t, score2, score1, "Higher value should increase the score")
	})

	t.Run("penalizing in-flight simulations as losses", func(t *testing.T) {
		plain := puct(1, 0.5, 10, edge{visits: 2, q: 0.5})
		inFlight := puct(1, 0.5, 10, edge{visits: 2, q: 0.5, virtual: 1})

		require.Less(t, inFlight, plain, "Virtual loss should lower the score")
		require.InDelta(t, (0.5*2-1)/3+0.5*math.Sqrt(10)/4, inFlight, 1e-12)
	})
}
