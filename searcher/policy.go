package searcher

import "math"

// puct scores an edge: Q(s,a) + c*P(s,a)*sqrt(N(s))/(1+N(s,a)) once visited,
// c*P(s,a)*sqrt(N(s)+eps) before. In-flight simulations count as visits that lost.
func puct(c float64, prior float64, parentVisits float64, e edge) float64 {
	n := e.visits + e.virtual
	if n == 0 {
		return c * prior * math.Sqrt(parentVisits+epsilon)
	}

	q := e.q
	if e.virtual > 0 {
		q = (e.q*float64(e.visits) - float64(e.virtual)) / float64(n)
	}
	return q + c*prior*math.Sqrt(parentVisits)/float64(1+n)
}
