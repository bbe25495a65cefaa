package selfplay

import (
	"zeroplay/evaluator"
	"zeroplay/game"
	"zeroplay/metrics"
)

type step struct {
	board  game.Board // Canonical for mover
	mover  game.Player
	policy []float64
}

// Episode is a finished self-play game.
type Episode struct {
	Steps    int
	Examples []evaluator.Example
	// Result is the terminal outcome for FinalPlayer, the player who would move next.
	Result      game.Result
	FinalPlayer game.Player
	// Winner is 0 for a draw.
	Winner             game.Player
	Moves              []metrics.MoveMetric
	DegeneratePolicies int64
}

// finalize labels every step with the result seen by the player who acted at it.
func (d *Driver) finalize(steps []step, final game.Player, result game.Result) *Episode {
	episode := &Episode{
		Steps:       len(steps),
		Result:      result,
		FinalPlayer: final,
	}
	switch result {
	case game.Win:
		episode.Winner = final
	case game.Loss:
		episode.Winner = final.Opponent()
	}

	for _, s := range steps {
		outcome := result
		if s.mover != final {
			outcome = result.Negate()
		}
		if !d.symmetries {
			episode.Examples = append(episode.Examples, evaluator.Example{Board: s.board, Policy: s.policy, Outcome: float64(outcome)})
			continue
		}
		for _, sym := range d.game.Symmetries(s.board, s.policy) {
			episode.Examples = append(episode.Examples, evaluator.Example{Board: sym.Board, Policy: sym.Policy, Outcome: float64(outcome)})
		}
	}
	return episode
}
