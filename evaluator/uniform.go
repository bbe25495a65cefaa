package evaluator

import (
	"context"

	"zeroplay/game"
)

// Uniform predicts a uniform policy over legal actions and a neutral value.
type Uniform struct {
	Game game.Game
}

func NewUniform(g game.Game) Uniform {
	return Uniform{Game: g}
}

func (u Uniform) Predict(board game.Board) ([]float64, float64, error) {
	return game.UniformPolicy(u.Game.LegalMask(board)), 0, nil
}

func (u Uniform) Train(ctx context.Context, examples []Example) error {
	return ctx.Err()
}

func (u Uniform) Snapshot() Evaluator {
	return u
}
