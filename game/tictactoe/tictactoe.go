// Package tictactoe implements n×n tic-tac-toe where a full row, column or
// diagonal of one side wins.
package tictactoe

import (
	"strings"

	"zeroplay/game"

	"github.com/pkg/errors"
)

const (
	empty  int8 = 0
	cross  int8 = int8(game.First)
	nought int8 = int8(game.Second)
)

type Game struct {
	size  int
	lines [][]int
	// Source cell of every destination cell, one permutation per symmetry.
	transforms []transform
}

func New(size int) *Game {
	if size < 1 {
		panic("board size must be positive")
	}
	return &Game{
		size:       size,
		lines:      winningLines(size),
		transforms: dihedral(size),
	}
}

func winningLines(size int) [][]int {
	lines := make([][]int, 0, 2*size+2)
	for i := 0; i < size; i++ {
		row := make([]int, size)
		col := make([]int, size)
		for j := 0; j < size; j++ {
			row[j] = i*size + j
			col[j] = j*size + i
		}
		lines = append(lines, row, col)
	}
	diagonal := make([]int, size)
	antiDiagonal := make([]int, size)
	for i := 0; i < size; i++ {
		diagonal[i] = i*size + i
		antiDiagonal[i] = i*size + size - 1 - i
	}
	return append(lines, diagonal, antiDiagonal)
}

func (g *Game) InitBoard() game.Board {
	return game.NewBoard(g.size, g.size)
}

func (g *Game) Dims() (int, int) {
	return g.size, g.size
}

func (g *Game) ActionSize() int {
	return g.size * g.size
}

func (g *Game) Apply(board game.Board, mover game.Player, action int) (game.Board, game.Player, error) {
	if action < 0 || action >= len(board.Cells) {
		return game.Board{}, mover, errors.Wrapf(game.ErrIllegalAction, "action %d out of range [0, %d)", action, len(board.Cells))
	}
	if board.Cells[action] != empty {
		return game.Board{}, mover, errors.Wrapf(game.ErrIllegalAction, "cell %d is occupied", action)
	}
	next := board.Clone()
	next.Cells[action] = int8(mover)
	return next, mover.Opponent(), nil
}

func (g *Game) LegalMask(board game.Board) []bool {
	mask := make([]bool, len(board.Cells))
	for i, cell := range board.Cells {
		mask[i] = cell == empty
	}
	return mask
}

func (g *Game) TerminalResult(board game.Board, mover game.Player) game.Result {
	for _, line := range g.lines {
		owner := board.Cells[line[0]]
		if owner == empty {
			continue
		}
		complete := true
		for _, i := range line[1:] {
			if board.Cells[i] != owner {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		if owner == int8(mover) {
			return game.Win
		}
		return game.Loss
	}
	if !game.HasLegalMove(g.LegalMask(board)) {
		return game.Draw
	}
	return game.Ongoing
}

func (g *Game) Canonicalize(board game.Board, mover game.Player) game.Board {
	canonical := board.Clone()
	for i, cell := range canonical.Cells {
		canonical.Cells[i] = cell * int8(mover)
	}
	return canonical
}

func (g *Game) Symmetries(board game.Board, policy []float64) []game.Symmetry {
	if len(policy) != g.ActionSize() {
		panic("policy length does not match the action space")
	}
	symmetries := make([]game.Symmetry, len(g.transforms))
	for i, t := range g.transforms {
		symmetries[i] = game.Symmetry{
			Board:  game.Board{Rows: board.Rows, Cols: board.Cols, Cells: t.apply8(board.Cells)},
			Policy: t.apply64(policy),
		}
	}
	return symmetries
}

// StateKey prefixes the dimensions and stores one byte per cell, so distinct boards never share a key.
func (g *Game) StateKey(board game.Board) game.Key {
	var sb strings.Builder
	sb.Grow(2 + len(board.Cells))
	sb.WriteByte(byte(board.Rows))
	sb.WriteByte(byte(board.Cols))
	for _, cell := range board.Cells {
		sb.WriteByte(byte(cell))
	}
	return game.Key(sb.String())
}

// String renders a board with X for First and O for Second.
func String(board game.Board) string {
	var sb strings.Builder
	for r := 0; r < board.Rows; r++ {
		for c := 0; c < board.Cols; c++ {
			switch board.At(r, c) {
			case cross:
				sb.WriteByte('X')
			case nought:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		if r < board.Rows-1 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}
