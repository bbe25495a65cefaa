package game

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrNoLegalMoves is a contract violation: a state reported as ongoing has no legal action.
	ErrNoLegalMoves = errors.New("no legal moves at a non-terminal state")
	// ErrIllegalAction is returned by Apply for an action outside the legal mask.
	ErrIllegalAction = errors.New("illegal action")
)

// Player identifies the side to move. The canonical mover is always First.
type Player int8

const (
	First  Player = 1
	Second Player = -1
)

func (p Player) Opponent() Player {
	return -p
}

// Result is a terminal outcome relative to a given mover.
type Result float64

const (
	Ongoing Result = 0
	Win     Result = 1
	Loss    Result = -1
	// Draw is a small non-zero magnitude so a drawn state is still terminal.
	// A draw negated for the other side (-Draw) is still a draw.
	Draw Result = 1e-4
)

func (r Result) Negate() Result {
	return -r
}

func (r Result) IsTerminal() bool {
	return r != Ongoing
}

func (r Result) IsDraw() bool {
	return math.Abs(float64(r)) == float64(Draw)
}

// Decisive reports a win or a loss.
func (r Result) Decisive() bool {
	return r == Win || r == Loss
}

// Key is the serialization of a canonical board used to index search statistics.
type Key string

// Board is a rectangular grid of signed cells. The meaning of a cell value belongs
// to the Game; the search never inspects cells.
type Board struct {
	Rows  int
	Cols  int
	Cells []int8
}

func NewBoard(rows, cols int) Board {
	return Board{Rows: rows, Cols: cols, Cells: make([]int8, rows*cols)}
}

func (b Board) Clone() Board {
	cells := make([]int8, len(b.Cells))
	copy(cells, b.Cells)
	return Board{Rows: b.Rows, Cols: b.Cols, Cells: cells}
}

func (b Board) At(row, col int) int8 {
	return b.Cells[row*b.Cols+col]
}

// Symmetry is a board and policy pair transformed by the same rule-preserving symmetry.
type Symmetry struct {
	Board  Board
	Policy []float64
}

// Game holds the pure rule functions the search and the self-play driver depend on.
type Game interface {
	InitBoard() Board
	Dims() (rows, cols int)
	ActionSize() int
	// Apply plays action for mover and returns the next board and the next mover.
	Apply(board Board, mover Player, action int) (Board, Player, error)
	LegalMask(board Board) []bool
	// TerminalResult is Ongoing, Win/Loss for mover, or Draw.
	TerminalResult(board Board, mover Player) Result
	// Canonicalize expresses board from mover's perspective so that mover plays as First.
	Canonicalize(board Board, mover Player) Board
	Symmetries(board Board, policy []float64) []Symmetry
	StateKey(board Board) Key
}

func HasLegalMove(mask []bool) bool {
	for _, legal := range mask {
		if legal {
			return true
		}
	}
	return false
}

func LegalCount(mask []bool) int {
	count := 0
	for _, legal := range mask {
		if legal {
			count++
		}
	}
	return count
}

// UniformPolicy spreads all mass evenly across legal actions.
func UniformPolicy(mask []bool) []float64 {
	policy := make([]float64, len(mask))
	count := LegalCount(mask)
	if count == 0 {
		return policy
	}
	for a, legal := range mask {
		if legal {
			policy[a] = 1.0 / float64(count)
		}
	}
	return policy
}
