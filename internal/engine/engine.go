// Package engine implements the rules of a single-player mine-finding game:
// board generation, reveal with flood fill, flagging and win/loss tracking.
//
// An Engine is not safe for concurrent use; callers serialize access.
package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Status is the lifecycle of one game.
type Status int

const (
	NotStarted Status = iota
	InProgress
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether no further moves are accepted.
func (s Status) Terminal() bool {
	return s == Won || s == Lost
}

// Engine owns one game session: the board, its counters and its status.
type Engine struct {
	difficulty Difficulty
	preset     Preset
	source     MineSource

	board        *Board
	active       Difficulty
	mineTotal    int
	status       Status
	flagged      int
	revealedSafe int
	elapsed      int
	exploded     *Position
}

// Option customises a new Engine.
type Option func(*Engine)

// WithMineSource replaces the random source used for mine placement.
func WithMineSource(src MineSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithSeed makes mine placement reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.source = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithDifficulty selects the preset of the first game. Unknown names fall back to Beginner.
func WithDifficulty(d Difficulty) Option {
	return func(e *Engine) {
		if p, err := PresetFor(d); err == nil {
			e.difficulty, e.preset = d, p
		}
	}
}

// New returns an engine with a fresh game ready to play.
func New(opts ...Option) *Engine {
	e := &Engine{
		difficulty: Beginner,
		preset:     presets[Beginner],
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.source == nil {
		now := uint64(time.Now().UnixNano())
		e.source = rand.New(rand.NewPCG(now, now>>17))
	}
	// Presets always validate, so the first game cannot fail.
	_ = e.NewGame()
	return e
}

// Configure selects the preset used by the next NewGame. The current board is untouched.
func (e *Engine) Configure(d Difficulty) error {
	p, err := PresetFor(d)
	if err != nil {
		return err
	}
	e.difficulty, e.preset = d, p
	return nil
}

// ConfigureCustom selects an arbitrary geometry for the next NewGame, which validates it.
func (e *Engine) ConfigureCustom(rows, cols, mines int) {
	e.difficulty = Custom
	e.preset = Preset{Rows: rows, Cols: cols, Mines: mines}
}

// NewGame replaces the board and resets every counter. On error the
// previous game is left as it was.
func (e *Engine) NewGame() error {
	if err := e.preset.validate(); err != nil {
		return err
	}
	b := newBoard(e.preset.Rows, e.preset.Cols)
	b.placeMines(e.preset.Mines, e.source)
	b.computeAdjacency()

	e.board = b
	e.active = e.difficulty
	e.mineTotal = e.preset.Mines
	e.status = NotStarted
	e.flagged = 0
	e.revealedSafe = 0
	e.elapsed = 0
	e.exploded = nil
	return nil
}

// Reveal opens the cell at (r, c). Revealed or flagged cells and finished
// games are left alone. Opening a zero cell cascades through its
// zero-count region; flags stop the cascade.
func (e *Engine) Reveal(r, c int) error {
	if err := e.checkBounds(r, c); err != nil {
		return err
	}
	if e.status.Terminal() {
		return nil
	}
	cell := e.board.at(r, c)
	if cell.IsRevealed || cell.IsFlagged {
		return nil
	}
	e.start()

	cell.IsRevealed = true
	if cell.IsMine {
		e.status = Lost
		e.exploded = &Position{Row: r, Col: c}
		e.board.revealMines()
		return nil
	}
	e.revealedSafe++
	if cell.AdjacentMines == 0 {
		e.flood(cell)
	}
	e.checkWin()
	return nil
}

func (e *Engine) flood(origin *Cell) {
	stack := []*Cell{origin}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e.board.around(cur.Row, cur.Col, func(n *Cell) {
			if n.IsRevealed || n.IsFlagged || n.IsMine {
				return
			}
			n.IsRevealed = true
			e.revealedSafe++
			if n.AdjacentMines == 0 {
				stack = append(stack, n)
			}
		})
	}
}

// ToggleFlag flips the flag on an unrevealed cell.
func (e *Engine) ToggleFlag(r, c int) error {
	if err := e.checkBounds(r, c); err != nil {
		return err
	}
	if e.status.Terminal() {
		return nil
	}
	cell := e.board.at(r, c)
	if cell.IsRevealed {
		return nil
	}
	e.start()

	cell.IsFlagged = !cell.IsFlagged
	if cell.IsFlagged {
		e.flagged++
	} else {
		e.flagged--
	}
	e.checkWin()
	return nil
}

// Tick advances the elapsed counter by one second while a game is running.
func (e *Engine) Tick() {
	if e.status == InProgress {
		e.elapsed++
	}
}

func (e *Engine) start() {
	if e.status == NotStarted {
		e.status = InProgress
	}
}

func (e *Engine) checkWin() {
	if e.status != InProgress {
		return
	}
	if e.revealedSafe == e.SafeCellCount() {
		e.status = Won
		e.board.revealMines()
	}
}

func (e *Engine) checkBounds(r, c int) error {
	if !e.board.inBounds(r, c) {
		return fmt.Errorf("%w: (%d,%d) on a %dx%d board", ErrOutOfBounds, r, c, e.board.rows, e.board.cols)
	}
	return nil
}

// Status reports where the current game is in its lifecycle.
func (e *Engine) Status() Status { return e.status }

// Elapsed is the advisory seconds counter advanced by Tick.
func (e *Engine) Elapsed() int { return e.elapsed }

// Flagged is the number of flags currently on the board.
func (e *Engine) Flagged() int { return e.flagged }

// Rows is the height of the current board.
func (e *Engine) Rows() int { return e.board.rows }

// Cols is the width of the current board.
func (e *Engine) Cols() int { return e.board.cols }

// MineTotal is the number of mines on the current board.
func (e *Engine) MineTotal() int { return e.mineTotal }

// Difficulty is the preset the current board was built from.
func (e *Engine) Difficulty() Difficulty { return e.active }

// MinesRemaining is the mine total minus placed flags. It goes negative when over-flagged.
func (e *Engine) MinesRemaining() int { return e.mineTotal - e.flagged }

// Exploded is the mine that ended a lost game, nil otherwise.
func (e *Engine) Exploded() *Position { return e.exploded }

// SafeCellCount is how many cells must be revealed to win.
func (e *Engine) SafeCellCount() int { return e.board.rows*e.board.cols - e.mineTotal }
