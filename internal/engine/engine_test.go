package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed values so tests control where mines land.
type scriptedSource struct {
	vals []int
	next int
}

func (s *scriptedSource) IntN(n int) int {
	v := s.vals[s.next%len(s.vals)] % n
	s.next++
	return v
}

// newLayout builds an engine whose current board has mines exactly at the given positions.
func newLayout(t *testing.T, rows, cols int, mines ...Position) *Engine {
	t.Helper()
	e := New(WithSeed(1))
	vals := make([]int, 0, len(mines)*2)
	for _, m := range mines {
		vals = append(vals, m.Row, m.Col)
	}
	if len(vals) == 0 {
		vals = []int{0}
	}
	e.source = &scriptedSource{vals: vals}
	e.ConfigureCustom(rows, cols, len(mines))
	require.NoError(t, e.NewGame())
	return e
}

func revealedCount(e *Engine) int {
	n := 0
	for _, c := range e.board.all() {
		if c.IsRevealed {
			n++
		}
	}
	return n
}

func TestNew_StartsBeginnerGame(t *testing.T) {
	e := New(WithSeed(7))
	assert.Equal(t, Beginner, e.Difficulty())
	assert.Equal(t, 9, e.Rows())
	assert.Equal(t, 9, e.Cols())
	assert.Equal(t, 10, e.MineTotal())
	assert.Equal(t, NotStarted, e.Status())
	assert.Equal(t, 10, e.MinesRemaining())
	assert.Equal(t, 0, e.Elapsed())
}

func TestWithDifficulty_UnknownFallsBack(t *testing.T) {
	e := New(WithSeed(7), WithDifficulty("nightmare"))
	assert.Equal(t, Beginner, e.Difficulty())

	e = New(WithSeed(7), WithDifficulty(Expert))
	assert.Equal(t, 16, e.Rows())
	assert.Equal(t, 30, e.Cols())
	assert.Equal(t, 99, e.MineTotal())
}

func TestConfigure_DoesNotResetBoard(t *testing.T) {
	e := New(WithSeed(3))
	require.NoError(t, e.Reveal(0, 0))
	before := e.Status()

	require.NoError(t, e.Configure(Intermediate))
	assert.Equal(t, 9, e.Rows(), "board must keep its geometry until NewGame")
	assert.Equal(t, 10, e.MineTotal())
	assert.Equal(t, before, e.Status())

	require.NoError(t, e.NewGame())
	assert.Equal(t, 16, e.Rows())
	assert.Equal(t, 40, e.MineTotal())
	assert.Equal(t, Intermediate, e.Difficulty())
	assert.Equal(t, NotStarted, e.Status())
}

func TestConfigure_UnknownDifficulty(t *testing.T) {
	e := New(WithSeed(3))
	err := e.Configure("impossible")
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, Beginner, e.Difficulty())
}

func TestNewGame_RejectsOverfullBoard(t *testing.T) {
	e := New(WithSeed(3))
	require.NoError(t, e.ToggleFlag(1, 1))

	cases := []struct {
		name              string
		rows, cols, mines int
	}{
		{"mines equal cells", 2, 2, 4},
		{"mines exceed cells", 2, 2, 9},
		{"zero rows", 0, 5, 1},
		{"negative mines", 3, 3, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e.ConfigureCustom(tc.rows, tc.cols, tc.mines)
			err := e.NewGame()
			require.ErrorIs(t, err, ErrConfiguration)
			// previous game survives a failed reset
			assert.Equal(t, 9, e.Rows())
			assert.Equal(t, InProgress, e.Status())
			assert.Equal(t, 1, e.Flagged())
		})
	}
}

func TestNewGame_ResetsCounters(t *testing.T) {
	e := New(WithSeed(11))
	require.NoError(t, e.ToggleFlag(0, 0))
	e.Tick()
	e.Tick()
	require.Equal(t, 2, e.Elapsed())

	require.NoError(t, e.NewGame())
	assert.Equal(t, NotStarted, e.Status())
	assert.Equal(t, 0, e.Elapsed())
	assert.Equal(t, 0, e.Flagged())
	assert.Equal(t, 0, e.revealedSafe)
	assert.Nil(t, e.Exploded())
	assert.Zero(t, revealedCount(e))
}

func TestOutOfBounds(t *testing.T) {
	e := New(WithSeed(5))
	coords := [][2]int{{-1, 0}, {0, -1}, {9, 0}, {0, 9}, {100, 100}}
	for _, rc := range coords {
		require.ErrorIs(t, e.Reveal(rc[0], rc[1]), ErrOutOfBounds)
		require.ErrorIs(t, e.ToggleFlag(rc[0], rc[1]), ErrOutOfBounds)
		_, err := e.CellView(rc[0], rc[1])
		require.ErrorIs(t, err, ErrOutOfBounds)
	}
	assert.Equal(t, NotStarted, e.Status())
}

func TestRevealIsIdempotent(t *testing.T) {
	e := newLayout(t, 3, 3, Position{0, 0}, Position{2, 2})
	require.NoError(t, e.Reveal(2, 0))
	require.Equal(t, InProgress, e.Status())
	require.Equal(t, 4, e.revealedSafe)
	first := e.Views()
	firstCount := e.revealedSafe

	require.NoError(t, e.Reveal(2, 0))
	assert.Equal(t, first, e.Views())
	assert.Equal(t, firstCount, e.revealedSafe)
}

func TestFloodFill_RevealsRegionAndBorder(t *testing.T) {
	// Single mine in the corner: everything but its three neighbours is zero.
	e := newLayout(t, 5, 5, Position{4, 4})
	require.NoError(t, e.ToggleFlag(2, 2))
	require.NoError(t, e.Reveal(0, 0))

	for r := range 5 {
		for c := range 5 {
			v, err := e.CellView(r, c)
			require.NoError(t, err)
			switch {
			case r == 4 && c == 4:
				assert.False(t, v.IsRevealed, "mine must stay hidden")
			case r == 2 && c == 2:
				assert.False(t, v.IsRevealed, "flagged cell must not be auto-revealed")
				assert.True(t, v.IsFlagged)
			default:
				assert.True(t, v.IsRevealed, "(%d,%d) should be revealed", r, c)
			}
		}
	}
	for _, p := range []Position{{3, 3}, {3, 4}, {4, 3}} {
		v, _ := e.CellView(p.Row, p.Col)
		assert.Equal(t, 1, v.AdjacentMines, "border cell %v", p)
	}
	assert.Equal(t, InProgress, e.Status())
	assert.Equal(t, 23, e.revealedSafe)
}

func TestFloodFill_FlagIsBarrier(t *testing.T) {
	// 1x5 strip: [0 0 0 1 *]
	e := newLayout(t, 1, 5, Position{0, 4})
	require.NoError(t, e.ToggleFlag(0, 1))
	require.NoError(t, e.Reveal(0, 0))

	assert.Equal(t, 1, e.revealedSafe)
	for c := 1; c < 4; c++ {
		v, _ := e.CellView(0, c)
		assert.False(t, v.IsRevealed, "cell %d is behind the flag", c)
	}

	require.NoError(t, e.ToggleFlag(0, 1))
	require.NoError(t, e.Reveal(0, 1))
	assert.Equal(t, Won, e.Status())
}

func TestReveal_NumberedCellDoesNotCascade(t *testing.T) {
	e := newLayout(t, 3, 3, Position{0, 0})
	require.NoError(t, e.Reveal(1, 1))
	assert.Equal(t, 1, revealedCount(e))
	v, _ := e.CellView(1, 1)
	assert.Equal(t, 1, v.AdjacentMines)
}

func TestTwoByTwoScenario(t *testing.T) {
	e := newLayout(t, 2, 2, Position{0, 0})

	require.NoError(t, e.Reveal(1, 1))
	v, err := e.CellView(1, 1)
	require.NoError(t, err)
	assert.True(t, v.IsRevealed)
	assert.Equal(t, 1, v.AdjacentMines)
	assert.Equal(t, 1, revealedCount(e), "a numbered cell must not cascade")
	assert.Equal(t, InProgress, e.Status())

	require.NoError(t, e.Reveal(0, 1))
	assert.Equal(t, InProgress, e.Status())
	require.NoError(t, e.Reveal(1, 0))
	assert.Equal(t, Won, e.Status())

	mine, _ := e.CellView(0, 0)
	assert.True(t, mine.IsRevealed, "mines are shown after a win")
	assert.True(t, mine.IsMine)
	assert.False(t, mine.Exploded)
}

func TestWin_BeginnerBoard(t *testing.T) {
	e := New(WithSeed(2024))
	require.Equal(t, 81, e.Rows()*e.Cols())

	for _, c := range e.board.all() {
		if c.IsMine {
			continue
		}
		require.NoError(t, e.Reveal(c.Row, c.Col))
	}
	assert.Equal(t, Won, e.Status())
	assert.Equal(t, 71, e.revealedSafe)
	for _, m := range e.board.mines() {
		v, _ := e.CellView(m.Row, m.Col)
		assert.True(t, v.IsRevealed)
	}
}

func TestWin_IgnoresFlags(t *testing.T) {
	// 1x3 strip: [1 * 1]. The mine never needs a flag.
	e := newLayout(t, 1, 3, Position{0, 1})
	require.NoError(t, e.ToggleFlag(0, 0))
	require.NoError(t, e.ToggleFlag(0, 0))
	require.NoError(t, e.Reveal(0, 0))
	assert.Equal(t, InProgress, e.Status())
	require.NoError(t, e.Reveal(0, 2))
	assert.Equal(t, Won, e.Status())
	assert.Equal(t, 1, e.MinesRemaining(), "mine was never flagged")
}

func TestLoss_RevealsEveryMine(t *testing.T) {
	e := newLayout(t, 4, 4, Position{0, 0}, Position{3, 3}, Position{1, 2})
	require.NoError(t, e.ToggleFlag(3, 3))
	require.NoError(t, e.ToggleFlag(2, 0))
	require.NoError(t, e.Reveal(1, 2))

	assert.Equal(t, Lost, e.Status())
	require.NotNil(t, e.Exploded())
	assert.Equal(t, Position{1, 2}, *e.Exploded())

	for _, p := range []Position{{0, 0}, {3, 3}, {1, 2}} {
		v, err := e.CellView(p.Row, p.Col)
		require.NoError(t, err)
		assert.True(t, v.IsRevealed, "mine %v", p)
		assert.True(t, v.IsMine)
	}
	flagged, _ := e.CellView(3, 3)
	assert.True(t, flagged.IsFlagged, "flags are left alone when mines are shown")
	assert.False(t, flagged.WrongFlag)

	wrong, _ := e.CellView(2, 0)
	assert.True(t, wrong.WrongFlag)
	assert.False(t, wrong.IsRevealed)

	boom, _ := e.CellView(1, 2)
	assert.True(t, boom.Exploded)
}

func TestTerminal_IgnoresFurtherInput(t *testing.T) {
	e := newLayout(t, 3, 3, Position{0, 0})
	require.NoError(t, e.Reveal(0, 0))
	require.Equal(t, Lost, e.Status())
	before := e.Views()

	require.NoError(t, e.Reveal(2, 2))
	require.NoError(t, e.ToggleFlag(2, 2))
	e.Tick()

	assert.Equal(t, before, e.Views())
	assert.Equal(t, Lost, e.Status())
	assert.Equal(t, 0, e.Flagged())
	assert.Equal(t, 0, e.Elapsed())
}

func TestFlagAndRevealExclusion(t *testing.T) {
	e := newLayout(t, 3, 3, Position{0, 0})

	require.NoError(t, e.ToggleFlag(2, 2))
	require.NoError(t, e.Reveal(2, 2))
	v, _ := e.CellView(2, 2)
	assert.False(t, v.IsRevealed, "reveal on a flagged cell is a no-op")
	assert.True(t, v.IsFlagged)

	require.NoError(t, e.Reveal(1, 1))
	require.NoError(t, e.ToggleFlag(1, 1))
	v, _ = e.CellView(1, 1)
	assert.True(t, v.IsRevealed)
	assert.False(t, v.IsFlagged, "flag on a revealed cell is a no-op")
	assert.Equal(t, 1, e.Flagged())
}

func TestMinesRemaining_GoesNegative(t *testing.T) {
	e := New(WithSeed(9))
	k := 0
	for _, c := range e.board.all() {
		if k == 12 {
			break
		}
		require.NoError(t, e.ToggleFlag(c.Row, c.Col))
		k++
	}
	assert.Equal(t, 10-12, e.MinesRemaining())

	require.NoError(t, e.ToggleFlag(0, 0))
	assert.Equal(t, 10-11, e.MinesRemaining())
}

func TestStatusTransitions(t *testing.T) {
	e := newLayout(t, 3, 3, Position{0, 0})
	assert.Equal(t, NotStarted, e.Status())

	require.NoError(t, e.ToggleFlag(0, 0))
	assert.Equal(t, InProgress, e.Status(), "a flag starts the game")

	e = newLayout(t, 3, 3, Position{0, 0})
	require.NoError(t, e.Reveal(1, 1))
	assert.Equal(t, InProgress, e.Status())
}

func TestTick_CountsOnlyWhileInProgress(t *testing.T) {
	e := newLayout(t, 3, 3, Position{0, 0})
	e.Tick()
	assert.Equal(t, 0, e.Elapsed())

	require.NoError(t, e.Reveal(1, 1))
	e.Tick()
	e.Tick()
	assert.Equal(t, 2, e.Elapsed())

	require.NoError(t, e.Reveal(0, 0))
	e.Tick()
	assert.Equal(t, 2, e.Elapsed())
}

func TestCellView_HidesUnrevealedData(t *testing.T) {
	e := newLayout(t, 3, 3, Position{0, 0})
	for _, row := range e.Views() {
		for _, v := range row {
			assert.False(t, v.IsMine, "(%d,%d) leaks mine", v.Row, v.Col)
			assert.Zero(t, v.AdjacentMines, "(%d,%d) leaks count", v.Row, v.Col)
		}
	}

	require.NoError(t, e.Reveal(1, 1))
	hidden, _ := e.CellView(0, 0)
	assert.False(t, hidden.IsMine)
	shown, _ := e.CellView(1, 1)
	assert.Equal(t, 1, shown.AdjacentMines)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "not_started", NotStarted.String())
	assert.Equal(t, "in_progress", InProgress.String())
	assert.Equal(t, "won", Won.String())
	assert.Equal(t, "lost", Lost.String())
	assert.Equal(t, "status(9)", Status(9).String())
	assert.True(t, Won.Terminal())
	assert.False(t, InProgress.Terminal())
}
