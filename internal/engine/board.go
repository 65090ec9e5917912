package engine

import (
	"github.com/samber/lo"
)

// Position addresses one cell, 0-indexed from the top-left corner.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Cell is one grid square.
type Cell struct {
	Row           int
	Col           int
	IsMine        bool
	IsRevealed    bool
	IsFlagged     bool
	AdjacentMines int
}

// Board is a rows x cols grid. A new Board is built for every game.
type Board struct {
	rows  int
	cols  int
	cells [][]Cell
}

// MineSource picks uniformly in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type MineSource interface {
	IntN(n int) int
}

func newBoard(rows, cols int) *Board {
	cells := lo.Times(rows, func(r int) []Cell {
		return lo.Times(cols, func(c int) Cell {
			return Cell{Row: r, Col: c}
		})
	})
	return &Board{rows: rows, cols: cols, cells: cells}
}

func (b *Board) inBounds(r, c int) bool {
	return r >= 0 && r < b.rows && c >= 0 && c < b.cols
}

func (b *Board) at(r, c int) *Cell {
	return &b.cells[r][c]
}

// around calls fn for every in-bounds neighbour of (r, c), excluding itself.
func (b *Board) around(r, c int, fn func(n *Cell)) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			nr, nc := r+dr, c+dc
			if b.inBounds(nr, nc) {
				fn(b.at(nr, nc))
			}
		}
	}
}

// placeMines drops count mines by rejection sampling: pick a random cell,
// keep it if it is still empty. Callers guarantee count < rows*cols.
func (b *Board) placeMines(count int, src MineSource) {
	placed := 0
	for placed < count {
		cell := b.at(src.IntN(b.rows), src.IntN(b.cols))
		if cell.IsMine {
			continue
		}
		cell.IsMine = true
		placed++
	}
}

func (b *Board) computeAdjacency() {
	for r := range b.rows {
		for c := range b.cols {
			cell := b.at(r, c)
			if cell.IsMine {
				continue
			}
			count := 0
			b.around(r, c, func(n *Cell) {
				if n.IsMine {
					count++
				}
			})
			cell.AdjacentMines = count
		}
	}
}

func (b *Board) all() []*Cell {
	return lo.FlatMap(b.cells, func(row []Cell, _ int) []*Cell {
		return lo.Map(row, func(_ Cell, c int) *Cell { return &row[c] })
	})
}

func (b *Board) mines() []*Cell {
	return lo.Filter(b.all(), func(c *Cell, _ int) bool { return c.IsMine })
}

func (b *Board) revealMines() {
	lo.ForEach(b.mines(), func(c *Cell, _ int) {
		c.IsRevealed = true
	})
}
