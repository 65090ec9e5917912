package engine

import "github.com/samber/lo"

// CellView is what a presentation layer may know about a cell. Mine and
// count data is only filled in once the cell is revealed or the game is over.
type CellView struct {
	Row           int
	Col           int
	IsRevealed    bool
	IsFlagged     bool
	IsMine        bool
	AdjacentMines int
	Exploded      bool
	WrongFlag     bool
}

// CellView returns the visible state of (r, c).
func (e *Engine) CellView(r, c int) (CellView, error) {
	if err := e.checkBounds(r, c); err != nil {
		return CellView{}, err
	}
	return e.view(e.board.at(r, c)), nil
}

// Views returns the visible state of the whole board, row by row.
func (e *Engine) Views() [][]CellView {
	return lo.Map(e.board.cells, func(row []Cell, _ int) []CellView {
		return lo.Map(row, func(_ Cell, c int) CellView {
			return e.view(&row[c])
		})
	})
}

func (e *Engine) view(cell *Cell) CellView {
	v := CellView{
		Row:        cell.Row,
		Col:        cell.Col,
		IsRevealed: cell.IsRevealed,
		IsFlagged:  cell.IsFlagged,
	}
	over := e.status.Terminal()
	if cell.IsRevealed || over {
		v.IsMine = cell.IsMine
	}
	if cell.IsRevealed && !cell.IsMine {
		v.AdjacentMines = cell.AdjacentMines
	}
	if e.exploded != nil && e.exploded.Row == cell.Row && e.exploded.Col == cell.Col {
		v.Exploded = true
	}
	if e.status == Lost && cell.IsFlagged && !cell.IsMine {
		v.WrongFlag = true
	}
	return v
}
