package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"minludo/internal/engine"
	"minludo/internal/types"
)

// snapshotOf converts the engine's player-visible state into the wire/template shape.
func snapshotOf(e *engine.Engine) types.GameSnapshot {
	status := e.Status()
	return types.GameSnapshot{
		Difficulty:     string(e.Difficulty()),
		Rows:           e.Rows(),
		Cols:           e.Cols(),
		Mines:          e.MineTotal(),
		MinesRemaining: e.MinesRemaining(),
		Status:         status.String(),
		Elapsed:        e.Elapsed(),
		GameOver:       status.Terminal(),
		Won:            status == engine.Won,
		Cells: lo.Map(e.Views(), func(row []engine.CellView, _ int) []types.CellState {
			return lo.Map(row, func(v engine.CellView, _ int) types.CellState {
				return cellStateOf(v)
			})
		}),
	}
}

func cellStateOf(v engine.CellView) types.CellState {
	cs := types.CellState{
		Row:       v.Row,
		Col:       v.Col,
		Mine:      v.IsMine,
		Count:     v.AdjacentMines,
		Exploded:  v.Exploded,
		WrongFlag: v.WrongFlag,
	}
	switch {
	case v.IsRevealed:
		cs.State = types.CellRevealed
	case v.IsFlagged:
		cs.State = types.CellFlagged
	default:
		cs.State = types.CellHidden
	}
	return cs
}

// cellClass lists the CSS classes for one cell of the board.
func cellClass(cs types.CellState) string {
	classes := []string{"cell"}
	switch cs.State {
	case types.CellRevealed:
		classes = append(classes, "revealed")
		if cs.Mine {
			classes = append(classes, "mine")
		} else if cs.Count > 0 {
			classes = append(classes, fmt.Sprintf("num%d", cs.Count))
		}
	case types.CellFlagged:
		classes = append(classes, "flag")
	}
	if cs.Exploded {
		classes = append(classes, "exploded")
	}
	if cs.WrongFlag {
		classes = append(classes, "wrong")
	}
	return strings.Join(classes, " ")
}

// cellLabel is the text drawn inside a cell.
func cellLabel(cs types.CellState) string {
	switch {
	case cs.WrongFlag:
		return "✗"
	case cs.State == types.CellFlagged:
		return "⚑"
	case cs.State != types.CellRevealed:
		return ""
	case cs.Mine:
		return "✹"
	case cs.Count > 0:
		return strconv.Itoa(cs.Count)
	default:
		return ""
	}
}
