package types

// Cell states as seen by a player.
const (
	CellHidden   = "hidden"
	CellFlagged  = "flagged"
	CellRevealed = "revealed"
)

type CellState struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	State     string `json:"state"`
	Mine      bool   `json:"mine,omitempty"`
	Count     int    `json:"count,omitempty"`
	Exploded  bool   `json:"exploded,omitempty"`
	WrongFlag bool   `json:"wrongFlag,omitempty"`
}

type GameSnapshot struct {
	Difficulty     string        `json:"difficulty"`
	Rows           int           `json:"rows"`
	Cols           int           `json:"cols"`
	Mines          int           `json:"mines"`
	MinesRemaining int           `json:"minesRemaining"`
	Status         string        `json:"status"`
	Elapsed        int           `json:"elapsed"`
	GameOver       bool          `json:"gameOver"`
	Won            bool          `json:"won"`
	Cells          [][]CellState `json:"cells"`
}

// Action is one websocket command from a client.
type Action struct {
	Action     string `json:"action"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Difficulty string `json:"difficulty,omitempty"`
}

type CoordRequest struct {
	Row *int `json:"row" form:"row" binding:"required"`
	Col *int `json:"col" form:"col" binding:"required"`
}

type NewGameRequest struct {
	Difficulty string `json:"difficulty" form:"difficulty"`
}
