package entity

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

// Cell is the occupancy of one board position.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellCross
	CellCircle
)

// Glyph - renders the cell as the mark shown on the board.
func (that Cell) Glyph() string {
	switch that {
	case CellCross:
		return "X"
	case CellCircle:
		return "O"
	default:
		return " "
	}
}

// GameID identifies one game among the games hosted by a single contract instance.
type GameID uint64

// BoardSize is the number of cells; index 0 is top-left, row-major.
const BoardSize = 9

// Game is the client's view of one on-chain game. It is replaced wholesale on every
// successful fetch; the contract is the only source of truth.
type Game struct {
	Status string
	Board  [BoardSize]Cell
	Turn   Cell
	Winner Cell
	Cross  AccountAddress
	Circle *AccountAddress
}

// Games is the full multi-game view returned by the contract.
type Games map[GameID]Game

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

// IsDraw - a finished game with no winner is a draw.
func (that *Game) IsDraw() bool {
	return that.IsFinished() && that.Winner == CellEmpty
}
