package console

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
)

// RenderBoard - pure presentation of the nine-cell board as a 3x3 grid.
// Empty cells show their index so the player can pick a move target.
func RenderBoard(board [entity.BoardSize]entity.Cell) string {
	var b strings.Builder

	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			idx := row*3 + col

			mark := board[idx].Glyph()
			if board[idx] == entity.CellEmpty {
				mark = fmt.Sprintf("%d", idx)
			}

			b.WriteString(" " + mark + " ")
			if col < 2 {
				b.WriteString("|")
			}
		}

		b.WriteString("\n")
		if row < 2 {
			b.WriteString("---+---+---\n")
		}
	}

	return b.String()
}
