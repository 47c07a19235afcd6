package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
)

var ErrBadPackedState = errors.New("unknown packed game state")

// Packed game_view status values, stored in the low four bits.
const (
	packedAwaiting   = 0
	packedTurnCross  = 1
	packedTurnCircle = 2
	packedDraw       = 3
	packedWonCross   = 4
	packedWonCircle  = 5
)

// DecodeGameView - decodes the u32 returned by the contract's game_view
// entrypoint: status in the low four bits, then two bits per cell starting at
// bit four. Player addresses are not part of this compact view.
func DecodeGameView(payload []byte) (entity.Game, error) {
	var game entity.Game

	if len(payload) != 4 {
		return game, fmt.Errorf("%w: got %d bytes, want 4", ErrTruncated, len(payload))
	}

	return DecodePackedGame(binary.LittleEndian.Uint32(payload))
}

func DecodePackedGame(bits uint32) (entity.Game, error) {
	var game entity.Game

	switch bits & 0xf {
	case packedAwaiting:
		game.Status = entity.StatusWaiting
	case packedTurnCross:
		game.Status = entity.StatusOngoing
		game.Turn = entity.CellCross
	case packedTurnCircle:
		game.Status = entity.StatusOngoing
		game.Turn = entity.CellCircle
	case packedDraw:
		game.Status = entity.StatusFinished
	case packedWonCross:
		game.Status = entity.StatusFinished
		game.Winner = entity.CellCross
	case packedWonCircle:
		game.Status = entity.StatusFinished
		game.Winner = entity.CellCircle
	default:
		return game, fmt.Errorf("%w: %d", ErrBadPackedState, bits&0xf)
	}

	for i := range game.Board {
		switch (bits >> (4 + 2*i)) & 0x3 {
		case 0:
			game.Board[i] = entity.CellEmpty
		case 1:
			game.Board[i] = entity.CellCross
		case 2:
			game.Board[i] = entity.CellCircle
		default:
			return game, fmt.Errorf("%w: cell %d", ErrBadPackedState, i)
		}
	}

	return game, nil
}

// DecodePlayers - decodes the game_view_players return value: one 32-byte
// address per joined player, in cross then circle order.
func DecodePlayers(payload []byte) ([]entity.AccountAddress, error) {
	if len(payload)%entity.AccountAddressLength != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of addresses", ErrTruncated, len(payload))
	}

	players := make([]entity.AccountAddress, 0, len(payload)/entity.AccountAddressLength)
	for off := 0; off < len(payload); off += entity.AccountAddressLength {
		var addr entity.AccountAddress
		copy(addr[:], payload[off:off+entity.AccountAddressLength])
		players = append(players, addr)
	}

	return players, nil
}

// EncodeJoinParams - the parameter for join_game and the single-game views.
func EncodeJoinParams(gameID entity.GameID) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(gameID))
	return buf
}

// EncodeMoveParams - the parameter for make_move.
func EncodeMoveParams(gameID entity.GameID, cell uint64) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[:8], uint64(gameID))
	binary.LittleEndian.PutUint64(buf[8:], cell)
	return buf
}
