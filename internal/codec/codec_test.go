package codec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
)

// payload builds view-state bytes the way the contract serializes them.
type payload []byte

func (p payload) u32(v uint32) payload {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return append(p, buf...)
}

func (p payload) u64(v uint64) payload {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return append(p, buf...)
}

func (p payload) byte(b byte) payload {
	return append(p, b)
}

func (p payload) player(tag byte, addr entity.AccountAddress) payload {
	return append(append(p, tag), addr[:]...)
}

func (p payload) emptyBoard() payload {
	for i := 0; i < entity.BoardSize; i++ {
		p = append(p, tagCellEmpty)
	}
	return p
}

func crossAddr() entity.AccountAddress {
	var addr entity.AccountAddress
	addr[0] = 0x11
	return addr
}

func circleAddr() entity.AccountAddress {
	var addr entity.AccountAddress
	addr[0] = 0x22
	return addr
}

func TestDecodeViewState(t *testing.T) {
	t.Run("Awaiting game with empty board", func(t *testing.T) {
		// Given: one game, state awaiting, nine empty cells, cross only
		raw := payload{}.
			u32(1).
			u64(7).
			byte(tagStateAwaiting).
			emptyBoard().
			player(tagPlayerCross, crossAddr()).
			byte(0) // no circle yet

		// When: the payload is decoded
		games, err := DecodeViewState(raw)

		// Then: the game comes out waiting with an untouched board
		require.NoError(t, err)
		require.Len(t, games, 1)

		game, ok := games[entity.GameID(7)]
		require.True(t, ok)
		assert.Equal(t, entity.StatusWaiting, game.Status)
		assert.Equal(t, [entity.BoardSize]entity.Cell{}, game.Board)
		assert.Equal(t, crossAddr(), game.Cross)
		assert.Nil(t, game.Circle)
	})

	t.Run("In progress with occupied cells", func(t *testing.T) {
		// Given: an in-progress game, circle to move, cross on cell 4
		raw := payload{}.
			u32(1).
			u64(0).
			byte(tagStateInProgress).
			player(tagPlayerCircle, circleAddr())
		for i := 0; i < entity.BoardSize; i++ {
			if i == 4 {
				raw = raw.byte(tagCellOccupied).player(tagPlayerCross, crossAddr())
				continue
			}
			raw = raw.byte(tagCellEmpty)
		}
		raw = raw.
			player(tagPlayerCross, crossAddr()).
			byte(1).player(tagPlayerCircle, circleAddr())

		// When: the payload is decoded
		games, err := DecodeViewState(raw)

		// Then: turn, board occupancy and both players are reflected
		require.NoError(t, err)
		game := games[entity.GameID(0)]
		assert.Equal(t, entity.StatusOngoing, game.Status)
		assert.Equal(t, entity.CellCircle, game.Turn)
		assert.Equal(t, entity.CellCross, game.Board[4])
		require.NotNil(t, game.Circle)
		assert.Equal(t, circleAddr(), *game.Circle)
	})

	t.Run("Finished draw", func(t *testing.T) {
		// Given: a finished game with no winner
		raw := payload{}.
			u32(1).
			u64(3).
			byte(tagStateFinished).
			byte(0). // None
			emptyBoard().
			player(tagPlayerCross, crossAddr()).
			byte(0)

		// When: the payload is decoded
		games, err := DecodeViewState(raw)

		// Then: the game is a draw
		require.NoError(t, err)
		game := games[entity.GameID(3)]
		require.True(t, game.IsDraw())
	})

	t.Run("Finished with winner", func(t *testing.T) {
		// Given: a finished game won by circle
		raw := payload{}.
			u32(1).
			u64(3).
			byte(tagStateFinished).
			byte(1).player(tagPlayerCircle, circleAddr()).
			emptyBoard().
			player(tagPlayerCross, crossAddr()).
			byte(1).player(tagPlayerCircle, circleAddr())

		// When: the payload is decoded
		games, err := DecodeViewState(raw)

		// Then: circle is the winner
		require.NoError(t, err)
		game := games[entity.GameID(3)]
		require.True(t, game.IsFinished())
		assert.Equal(t, entity.CellCircle, game.Winner)
	})

	t.Run("Empty view", func(t *testing.T) {
		// Given: a view with no games
		raw := payload{}.u32(0)

		// When: the payload is decoded
		games, err := DecodeViewState(raw)

		// Then: an empty map, no error
		require.NoError(t, err)
		assert.Empty(t, games)
	})

	t.Run("Truncated payload", func(t *testing.T) {
		// Given: a payload cut off inside the first game
		raw := payload{}.u32(1).u64(7).byte(tagStateAwaiting)

		// When: the payload is decoded
		_, err := DecodeViewState(raw)

		// Then: a truncation error
		require.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("Trailing bytes", func(t *testing.T) {
		// Given: a valid empty view followed by garbage
		raw := payload{}.u32(0).byte(0xff)

		// When: the payload is decoded
		_, err := DecodeViewState(raw)

		// Then: trailing bytes are rejected
		require.ErrorIs(t, err, ErrTrailingBytes)
	})

	t.Run("Unknown state tag", func(t *testing.T) {
		// Given: a game with an impossible state tag
		raw := payload{}.u32(1).u64(0).byte(9)

		// When: the payload is decoded
		_, err := DecodeViewState(raw)

		// Then: the tag is rejected
		require.ErrorIs(t, err, ErrUnknownTag)
	})
}

func TestDecodeGameView(t *testing.T) {
	t.Run("Packed in-progress game", func(t *testing.T) {
		// Given: cross to move, X on cell 0, O on cell 4
		bits := uint32(packedTurnCross)
		bits |= 1 << 4       // cell 0 = X
		bits |= 2 << (4 + 8) // cell 4 = O

		raw := payload{}.u32(bits)

		// When: the compact view is decoded
		game, err := DecodeGameView(raw)

		// Then: the board and turn match
		require.NoError(t, err)
		assert.Equal(t, entity.StatusOngoing, game.Status)
		assert.Equal(t, entity.CellCross, game.Turn)
		assert.Equal(t, entity.CellCross, game.Board[0])
		assert.Equal(t, entity.CellCircle, game.Board[4])
	})

	t.Run("Packed winner", func(t *testing.T) {
		// Given: circle won
		game, err := DecodePackedGame(packedWonCircle)

		// Then: finished with circle as winner
		require.NoError(t, err)
		assert.True(t, game.IsFinished())
		assert.Equal(t, entity.CellCircle, game.Winner)
	})

	t.Run("Wrong length", func(t *testing.T) {
		// When: the return value is not four bytes
		_, err := DecodeGameView([]byte{1, 2})

		// Then: a truncation error
		require.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("Bad status bits", func(t *testing.T) {
		// When: the low nibble holds an unknown status
		_, err := DecodePackedGame(0xf)

		// Then: the packed state is rejected
		require.ErrorIs(t, err, ErrBadPackedState)
	})
}

func TestDecodePlayers(t *testing.T) {
	t.Run("Two players", func(t *testing.T) {
		// Given: two concatenated 32-byte addresses
		cross, circle := crossAddr(), circleAddr()
		raw := append(append([]byte{}, cross[:]...), circle[:]...)

		// When: the payload is decoded
		players, err := DecodePlayers(raw)

		// Then: both addresses decode in order
		require.NoError(t, err)
		require.Len(t, players, 2)
		assert.Equal(t, crossAddr(), players[0])
		assert.Equal(t, circleAddr(), players[1])
	})

	t.Run("Ragged length", func(t *testing.T) {
		// When: the payload is not a whole number of addresses
		_, err := DecodePlayers(make([]byte, 33))

		// Then: it is rejected
		require.ErrorIs(t, err, ErrTruncated)
	})
}

func TestEncodeParams(t *testing.T) {
	// Given: a game id and a move
	join := EncodeJoinParams(entity.GameID(258))
	move := EncodeMoveParams(entity.GameID(1), 8)

	// Then: little-endian u64 fields in declaration order
	require.Equal(t, []byte{2, 1, 0, 0, 0, 0, 0, 0}, join)
	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0}, move)
}
