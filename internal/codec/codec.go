// Package codec implements the contract's binary state schema: little-endian
// integers, one-byte enum tags, one-byte option prefixes and fixed 32-byte
// account addresses.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
)

var (
	ErrTruncated     = errors.New("unexpected end of payload")
	ErrTrailingBytes = errors.New("trailing bytes after payload")
	ErrUnknownTag    = errors.New("unknown enum tag")
)

const (
	tagStateAwaiting   = 0
	tagStateInProgress = 1
	tagStateFinished   = 2

	tagCellEmpty    = 0
	tagCellOccupied = 1

	tagPlayerCross  = 0
	tagPlayerCircle = 1
)

// DecodeViewState - decodes the return value of the contract's view entrypoint:
// a u32 length followed by (game id, game) pairs.
func DecodeViewState(payload []byte) (entity.Games, error) {
	r := bytes.NewReader(payload)

	count, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read game count: %w", err)
	}

	games := make(entity.Games, count)
	for i := uint32(0); i < count; i++ {
		id, err := readUint64(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read game id: %w", err)
		}

		game, err := decodeGame(r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode game %d: %w", id, err)
		}

		games[entity.GameID(id)] = game
	}

	if r.Len() != 0 {
		return nil, ErrTrailingBytes
	}

	return games, nil
}

// decodeGame - fields in schema order: state, board, cross, circle.
func decodeGame(r *bytes.Reader) (entity.Game, error) {
	var game entity.Game

	tag, err := r.ReadByte()
	if err != nil {
		return game, ErrTruncated
	}

	switch tag {
	case tagStateAwaiting:
		game.Status = entity.StatusWaiting
	case tagStateInProgress:
		turn, _, err := decodePlayer(r)
		if err != nil {
			return game, fmt.Errorf("failed to decode turn player: %w", err)
		}
		game.Status = entity.StatusOngoing
		game.Turn = turn
	case tagStateFinished:
		winner, _, ok, err := decodeOptionPlayer(r)
		if err != nil {
			return game, fmt.Errorf("failed to decode winner: %w", err)
		}
		game.Status = entity.StatusFinished
		if ok {
			game.Winner = winner
		}
	default:
		return game, fmt.Errorf("%w: game state %d", ErrUnknownTag, tag)
	}

	for i := range game.Board {
		cell, err := decodeCell(r)
		if err != nil {
			return game, fmt.Errorf("failed to decode cell %d: %w", i, err)
		}
		game.Board[i] = cell
	}

	_, cross, err := decodePlayer(r)
	if err != nil {
		return game, fmt.Errorf("failed to decode cross player: %w", err)
	}
	game.Cross = cross

	_, circle, ok, err := decodeOptionPlayer(r)
	if err != nil {
		return game, fmt.Errorf("failed to decode circle player: %w", err)
	}
	if ok {
		game.Circle = &circle
	}

	return game, nil
}

func decodeCell(r *bytes.Reader) (entity.Cell, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return entity.CellEmpty, ErrTruncated
	}

	switch tag {
	case tagCellEmpty:
		return entity.CellEmpty, nil
	case tagCellOccupied:
		mark, _, err := decodePlayer(r)
		if err != nil {
			return entity.CellEmpty, err
		}
		return mark, nil
	default:
		return entity.CellEmpty, fmt.Errorf("%w: cell %d", ErrUnknownTag, tag)
	}
}

func decodePlayer(r *bytes.Reader) (entity.Cell, entity.AccountAddress, error) {
	var addr entity.AccountAddress

	tag, err := r.ReadByte()
	if err != nil {
		return entity.CellEmpty, addr, ErrTruncated
	}

	var mark entity.Cell
	switch tag {
	case tagPlayerCross:
		mark = entity.CellCross
	case tagPlayerCircle:
		mark = entity.CellCircle
	default:
		return entity.CellEmpty, addr, fmt.Errorf("%w: player %d", ErrUnknownTag, tag)
	}

	if _, err = io.ReadFull(r, addr[:]); err != nil {
		return entity.CellEmpty, addr, ErrTruncated
	}

	return mark, addr, nil
}

func decodeOptionPlayer(r *bytes.Reader) (entity.Cell, entity.AccountAddress, bool, error) {
	var addr entity.AccountAddress

	tag, err := r.ReadByte()
	if err != nil {
		return entity.CellEmpty, addr, false, ErrTruncated
	}

	switch tag {
	case 0:
		return entity.CellEmpty, addr, false, nil
	case 1:
		mark, decoded, err := decodePlayer(r)
		if err != nil {
			return entity.CellEmpty, addr, false, err
		}
		return mark, decoded, true, nil
	default:
		return entity.CellEmpty, addr, false, fmt.Errorf("%w: option %d", ErrUnknownTag, tag)
	}
}

func readUint32(r *bytes.Reader) (uint32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func readUint64(r *bytes.Reader) (uint64, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint64(buf), nil
}
