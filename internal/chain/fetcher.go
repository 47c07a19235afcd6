// Package chain performs read-only view invocations against the game
// contract and decodes their results.
package chain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tittactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tittactoe-client/internal/codec"
	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
	"github.com/rocketscienceinc/tittactoe-client/internal/wallet"
)

// Fetcher issues view calls through the session's transport. Calls are
// read-only and idempotent; each one is self-contained.
type Fetcher struct {
	logger       *slog.Logger
	transport    wallet.ContractTransport
	contractName string
}

func NewFetcher(logger *slog.Logger, transport wallet.ContractTransport, contractName string) *Fetcher {
	return &Fetcher{
		logger:       logger.With("component", "fetcher"),
		transport:    transport,
		contractName: contractName,
	}
}

// FetchState - invokes the contract's view entrypoint and decodes the full
// games map. A transport error, a failure tag, a missing result or a missing
// return value all collapse into the one uniform state-unavailable error.
func (that *Fetcher) FetchState(ctx context.Context, contract entity.ContractAddress) (entity.Games, error) {
	payload, err := that.invoke(ctx, contract, that.contractName+".view", nil)
	if err != nil {
		return nil, err
	}

	games, err := codec.DecodeViewState(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode view state: %w", err)
	}

	return games, nil
}

// FetchGame - invokes the compact single-game view. The result carries the
// board and status only, no player addresses.
func (that *Fetcher) FetchGame(ctx context.Context, contract entity.ContractAddress, gameID entity.GameID) (*entity.Game, error) {
	payload, err := that.invoke(ctx, contract, that.contractName+".game_view", codec.EncodeJoinParams(gameID))
	if err != nil {
		return nil, err
	}

	game, err := codec.DecodeGameView(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode game view: %w", err)
	}

	return &game, nil
}

// FetchPlayers - returns the joined players' account addresses, cross first.
func (that *Fetcher) FetchPlayers(ctx context.Context, contract entity.ContractAddress, gameID entity.GameID) ([]entity.AccountAddress, error) {
	payload, err := that.invoke(ctx, contract, that.contractName+".game_view_players", codec.EncodeJoinParams(gameID))
	if err != nil {
		return nil, err
	}

	players, err := codec.DecodePlayers(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode players: %w", err)
	}

	return players, nil
}

func (that *Fetcher) invoke(ctx context.Context, contract entity.ContractAddress, method string, parameter []byte) ([]byte, error) {
	log := that.logger.With("method", "invoke")

	result, err := that.transport.InvokeContract(ctx, wallet.InvokeRequest{
		Method:    method,
		Contract:  contract,
		Parameter: parameter,
	})
	if err != nil {
		log.Error("contract invocation failed", "entrypoint", method, "error", err)
		return nil, fmt.Errorf("%w: %s", apperror.ErrStateUnavailable, err)
	}

	if result == nil || result.Tag != wallet.TagSuccess {
		reason := "no result"
		if result != nil {
			reason = result.Reason
		}
		log.Error("contract invocation rejected", "entrypoint", method, "reason", reason)

		return nil, fmt.Errorf("%w: %s rejected", apperror.ErrStateUnavailable, method)
	}

	if len(result.ReturnValue) == 0 {
		return nil, fmt.Errorf("%w: %s returned no value", apperror.ErrStateUnavailable, method)
	}

	return result.ReturnValue, nil
}
