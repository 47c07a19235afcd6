// Package game owns the client-side view of one selected on-chain game and
// mediates refresh and move-submission intents.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tittactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tittactoe-client/internal/codec"
	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
	"github.com/rocketscienceinc/tittactoe-client/internal/repository"
	"github.com/rocketscienceinc/tittactoe-client/internal/session"
	"github.com/rocketscienceinc/tittactoe-client/internal/wallet"
)

// Phases of the client-side state machine. Terminal game outcomes are fields
// of entity.Game, not phases: a finished game is still "loaded".
const (
	PhaseUnloaded = "unloaded"
	PhaseLoading  = "loading"
	PhaseLoaded   = "loaded"
	PhaseError    = "error"
)

type stateFetcher interface {
	FetchState(ctx context.Context, contract entity.ContractAddress) (entity.Games, error)
}

type updateSubmitter interface {
	SubmitUpdate(ctx context.Context, req wallet.UpdateRequest) (string, error)
}

type Controller struct {
	logger       *slog.Logger
	session      *session.Session
	fetcher      stateFetcher
	submitter    updateSubmitter
	games        repository.GameRepository
	contractName string

	mu       sync.Mutex
	gameID   entity.GameID
	current  *entity.Game
	phase    string
	lastErr  error
	onUpdate func()
}

func NewController(logger *slog.Logger, sess *session.Session, fetcher stateFetcher, submitter updateSubmitter, games repository.GameRepository, contractName string) *Controller {
	return &Controller{
		logger:       logger.With("component", "game-controller"),
		session:      sess,
		fetcher:      fetcher,
		submitter:    submitter,
		games:        games,
		contractName: contractName,
		phase:        PhaseUnloaded,
	}
}

// SetOnUpdate registers the renderer hook signaled after each successful
// refresh.
func (that *Controller) SetOnUpdate(fn func()) {
	that.mu.Lock()
	that.onUpdate = fn
	that.mu.Unlock()
}

// Refresh - fetches the authoritative state and replaces the owned game
// wholesale. On failure the previously held state stays untouched and the
// error is surfaced; there is no automatic retry. Overlapping calls are
// last-write-wins.
func (that *Controller) Refresh(ctx context.Context) error {
	log := that.logger.With("method", "Refresh")

	if that.fetcher == nil {
		return apperror.ErrProviderUnavailable
	}

	that.mu.Lock()
	that.phase = PhaseLoading
	that.mu.Unlock()

	snapshot := that.session.Current()

	games, err := that.fetcher.FetchState(ctx, snapshot.Contract)
	if err != nil {
		that.mu.Lock()
		that.phase = PhaseError
		that.lastErr = err
		that.mu.Unlock()

		log.Error("refresh failed", "contract", snapshot.Contract, "error", err)

		return fmt.Errorf("failed to refresh game state: %w", err)
	}

	if err = that.games.Replace(ctx, games); err != nil {
		that.mu.Lock()
		that.phase = PhaseError
		that.lastErr = err
		that.mu.Unlock()

		return fmt.Errorf("failed to store game state: %w", err)
	}

	that.mu.Lock()
	that.resolveCurrent(games)
	that.phase = PhaseLoaded
	that.lastErr = nil
	notify := that.onUpdate
	that.mu.Unlock()

	log.Debug("game state refreshed", "games", len(games))

	if notify != nil {
		notify()
	}

	return nil
}

// resolveCurrent re-selects the owned game from a fresh snapshot. Caller
// holds the mutex.
func (that *Controller) resolveCurrent(games entity.Games) {
	if game, ok := games[that.gameID]; ok {
		that.current = &game
		return
	}
	that.current = nil
}

// SubmitMove - dispatches a move intent for the given cell. The board is not
// changed locally; the displayed state only moves on a later successful
// Refresh.
func (that *Controller) SubmitMove(ctx context.Context, gameID entity.GameID, cell int) (string, error) {
	if cell < 0 || cell >= entity.BoardSize {
		return "", fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	return that.submit(ctx, that.contractName+".make_move", codec.EncodeMoveParams(gameID, uint64(cell)))
}

// CreateGame - asks the contract to open a new game with the connected
// account as cross.
func (that *Controller) CreateGame(ctx context.Context) (string, error) {
	return that.submit(ctx, that.contractName+".create_game", nil)
}

// JoinGame - joins an awaiting game as circle.
func (that *Controller) JoinGame(ctx context.Context, gameID entity.GameID) (string, error) {
	return that.submit(ctx, that.contractName+".join_game", codec.EncodeJoinParams(gameID))
}

func (that *Controller) submit(ctx context.Context, method string, parameter []byte) (string, error) {
	log := that.logger.With("method", "submit")

	if that.submitter == nil {
		return "", apperror.ErrProviderUnavailable
	}

	snapshot := that.session.Current()
	if !snapshot.IsConnected {
		return "", apperror.ErrNotConnected
	}

	hash, err := that.submitter.SubmitUpdate(ctx, wallet.UpdateRequest{
		Method:    method,
		Contract:  snapshot.Contract,
		Parameter: parameter,
		Sender:    snapshot.Account,
	})
	if err != nil {
		return "", fmt.Errorf("failed to submit %s: %w", method, err)
	}

	log.Info("transaction submitted", "entrypoint", method, "hash", hash)

	return hash, nil
}

// SelectGame - switches the owned game to another id from the last fetch.
func (that *Controller) SelectGame(ctx context.Context, gameID entity.GameID) error {
	that.mu.Lock()
	that.gameID = gameID
	that.mu.Unlock()

	game, err := that.games.GetByID(ctx, gameID)

	that.mu.Lock()
	that.current = game
	that.mu.Unlock()

	return err
}

// Game returns a copy of the owned game state, and whether one is loaded.
func (that *Controller) Game() (entity.Game, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.current == nil {
		return entity.Game{}, false
	}

	return *that.current, true
}

func (that *Controller) GameID() entity.GameID {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.gameID
}

func (that *Controller) Phase() string {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.phase
}

// LastError returns the error from the most recent failed refresh, if the
// controller is in the error phase.
func (that *Controller) LastError() error {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.lastErr
}

// Games lists every game from the last successful fetch.
func (that *Controller) Games(ctx context.Context) (entity.Games, error) {
	return that.games.All(ctx)
}
