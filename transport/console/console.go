// Package console is the interactive rendering surface: it draws the board
// and turns typed commands into intents on the game controller.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
	"github.com/rocketscienceinc/tittactoe-client/internal/session"
)

var errQuit = errors.New("quit")

type gameController interface {
	Refresh(ctx context.Context) error
	SubmitMove(ctx context.Context, gameID entity.GameID, cell int) (string, error)
	CreateGame(ctx context.Context) (string, error)
	JoinGame(ctx context.Context, gameID entity.GameID) (string, error)
	SelectGame(ctx context.Context, gameID entity.GameID) error
	SetOnUpdate(fn func())
	Game() (entity.Game, bool)
	GameID() entity.GameID
	Phase() string
	Games(ctx context.Context) (entity.Games, error)
}

type playerFetcher interface {
	FetchPlayers(ctx context.Context, contract entity.ContractAddress, gameID entity.GameID) ([]entity.AccountAddress, error)
}

type Console struct {
	logger     *slog.Logger
	session    *session.Session
	controller gameController
	players    playerFetcher

	in  io.Reader
	out io.Writer

	handlers map[string]func(ctx context.Context, args []string) error
}

func New(logger *slog.Logger, sess *session.Session, controller gameController, players playerFetcher, in io.Reader, out io.Writer) *Console {
	console := &Console{
		logger:     logger.With("component", "console"),
		session:    sess,
		controller: controller,
		players:    players,
		in:         in,
		out:        out,

		handlers: make(map[string]func(context.Context, []string) error),
	}

	console.handlers["help"] = console.handleHelp
	console.handlers["board"] = console.handleBoard
	console.handlers["refresh"] = console.handleRefresh
	console.handlers["games"] = console.handleGames
	console.handlers["select"] = console.handleSelect
	console.handlers["create"] = console.handleCreate
	console.handlers["join"] = console.handleJoin
	console.handlers["move"] = console.handleMove
	console.handlers["players"] = console.handlePlayers
	console.handlers["account"] = console.handleAccount

	return console
}

// Run - processes commands until quit, EOF or context cancellation. Session
// changes are announced as they arrive; a missing wallet leaves the loop in
// read-only mode rather than stopping it.
func (that *Console) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	go that.announceSession(ctx)

	that.controller.SetOnUpdate(func() {
		that.printBoard()
	})

	that.printSessionBanner()
	fmt.Fprintln(that.out, `type "help" for commands`)

	scanner := bufio.NewScanner(that.in)

	for {
		fmt.Fprint(that.out, "> ")

		if !scanner.Scan() {
			return scanner.Err()
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		command := fields[0]
		if command == "quit" || command == "exit" {
			return nil
		}

		handler, ok := that.handlers[command]
		if !ok {
			fmt.Fprintf(that.out, "unknown command %q\n", command)
			continue
		}

		if err := handler(ctx, fields[1:]); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}

			log.Debug("command failed", "command", command, "error", err)
			fmt.Fprintf(that.out, "error: %v\n", err)
		}
	}
}

func (that *Console) announceSession(ctx context.Context) {
	updates := that.session.Subscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case state := <-updates:
			if state.IsConnected {
				fmt.Fprintf(that.out, "\nwallet connected: %s\n", state.Account)
			} else {
				fmt.Fprintln(that.out, "\nwallet disconnected (read-only mode)")
			}
		}
	}
}

func (that *Console) printSessionBanner() {
	state := that.session.Current()

	fmt.Fprintf(that.out, "contract %s\n", state.Contract)
	if state.IsConnected {
		fmt.Fprintf(that.out, "wallet connected: %s\n", state.Account)
	} else {
		fmt.Fprintln(that.out, "no wallet connected (read-only mode)")
	}
}

func (that *Console) printBoard() {
	game, ok := that.controller.Game()
	if !ok {
		fmt.Fprintf(that.out, "game %d is not loaded, try \"refresh\" or \"games\"\n", that.controller.GameID())
		return
	}

	fmt.Fprintf(that.out, "game %d (%s)\n", that.controller.GameID(), game.Status)
	fmt.Fprint(that.out, RenderBoard(game.Board))

	switch {
	case game.IsDraw():
		fmt.Fprintln(that.out, "draw")
	case game.IsFinished():
		fmt.Fprintf(that.out, "winner: %s\n", game.Winner.Glyph())
	case game.IsOngoing():
		fmt.Fprintf(that.out, "turn: %s\n", game.Turn.Glyph())
	default:
		fmt.Fprintln(that.out, "awaiting opponent")
	}
}

func (that *Console) handleHelp(_ context.Context, _ []string) error {
	fmt.Fprintln(that.out, "commands:")
	fmt.Fprintln(that.out, "  refresh          fetch the latest state from the contract")
	fmt.Fprintln(that.out, "  board            show the selected game")
	fmt.Fprintln(that.out, "  games            list games from the last fetch")
	fmt.Fprintln(that.out, "  select <id>      pick which game to follow")
	fmt.Fprintln(that.out, "  create           open a new game")
	fmt.Fprintln(that.out, "  join <id>        join an awaiting game")
	fmt.Fprintln(that.out, "  move <cell>      place your mark on cell 0-8")
	fmt.Fprintln(that.out, "  players [id]     show the joined accounts")
	fmt.Fprintln(that.out, "  account          show the connected account")
	fmt.Fprintln(that.out, "  quit             leave")
	return nil
}

func (that *Console) handleBoard(_ context.Context, _ []string) error {
	that.printBoard()
	return nil
}

// handleRefresh prints nothing on success: the controller's update hook
// redraws the board. On failure the previous board stays valid but stale.
func (that *Console) handleRefresh(ctx context.Context, _ []string) error {
	if err := that.controller.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh failed, showing last known state: %w", err)
	}
	return nil
}

func (that *Console) handleGames(ctx context.Context, _ []string) error {
	games, err := that.controller.Games(ctx)
	if err != nil {
		return err
	}

	if len(games) == 0 {
		fmt.Fprintln(that.out, "no games fetched yet")
		return nil
	}

	ids := make([]entity.GameID, 0, len(games))
	for id := range games {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		game := games[id]
		fmt.Fprintf(that.out, "  %d: %s", id, game.Status)
		if game.IsFinished() && !game.IsDraw() {
			fmt.Fprintf(that.out, " (winner %s)", game.Winner.Glyph())
		}
		fmt.Fprintln(that.out)
	}

	return nil
}

func (that *Console) handleSelect(ctx context.Context, args []string) error {
	gameID, err := parseGameID(args)
	if err != nil {
		return err
	}

	if err = that.controller.SelectGame(ctx, gameID); err != nil {
		return err
	}

	that.printBoard()

	return nil
}

func (that *Console) handleCreate(ctx context.Context, _ []string) error {
	hash, err := that.controller.CreateGame(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(that.out, "create_game submitted: %s\n", hash)
	fmt.Fprintln(that.out, `the new game appears on the next "refresh"`)

	return nil
}

func (that *Console) handleJoin(ctx context.Context, args []string) error {
	gameID, err := parseGameID(args)
	if err != nil {
		return err
	}

	hash, err := that.controller.JoinGame(ctx, gameID)
	if err != nil {
		return err
	}

	fmt.Fprintf(that.out, "join_game submitted: %s\n", hash)

	return nil
}

// handleMove forwards the click intent. The board is not updated locally;
// the contract's answer arrives with the next refresh.
func (that *Console) handleMove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: move <cell>")
	}

	cell, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid cell %q: %w", args[0], err)
	}

	hash, err := that.controller.SubmitMove(ctx, that.controller.GameID(), cell)
	if err != nil {
		return err
	}

	fmt.Fprintf(that.out, "make_move submitted: %s\n", hash)

	return nil
}

func (that *Console) handlePlayers(ctx context.Context, args []string) error {
	if that.players == nil {
		return errors.New("player lookup needs a wallet connection")
	}

	gameID := that.controller.GameID()
	if len(args) == 1 {
		parsed, err := parseGameID(args)
		if err != nil {
			return err
		}
		gameID = parsed
	}

	players, err := that.players.FetchPlayers(ctx, that.session.Current().Contract, gameID)
	if err != nil {
		return err
	}

	marks := []string{"X", "O"}
	for i, player := range players {
		mark := "?"
		if i < len(marks) {
			mark = marks[i]
		}
		fmt.Fprintf(that.out, "  %s: %s\n", mark, player)
	}

	return nil
}

func (that *Console) handleAccount(_ context.Context, _ []string) error {
	that.printSessionBanner()
	return nil
}

func parseGameID(args []string) (entity.GameID, error) {
	if len(args) != 1 {
		return 0, errors.New("usage: <command> <game id>")
	}

	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid game id %q: %w", args[0], err)
	}

	return entity.GameID(id), nil
}
