package game_test

import (
	"context"
	"encoding/binary"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tittactoe-client/internal/chain"
	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
	"github.com/rocketscienceinc/tittactoe-client/internal/game"
	"github.com/rocketscienceinc/tittactoe-client/internal/repository"
	"github.com/rocketscienceinc/tittactoe-client/internal/session"
	"github.com/rocketscienceinc/tittactoe-client/internal/wallet"
	"github.com/rocketscienceinc/tittactoe-client/testing/suite"
)

var integrationContract = entity.ContractAddress{Index: 81, Subindex: 0}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ongoingGamePayload encodes one in-progress game with an empty board and
// cross to move, the way the contract's view entrypoint serializes it.
func ongoingGamePayload() []byte {
	var cross, circle [entity.AccountAddressLength]byte
	cross[0], circle[0] = 0x11, 0x22

	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, 1)

	gameID := make([]byte, 8)
	raw = append(raw, gameID...) // game id 0

	raw = append(raw, 1, 0) // in progress, cross to move
	raw = append(raw, cross[:]...)
	raw = append(raw, make([]byte, entity.BoardSize)...) // nine empty cells
	raw = append(raw, 0)
	raw = append(raw, cross[:]...)
	raw = append(raw, 1, 1)
	raw = append(raw, circle[:]...)

	return raw
}

// Scenario: provider absent. The session stays disconnected and the client
// remains usable in read-only mode.
func TestClient_ProviderAbsent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sess := session.New(integrationContract)
	tracker := wallet.NewTracker(testLogger(), sess, "ws://127.0.0.1:1/wallet")

	// When: the tracker initializes against nothing
	tracker.Initialize(ctx)

	// Then: disconnected, no account
	state := sess.Current()
	require.False(t, state.IsConnected)
	assert.Empty(t, state.Account)
	assert.Nil(t, tracker.Provider())
}

// Scenario: provider present with a selected account; the contract answers
// the view call with an empty in-progress board.
func TestClient_RefreshThroughBridge(t *testing.T) {
	ctx, st := suite.New(t)

	st.SetAccount("4abc")
	st.SetInvoke(func(req wallet.InvokeRequest) wallet.InvokeResult {
		if req.Method != "tictactoe.view" {
			return wallet.InvokeResult{Tag: wallet.TagFailure, Reason: "wrong entrypoint"}
		}
		return wallet.InvokeResult{Tag: wallet.TagSuccess, ReturnValue: ongoingGamePayload()}
	})

	sess := session.New(integrationContract)
	tracker := wallet.NewTracker(testLogger(), sess, st.Addr)
	tracker.Initialize(ctx)

	provider := tracker.Provider()
	require.NotNil(t, provider)
	defer provider.Close()

	// Given: the session picked up the selected account
	state := sess.Current()
	require.True(t, state.IsConnected)
	require.Equal(t, "4abc", state.Account)

	fetcher := chain.NewFetcher(st.Logger, provider.Transport(), "tictactoe")
	controller := game.NewController(st.Logger, sess, fetcher, provider.Transport(), repository.NewGameRepository(), "tictactoe")

	// When: the state is refreshed through the real bridge
	require.NoError(t, controller.Refresh(ctx))

	// Then: an all-empty board with cross to move is loaded
	loaded, ok := controller.Game()
	require.True(t, ok)
	assert.Equal(t, [entity.BoardSize]entity.Cell{}, loaded.Board)
	assert.Equal(t, entity.CellCross, loaded.Turn)
	assert.Equal(t, entity.StatusOngoing, loaded.Status)

	// When: a move is submitted for cell 4
	_, err := controller.SubmitMove(ctx, 0, 4)
	require.NoError(t, err)

	// Then: the board did not change locally; only a refresh may change it
	unchanged, ok := controller.Game()
	require.True(t, ok)
	assert.Equal(t, loaded, unchanged)

	updates := st.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, "tictactoe.make_move", updates[0].Method)
	assert.Equal(t, "4abc", updates[0].Sender)
}
