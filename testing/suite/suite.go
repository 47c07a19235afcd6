// Package suite spins up an in-process fake wallet bridge for integration
// tests: a websocket endpoint that answers account queries and contract
// calls with scripted results and can push account notifications.
package suite

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tittactoe-client/internal/wallet"
)

const maxWaitDuration = 120 * time.Second

// TransactionHash is returned for every accepted transaction submission.
var TransactionHash = strings.Repeat("ab", 32)

// message mirrors the bridge wire format.
type message struct {
	Action  string          `json:"action"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Suite struct {
	*testing.T
	Logger *slog.Logger

	// Addr is the websocket address wallet.Detect should dial.
	Addr string

	mu        sync.Mutex
	conn      *websocket.Conn
	connReady chan struct{}
	account   string
	invoke    func(req wallet.InvokeRequest) wallet.InvokeResult
	updates   []wallet.UpdateRequest
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(func() {
		cancel()
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	st := &Suite{
		T:         t,
		Logger:    logger,
		connReady: make(chan struct{}),
		invoke: func(_ wallet.InvokeRequest) wallet.InvokeResult {
			return wallet.InvokeResult{Tag: wallet.TagFailure, Reason: "no invoke result scripted"}
		},
	}

	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("could not upgrade bridge connection: %v", err)
			return
		}

		st.mu.Lock()
		st.conn = conn
		st.mu.Unlock()
		close(st.connReady)

		st.serve(conn)
	}))

	t.Cleanup(server.Close)

	st.Addr = "ws" + strings.TrimPrefix(server.URL, "http") + "/wallet"

	return ctx, st
}

// SetAccount scripts the answer to the most-recently-selected-account query.
// An empty account means no account is selected.
func (that *Suite) SetAccount(account string) {
	that.mu.Lock()
	that.account = account
	that.mu.Unlock()
}

// SetInvoke scripts contract invocations.
func (that *Suite) SetInvoke(fn func(req wallet.InvokeRequest) wallet.InvokeResult) {
	that.mu.Lock()
	that.invoke = fn
	that.mu.Unlock()
}

// Updates returns every submitted transaction so far.
func (that *Suite) Updates() []wallet.UpdateRequest {
	that.mu.Lock()
	defer that.mu.Unlock()
	return append([]wallet.UpdateRequest(nil), that.updates...)
}

func (that *Suite) NotifyAccountChanged(account string) {
	that.notify("account:changed", account)
}

func (that *Suite) NotifyAccountDisconnected(account string) {
	that.notify("account:disconnected", account)
}

func (that *Suite) notify(action, account string) {
	that.Helper()

	select {
	case <-that.connReady:
	case <-time.After(maxWaitDuration):
		that.Fatalf("no client connected to the fake bridge")
	}

	payload, _ := json.Marshal(map[string]string{"account": account})
	that.write(message{Action: action, Payload: payload})
}

func (that *Suite) write(msg message) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.conn.WriteJSON(msg); err != nil {
		that.Logf("fake bridge write failed: %v", err)
	}
}

func (that *Suite) serve(conn *websocket.Conn) {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Action {
		case "account:get":
			that.mu.Lock()
			account := that.account
			that.mu.Unlock()

			payload, _ := json.Marshal(map[string]string{"account": account})
			that.write(message{Action: msg.Action, ID: msg.ID, Payload: payload})
		case "contract:invoke":
			var req wallet.InvokeRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				that.Errorf("bad invoke payload: %v", err)
				continue
			}

			that.mu.Lock()
			result := that.invoke(req)
			that.mu.Unlock()

			payload, _ := json.Marshal(result)
			that.write(message{Action: msg.Action, ID: msg.ID, Payload: payload})
		case "transaction:submit":
			var req wallet.UpdateRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				that.Errorf("bad submit payload: %v", err)
				continue
			}

			that.mu.Lock()
			that.updates = append(that.updates, req)
			that.mu.Unlock()

			payload, _ := json.Marshal(map[string]string{"transactionHash": TransactionHash})
			that.write(message{Action: msg.Action, ID: msg.ID, Payload: payload})
		default:
			that.Logf("fake bridge ignoring action %q", msg.Action)
		}
	}
}
