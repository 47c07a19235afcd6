package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	actionAccountGet          = "account:get"
	actionAccountChanged      = "account:changed"
	actionAccountDisconnected = "account:disconnected"
	actionContractInvoke      = "contract:invoke"
	actionTransactionSubmit   = "transaction:submit"
)

var ErrBridgeClosed = errors.New("wallet bridge connection is closed")

// message is one frame on the bridge socket. Messages with an id are
// request/response pairs; messages without one are notifications.
type message struct {
	Action  string          `json:"action"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type errorPayload struct {
	Error string `json:"error,omitempty"`
}

type accountPayload struct {
	Account string `json:"account,omitempty"`
}

type submitPayload struct {
	TransactionHash string `json:"transactionHash"`
}

// Bridge talks to the wallet extension over a local websocket endpoint.
type Bridge struct {
	logger *slog.Logger
	conn   *websocket.Conn

	events chan AccountEvent

	pendingMutex sync.Mutex
	pending      map[string]chan message

	writeMutex sync.Mutex

	closeOnce sync.Once
}

// DialBridge - connects to the wallet bridge and starts the read loop.
func DialBridge(ctx context.Context, addr string, logger *slog.Logger) (*Bridge, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wallet bridge: %w", err)
	}

	bridge := &Bridge{
		logger:  logger.With("component", "wallet-bridge"),
		conn:    conn,
		events:  make(chan AccountEvent, 16),
		pending: make(map[string]chan message),
	}

	go bridge.readLoop()

	return bridge, nil
}

var _ Provider = (*Bridge)(nil)

// readLoop dispatches responses to their waiting requests and notifications
// to the events channel, preserving arrival order.
func (that *Bridge) readLoop() {
	log := that.logger.With("method", "readLoop")

	defer close(that.events)
	defer that.failPending()

	for {
		var msg message
		if err := that.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("failed to read bridge message", "error", err)
			}
			return
		}

		if msg.ID != "" {
			that.deliver(msg)
			continue
		}

		switch msg.Action {
		case actionAccountChanged, actionAccountDisconnected:
			var payload accountPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil && msg.Payload != nil {
				log.Error("failed to unmarshal account notification", "error", err)
				continue
			}

			kind := EventAccountChanged
			if msg.Action == actionAccountDisconnected {
				kind = EventAccountDisconnected
			}

			that.events <- AccountEvent{Kind: kind, Account: payload.Account}
		default:
			log.Warn("ignoring unknown bridge notification", "action", msg.Action)
		}
	}
}

func (that *Bridge) deliver(msg message) {
	that.pendingMutex.Lock()
	ch, ok := that.pending[msg.ID]
	if ok {
		delete(that.pending, msg.ID)
	}
	that.pendingMutex.Unlock()

	if !ok {
		that.logger.Warn("dropping response with no waiting request", "id", msg.ID)
		return
	}

	ch <- msg
}

// failPending unblocks requests still waiting when the connection drops.
func (that *Bridge) failPending() {
	that.pendingMutex.Lock()
	defer that.pendingMutex.Unlock()

	for id, ch := range that.pending {
		close(ch)
		delete(that.pending, id)
	}
}

// request - sends one message and waits for the matching response.
func (that *Bridge) request(ctx context.Context, action string, payload any) (json.RawMessage, error) {
	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", action, err)
		}
		raw = encoded
	}

	id := uuid.NewString()
	respChan := make(chan message, 1)

	that.pendingMutex.Lock()
	that.pending[id] = respChan
	that.pendingMutex.Unlock()

	msg := message{Action: action, ID: id, Payload: raw}

	that.writeMutex.Lock()
	err := that.conn.WriteJSON(msg)
	that.writeMutex.Unlock()

	if err != nil {
		that.pendingMutex.Lock()
		delete(that.pending, id)
		that.pendingMutex.Unlock()

		return nil, fmt.Errorf("failed to write %s request: %w", action, err)
	}

	select {
	case <-ctx.Done():
		that.pendingMutex.Lock()
		delete(that.pending, id)
		that.pendingMutex.Unlock()

		return nil, fmt.Errorf("%s request canceled: %w", action, ctx.Err())
	case resp, ok := <-respChan:
		if !ok {
			return nil, ErrBridgeClosed
		}

		var failure errorPayload
		if resp.Payload != nil {
			if err := json.Unmarshal(resp.Payload, &failure); err == nil && failure.Error != "" {
				return nil, fmt.Errorf("%s request rejected: %s", action, failure.Error)
			}
		}

		return resp.Payload, nil
	}
}

// MostRecentlySelectedAccount - asks the provider which account, if any, is
// currently selected. An empty account is a valid answer.
func (that *Bridge) MostRecentlySelectedAccount(ctx context.Context) (string, error) {
	raw, err := that.request(ctx, actionAccountGet, nil)
	if err != nil {
		return "", fmt.Errorf("failed to query selected account: %w", err)
	}

	var payload accountPayload
	if raw != nil {
		if err = json.Unmarshal(raw, &payload); err != nil {
			return "", fmt.Errorf("failed to unmarshal selected account: %w", err)
		}
	}

	return payload.Account, nil
}

func (that *Bridge) Events() <-chan AccountEvent {
	return that.events
}

func (that *Bridge) Transport() ContractTransport {
	return that
}

// InvokeContract - performs a read-only view call through the provider's
// node connection.
func (that *Bridge) InvokeContract(ctx context.Context, req InvokeRequest) (*InvokeResult, error) {
	raw, err := that.request(ctx, actionContractInvoke, req)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", req.Method, err)
	}

	var result InvokeResult
	if err = json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invoke result: %w", err)
	}

	return &result, nil
}

// SubmitUpdate - hands a state-mutating request to the provider for signing
// and submission, returning the transaction hash.
func (that *Bridge) SubmitUpdate(ctx context.Context, req UpdateRequest) (string, error) {
	raw, err := that.request(ctx, actionTransactionSubmit, req)
	if err != nil {
		return "", fmt.Errorf("failed to submit %s: %w", req.Method, err)
	}

	var payload submitPayload
	if err = json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal submit result: %w", err)
	}

	return payload.TransactionHash, nil
}

func (that *Bridge) Close() error {
	var err error
	that.closeOnce.Do(func() {
		err = that.conn.Close()
	})
	return err
}
