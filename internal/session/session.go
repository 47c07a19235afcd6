// Package session holds the shared wallet session state: one writer (the
// wallet tracker), any number of readers.
package session

import (
	"sync"

	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
)

// State is a snapshot of the current session. Account is empty when no wallet
// account is connected; Contract is fixed at startup.
type State struct {
	IsConnected bool
	Account     string
	Contract    entity.ContractAddress
}

type Session struct {
	mu          sync.RWMutex
	state       State
	subscribers []chan State
}

// New - creates a disconnected session bound to the configured contract.
func New(contract entity.ContractAddress) *Session {
	return &Session{
		state: State{
			IsConnected: false,
			Contract:    contract,
		},
	}
}

// Current returns a snapshot of the session state.
func (that *Session) Current() State {
	that.mu.RLock()
	defer that.mu.RUnlock()
	return that.state
}

// Subscribe returns a channel receiving every published state, including
// redundant ones. A subscriber that stops draining loses updates instead of
// stalling the writer.
func (that *Session) Subscribe() <-chan State {
	that.mu.Lock()
	defer that.mu.Unlock()

	ch := make(chan State, 8)
	that.subscribers = append(that.subscribers, ch)

	return ch
}

// SetAccount - updates the connected account and publishes the new state.
// The wallet tracker is the only caller; an empty account means disconnected.
func (that *Session) SetAccount(account string) {
	that.mu.Lock()

	that.state.Account = account
	that.state.IsConnected = account != ""
	state := that.state
	subscribers := that.subscribers

	that.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- state:
		default:
		}
	}
}
