// Package wallet integrates the external wallet provider: detection, account
// notifications and the signing transport used for contract calls.
package wallet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tittactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
)

type EventKind string

const (
	EventAccountChanged      EventKind = "account:changed"
	EventAccountDisconnected EventKind = "account:disconnected"
)

// AccountEvent is one provider notification. Account may be empty.
type AccountEvent struct {
	Kind    EventKind
	Account string
}

const (
	TagSuccess = "success"
	TagFailure = "failure"
)

// InvokeRequest is a read-only, unsigned view call.
type InvokeRequest struct {
	Method    string                 `json:"method"`
	Contract  entity.ContractAddress `json:"contract"`
	Parameter []byte                 `json:"parameter,omitempty"`
}

// InvokeResult is the discriminated outcome of a view call.
type InvokeResult struct {
	Tag         string `json:"tag"`
	ReturnValue []byte `json:"returnValue,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// UpdateRequest is a state-mutating call, signed and submitted by the provider
// on behalf of the connected account.
type UpdateRequest struct {
	Method    string                 `json:"method"`
	Contract  entity.ContractAddress `json:"contract"`
	Parameter []byte                 `json:"parameter,omitempty"`
	Sender    string                 `json:"sender"`
}

// ContractTransport performs contract calls through the provider's node
// connection.
type ContractTransport interface {
	InvokeContract(ctx context.Context, req InvokeRequest) (*InvokeResult, error)
	SubmitUpdate(ctx context.Context, req UpdateRequest) (string, error)
}

// Provider is the external wallet integration. Events are delivered in
// arrival order on a single channel; the channel closes when the provider
// goes away.
type Provider interface {
	MostRecentlySelectedAccount(ctx context.Context) (string, error)
	Events() <-chan AccountEvent
	Transport() ContractTransport
	Close() error
}

// Detect - locates the wallet bridge at the given address. Failure means the
// extension is absent or disabled; the caller degrades to disconnected mode.
func Detect(ctx context.Context, addr string, logger *slog.Logger) (Provider, error) {
	bridge, err := DialBridge(ctx, addr, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrProviderUnavailable, err)
	}

	return bridge, nil
}
