package wallet

import (
	"context"
	"log/slog"

	"github.com/rocketscienceinc/tittactoe-client/internal/session"
)

// Tracker observes the wallet provider and is the single writer of the shared
// session state.
type Tracker struct {
	logger  *slog.Logger
	session *session.Session
	addr    string

	detect   func(ctx context.Context, addr string, logger *slog.Logger) (Provider, error)
	provider Provider
}

func NewTracker(logger *slog.Logger, sess *session.Session, addr string) *Tracker {
	return &Tracker{
		logger:  logger.With("component", "wallet-tracker"),
		session: sess,
		addr:    addr,
		detect:  Detect,
	}
}

// Initialize - detects the provider and performs the eager query for the
// most-recently-selected account. An absent provider is not an error: the
// session stays disconnected and the client runs in read-only mode, with no
// automatic retry.
func (that *Tracker) Initialize(ctx context.Context) {
	log := that.logger.With("method", "Initialize")

	provider, err := that.detect(ctx, that.addr, that.logger)
	if err != nil {
		log.Warn("wallet provider not detected, running disconnected", "error", err)
		that.session.SetAccount("")
		return
	}

	that.provider = provider

	account, err := provider.MostRecentlySelectedAccount(ctx)
	if err != nil {
		log.Warn("failed to query selected account", "error", err)
		account = ""
	}

	that.onAccountUpdate(account)
}

// Provider returns the detected provider, or nil when running disconnected.
func (that *Tracker) Provider() Provider {
	return that.provider
}

// Run consumes provider notifications until the context is canceled or the
// provider goes away. All session updates happen on this one loop, so they
// are applied in arrival order.
func (that *Tracker) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	if that.provider == nil {
		return
	}

	events := that.provider.Events()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				log.Warn("wallet provider connection lost")
				that.onAccountUpdate("")
				return
			}

			that.handleEvent(ctx, event)
		}
	}
}

func (that *Tracker) handleEvent(ctx context.Context, event AccountEvent) {
	log := that.logger.With("method", "handleEvent")

	switch event.Kind {
	case EventAccountChanged:
		that.onAccountUpdate(event.Account)
	case EventAccountDisconnected:
		// Disconnecting one account may reveal another that is still
		// authorized, so ask the provider instead of assuming.
		account, err := that.provider.MostRecentlySelectedAccount(ctx)
		if err != nil {
			log.Warn("failed to re-query selected account", "error", err)
			account = ""
		}

		that.onAccountUpdate(account)
	default:
		log.Warn("ignoring unknown provider event", "kind", event.Kind)
	}
}

// onAccountUpdate is idempotent; redundant updates are published as-is and
// subscribers tolerate them.
func (that *Tracker) onAccountUpdate(account string) {
	that.session.SetAccount(account)
	that.logger.Debug("session updated", "connected", account != "", "account", account)
}
