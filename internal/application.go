package application

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tittactoe-client/internal/chain"
	"github.com/rocketscienceinc/tittactoe-client/internal/config"
	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
	"github.com/rocketscienceinc/tittactoe-client/internal/game"
	"github.com/rocketscienceinc/tittactoe-client/internal/repository"
	"github.com/rocketscienceinc/tittactoe-client/internal/session"
	"github.com/rocketscienceinc/tittactoe-client/internal/wallet"
	"github.com/rocketscienceinc/tittactoe-client/transport/console"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	contract := entity.ContractAddress{
		Index:    conf.Contract.Index,
		Subindex: conf.Contract.Subindex,
	}

	sess := session.New(contract)

	tracker := wallet.NewTracker(logger, sess, conf.Wallet.GetBridgeAddr())
	tracker.Initialize(ctx)
	go tracker.Run(ctx)

	// Without a provider there is no transport: the controller surfaces
	// that per call and the console stays usable.
	var fetcher *chain.Fetcher
	var transport wallet.ContractTransport

	if provider := tracker.Provider(); provider != nil {
		defer func() {
			if err := provider.Close(); err != nil {
				log.Error("could not close wallet provider", "error", err)
			}
		}()

		transport = provider.Transport()
		fetcher = chain.NewFetcher(logger, transport, conf.Contract.Name)
	}

	games := repository.NewGameRepository()

	// A typed-nil fetcher must not reach the interface fields, hence the
	// two construction paths.
	var controller *game.Controller
	var ui *console.Console

	if fetcher != nil {
		controller = game.NewController(logger, sess, fetcher, transport, games, conf.Contract.Name)
		ui = console.New(logger, sess, controller, fetcher, os.Stdin, os.Stdout)
	} else {
		controller = game.NewController(logger, sess, nil, nil, games, conf.Contract.Name)
		ui = console.New(logger, sess, controller, nil, os.Stdin, os.Stdout)
	}

	if err := controller.SelectGame(ctx, entity.GameID(conf.Contract.GameID)); err != nil {
		log.Debug("selected game not loaded yet", "game", conf.Contract.GameID, "error", err)
	}

	if err := ui.Run(ctx); err != nil {
		return err
	}

	log.Info("Application stopped")

	return nil
}
