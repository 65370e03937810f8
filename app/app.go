package app

import (
	"context"
	"fmt"

	"flight-insurance/blockchain"
	"flight-insurance/config"
	"flight-insurance/contracts"
	"flight-insurance/dispatcher"
	"flight-insurance/registry"
	"flight-insurance/storage"
	"flight-insurance/types"

	"github.com/sirupsen/logrus"
)

// App is everything a driver needs once the environment has been read: one signing
// client and contract handle per actor, and a dispatcher over them.
type App struct {
	Config     *config.Config
	Network    blockchain.Network
	Contract   *contracts.Contract
	Registry   *registry.Registry
	Dispatcher *dispatcher.Dispatcher
	Journal    *storage.Journal
}

// LoadConfig reads .env and the process environment and configures logging.
// It returns config.ErrMissingEnv when CHAIN_ID or RPC_URL is absent.
func LoadConfig(defaultContract string) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(defaultContract)
	if err != nil {
		return nil, err
	}
	if err := config.SetupLogging(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultRoster is the six providers and eight passengers, keys read from
// <NAME>_PRIVKEY.
func DefaultRoster() types.Roster {
	return config.BuildRoster(config.Lookup, config.DefaultProviders, config.DefaultPassengers)
}

// New loads the contract artifacts and builds the registry and dispatcher. A nil dial
// uses the ethclient dialer.
func New(ctx context.Context, cfg *config.Config, roster types.Roster, dial blockchain.Dialer) (*App, error) {
	network, err := blockchain.ResolveNetwork(cfg.ChainID, cfg.RPCURL)
	if err != nil {
		return nil, err
	}

	contract, err := contracts.Load(cfg.ContractDir, cfg.ContractName, cfg.ChainID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"network":  network.Name,
		"contract": contract.Name,
		"address":  contract.Address.Hex(),
		"actors":   roster.Len(),
	}).Info("Initializing clients")

	reg, err := registry.New(ctx, roster, network, contract, registry.Options{
		Dialer:      dial,
		Concurrency: cfg.SetupConcurrency,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Network:  network,
		Contract: contract,
		Registry: reg,
	}

	opts := []dispatcher.Option{dispatcher.WithReceipts(cfg.WaitReceipts)}
	if cfg.JournalPath != "" {
		a.Journal, err = storage.Open(cfg.JournalPath)
		if err != nil {
			reg.Close()
			return nil, fmt.Errorf("call journal: %w", err)
		}
		opts = append(opts, dispatcher.WithRecorder(a.Journal))
	}
	a.Dispatcher = dispatcher.New(reg, contract.ABI, opts...)

	return a, nil
}

func (a *App) Close() {
	a.Registry.Close()
	if a.Journal != nil {
		if err := a.Journal.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close call journal")
		}
	}
}
