package registry

import (
	"context"
	"fmt"

	"flight-insurance/blockchain"
	"flight-insurance/contracts"
	"flight-insurance/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Actor holds both per-actor artifacts; a record exists only when both were built.
type Actor struct {
	Name     string
	Group    types.Group
	Client   *blockchain.SigningClient
	Contract blockchain.ContractHandle
}

type key struct {
	group types.Group
	name  string
}

// Registry maps actor names to their signing client and contract handle. It is
// populated once by New and read-only afterwards.
type Registry struct {
	network  blockchain.Network
	contract *contracts.Contract
	actors   []*Actor
	index    map[key]*Actor
}

type Options struct {
	// Dialer opens each actor's RPC connection. Defaults to blockchain.DialEthClient.
	Dialer blockchain.Dialer
	// Concurrency bounds how many actors are set up at once. 1 keeps roster order.
	Concurrency int
}

// New builds a signing client and a checked contract handle for every roster member.
// Any failure closes what was opened and returns no registry.
func New(ctx context.Context, roster types.Roster, network blockchain.Network, contract *contracts.Contract, opts Options) (*Registry, error) {
	if opts.Dialer == nil {
		opts.Dialer = blockchain.DialEthClient
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	members := roster.Members()
	seen := make(map[key]struct{}, len(members))
	for _, m := range members {
		k := key{group: m.Group, name: m.Name}
		if _, dup := seen[k]; dup {
			return nil, &SetupError{Actor: m.Name, Group: m.Group, Stage: StageRoster, Err: fmt.Errorf("duplicate actor")}
		}
		seen[k] = struct{}{}
	}

	logrus.WithFields(logrus.Fields{
		"network":  network.Name,
		"contract": contract.Address.Hex(),
		"actors":   len(members),
	}).Info("initializing actors")

	actors := make([]*Actor, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, m := range members {
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &SetupError{Actor: m.Name, Group: m.Group, Stage: StageDial, Err: err}
			}
			a, err := setupActor(gctx, m, network, contract, opts.Dialer)
			if err != nil {
				return err
			}
			actors[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, a := range actors {
			if a != nil {
				a.Client.Close()
			}
		}
		return nil, err
	}

	r := &Registry{
		network:  network,
		contract: contract,
		actors:   actors,
		index:    make(map[key]*Actor, len(actors)),
	}
	for _, a := range actors {
		r.index[key{group: a.Group, name: a.Name}] = a
	}
	return r, nil
}

func setupActor(ctx context.Context, m types.Member, network blockchain.Network, contract *contracts.Contract, dial blockchain.Dialer) (*Actor, error) {
	fail := func(stage string, err error) error {
		return &SetupError{Actor: m.Name, Group: m.Group, Stage: stage, Err: err}
	}

	privateKey, err := blockchain.ParsePrivateKey(m.PrivateKey)
	if err != nil {
		return nil, fail(StageKey, err)
	}

	backend, err := dial(ctx, network.RPCURL)
	if err != nil {
		return nil, fail(StageDial, err)
	}
	client := blockchain.NewSigningClient(privateKey, backend, network.ChainID)

	handle, err := blockchain.NewContractWithCheck(ctx, client, contract.ABI, contract.Address)
	if err != nil {
		client.Close()
		return nil, fail(StageContract, err)
	}

	logrus.WithFields(logrus.Fields{
		"actor":   m.Name,
		"group":   m.Group,
		"account": client.Account.Hex(),
	}).Debug("actor ready")

	return &Actor{Name: m.Name, Group: m.Group, Client: client, Contract: handle}, nil
}

// Actor returns the full record for name within group.
func (r *Registry) Actor(name string, group types.Group) (*Actor, error) {
	a, ok := r.index[key{group: group, name: name}]
	if !ok {
		return nil, &ActorNotFoundError{Name: name, Group: group}
	}
	return a, nil
}

// Lookup returns the contract handle bound to the actor's signing client.
func (r *Registry) Lookup(name string, group types.Group) (blockchain.ContractHandle, error) {
	a, err := r.Actor(name, group)
	if err != nil {
		return nil, err
	}
	return a.Contract, nil
}

func (r *Registry) Client(name string, group types.Group) (*blockchain.SigningClient, error) {
	a, err := r.Actor(name, group)
	if err != nil {
		return nil, err
	}
	return a.Client, nil
}

// Actors lists every actor in roster order.
func (r *Registry) Actors() []*Actor {
	return append([]*Actor(nil), r.actors...)
}

func (r *Registry) Contract() *contracts.Contract {
	return r.contract
}

func (r *Registry) Network() blockchain.Network {
	return r.network
}

func (r *Registry) Close() {
	for _, a := range r.actors {
		a.Client.Close()
	}
}
