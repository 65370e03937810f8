package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// Backend is the subset of an RPC connection a signing client needs. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// Dialer opens one RPC connection.
type Dialer func(ctx context.Context, rpcURL string) (Backend, error)

// DialEthClient is the default Dialer.
func DialEthClient(ctx context.Context, rpcURL string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

var _ Backend = (*ethclient.Client)(nil)

// ParsePrivateKey decodes a hex secp256k1 key, with or without the 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("empty private key")
	}
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("malformed private key: %w", err)
	}
	return key, nil
}

// SigningClient is one actor's key bound to one network connection.
type SigningClient struct {
	Account common.Address
	ChainID *big.Int

	key     *ecdsa.PrivateKey
	backend Backend
}

func NewSigningClient(key *ecdsa.PrivateKey, backend Backend, chainID *big.Int) *SigningClient {
	return &SigningClient{
		Account: crypto.PubkeyToAddress(key.PublicKey),
		ChainID: new(big.Int).Set(chainID),
		key:     key,
		backend: backend,
	}
}

func (c *SigningClient) Backend() Backend {
	return c.backend
}

// TransactOpts returns fresh signing options; nonce, gas and fees are filled by the
// node at send time.
func (c *SigningClient) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.ChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

func (c *SigningClient) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{From: c.Account, Context: ctx}
}

func (c *SigningClient) Close() {
	logrus.WithField("account", c.Account.Hex()).Debug("closing rpc connection")
	c.backend.Close()
}
