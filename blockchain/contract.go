package blockchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrNoCode   = errors.New("no contract code at address")
	ErrReverted = errors.New("transaction reverted")
)

// ContractHandle is a typed facade over the remote contract for one actor.
type ContractHandle interface {
	Address() common.Address
	Account() common.Address
	Transact(ctx context.Context, method string, args []interface{}) (*types.Transaction, error)
	Call(ctx context.Context, method string, args []interface{}) ([]interface{}, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// BoundContract binds a contract ABI and address to one SigningClient.
type BoundContract struct {
	client   *SigningClient
	address  common.Address
	contract *bind.BoundContract
}

var _ ContractHandle = (*BoundContract)(nil)

// NewContractWithCheck binds the contract only after confirming the address holds code.
func NewContractWithCheck(ctx context.Context, client *SigningClient, parsed abi.ABI, address common.Address) (*BoundContract, error) {
	backend := client.Backend()

	code, err := backend.CodeAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch code at %s: %w", address.Hex(), err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoCode, address.Hex())
	}

	return &BoundContract{
		client:   client,
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (c *BoundContract) Address() common.Address {
	return c.address
}

func (c *BoundContract) Account() common.Address {
	return c.client.Account
}

func (c *BoundContract) Transact(ctx context.Context, method string, args []interface{}) (*types.Transaction, error) {
	opts, err := c.client.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}
	return c.contract.Transact(opts, method, args...)
}

func (c *BoundContract) Call(ctx context.Context, method string, args []interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.contract.Call(c.client.CallOpts(ctx), &out, method, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// WaitMined blocks until tx is included and fails if it reverted.
func (c *BoundContract) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.client.Backend(), tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, fmt.Errorf("%w: %s", ErrReverted, tx.Hash().Hex())
	}
	return receipt, nil
}
