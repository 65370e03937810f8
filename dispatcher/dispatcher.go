package dispatcher

import (
	"context"
	"fmt"
	"math/big"

	"flight-insurance/blockchain"
	"flight-insurance/contracts"
	"flight-insurance/storage"
	"flight-insurance/types"

	"github.com/ethereum/go-ethereum/accounts/abi"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// Resolver finds an actor's contract handle within a group. *registry.Registry
// satisfies it.
type Resolver interface {
	Lookup(name string, group types.Group) (blockchain.ContractHandle, error)
}

// Recorder receives one record per remote call attempt.
type Recorder interface {
	Record(rec storage.CallRecord) error
}

type Result struct {
	Operation string             `json:"operation"`
	Actor     string             `json:"actor"`
	Group     types.Group        `json:"group"`
	Method    string             `json:"method"`
	Selector  string             `json:"selector,omitempty"`
	TxHash    string             `json:"txHash,omitempty"`
	Receipt   *gethtypes.Receipt `json:"receipt,omitempty"`
	Values    []interface{}      `json:"values,omitempty"`
}

// Dispatcher turns a named intent into exactly one remote contract call.
type Dispatcher struct {
	resolver     Resolver
	descriptor   abi.ABI
	waitReceipts bool
	recorder     Recorder
	log          logrus.FieldLogger
}

type Option func(*Dispatcher)

// WithReceipts makes writes wait for their mined receipt.
func WithReceipts(wait bool) Option {
	return func(d *Dispatcher) { d.waitReceipts = wait }
}

func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Dispatcher) { d.log = l }
}

func New(resolver Resolver, descriptor abi.ABI, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver:   resolver,
		descriptor: descriptor,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Invoke resolves actor in the operation's group and calls the remote method with args
// in the given order.
func (d *Dispatcher) Invoke(ctx context.Context, operation, actor string, args ...interface{}) (*Result, error) {
	op, ok := Find(operation)
	if !ok {
		return nil, &UnknownOperationError{Name: operation}
	}

	handle, err := d.resolver.Lookup(actor, op.Group)
	if err != nil {
		return nil, err
	}

	if len(args) != len(op.Params) {
		return nil, &contracts.ArgumentError{
			Method: op.Method,
			Index:  -1,
			Err:    fmt.Errorf("%w: want %d (%v), got %d", contracts.ErrArgCount, len(op.Params), op.Params, len(args)),
		}
	}

	res := &Result{Operation: op.Name, Actor: actor, Group: op.Group, Method: op.Method}
	if method, ok := d.descriptor.Methods[op.Method]; ok {
		args, err = contracts.NormalizeArgs(method, args)
		if err != nil {
			return nil, err
		}
		res.Selector = contracts.Selector(method.Sig)
	}

	log := d.log.WithFields(logrus.Fields{
		"actor":     actor,
		"group":     op.Group,
		"operation": op.Name,
	})

	switch op.Kind {
	case Read:
		log.Infof("- Player %s reading %s()", actor, op.Method)
		values, err := handle.Call(ctx, op.Method, args)
		if err != nil {
			return nil, d.fail(op, actor, args, err)
		}
		res.Values = values
		log.Infof("- Player %s sees number: %s", actor, formatValues(values))
	default:
		log.Infof("- %s writing %s()", actor, op.Method)
		tx, err := handle.Transact(ctx, op.Method, args)
		if err != nil {
			return nil, d.fail(op, actor, args, err)
		}
		res.TxHash = tx.Hash().Hex()
		log = log.WithField("tx", res.TxHash)

		if d.waitReceipts {
			receipt, err := handle.WaitMined(ctx, tx)
			if err != nil {
				return nil, d.fail(op, actor, args, err)
			}
			res.Receipt = receipt
			log = log.WithField("block", receipt.BlockNumber)
		}
		log.Infof("- %s sent %s()", actor, op.Method)
	}

	d.record(op, actor, args, res, nil)
	return res, nil
}

// InvokeStrings converts textual arguments to the remote method's ABI input types and
// then dispatches.
func (d *Dispatcher) InvokeStrings(ctx context.Context, operation, actor string, raw []string) (*Result, error) {
	op, ok := Find(operation)
	if !ok {
		return nil, &UnknownOperationError{Name: operation}
	}
	// unknown actors win over malformed arguments, as in Invoke
	if _, err := d.resolver.Lookup(actor, op.Group); err != nil {
		return nil, err
	}
	method, ok := d.descriptor.Methods[op.Method]
	if !ok {
		return nil, fmt.Errorf("method %s is not in the contract ABI", op.Method)
	}
	args, err := contracts.CoerceArgs(method, raw)
	if err != nil {
		return nil, err
	}
	return d.Invoke(ctx, operation, actor, args...)
}

func (d *Dispatcher) fail(op Operation, actor string, args []interface{}, err error) error {
	d.record(op, actor, args, nil, err)
	d.log.WithFields(logrus.Fields{
		"actor":     actor,
		"operation": op.Name,
	}).WithError(err).Warn("remote call failed")
	return &RemoteCallError{Operation: op.Name, Actor: actor, Err: err}
}

func (d *Dispatcher) record(op Operation, actor string, args []interface{}, res *Result, callErr error) {
	if d.recorder == nil {
		return
	}
	rec := storage.CallRecord{
		Operation: op.Name,
		Actor:     actor,
		Group:     string(op.Group),
		Method:    op.Method,
		Args:      stringify(args),
	}
	if res != nil {
		rec.TxHash = res.TxHash
		rec.Values = stringify(res.Values)
	}
	if callErr != nil {
		rec.Error = callErr.Error()
	}
	if err := d.recorder.Record(rec); err != nil {
		d.log.WithError(err).Warn("failed to journal call")
	}
}

func stringify(vs []interface{}) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func formatValues(vs []interface{}) string {
	if len(vs) == 1 {
		return fmt.Sprint(vs[0])
	}
	return fmt.Sprint(vs)
}

func (d *Dispatcher) UnderwritePolicy(ctx context.Context, insurer, flightNumber string, premium, coverage *big.Int) (*Result, error) {
	return d.Invoke(ctx, OpUnderwritePolicy, insurer, flightNumber, premium, coverage)
}

func (d *Dispatcher) CreatePolicy(ctx context.Context, provider string, policyID, flightID, premium, coverage *big.Int) (*Result, error) {
	return d.Invoke(ctx, OpCreatePolicy, provider, policyID, flightID, premium, coverage)
}

func (d *Dispatcher) BuyPolicy(ctx context.Context, passenger string, flightID *big.Int) (*Result, error) {
	return d.Invoke(ctx, OpBuyPolicy, passenger, flightID)
}

func (d *Dispatcher) ClaimPayout(ctx context.Context, passenger string, policyID *big.Int) (*Result, error) {
	return d.Invoke(ctx, OpClaimPayout, passenger, policyID)
}

func (d *Dispatcher) ResolvePolicy(ctx context.Context, passenger string, flightID *big.Int, isResolved bool) (*Result, error) {
	return d.Invoke(ctx, OpResolvePolicy, passenger, flightID, isResolved)
}

func (d *Dispatcher) ClaimCoverageBack(ctx context.Context, provider string, policyID *big.Int) (*Result, error) {
	return d.Invoke(ctx, OpClaimCoverageBack, provider, policyID)
}

func (d *Dispatcher) Reset(ctx context.Context, player string) (*Result, error) {
	return d.Invoke(ctx, OpReset, player)
}

func (d *Dispatcher) Shake(ctx context.Context, player string, numShakes *big.Int) (*Result, error) {
	return d.Invoke(ctx, OpShake, player, numShakes)
}

func (d *Dispatcher) Hit(ctx context.Context, player string) (*Result, error) {
	return d.Invoke(ctx, OpHit, player)
}

// Look reads the player's current number.
func (d *Dispatcher) Look(ctx context.Context, player string) (*Result, error) {
	return d.Invoke(ctx, OpLook, player)
}
