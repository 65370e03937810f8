package blockchain

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[
 {"type":"function","name":"buyPolicy","stateMutability":"nonpayable","inputs":[{"name":"flightId","type":"uint256"}],"outputs":[]},
 {"type":"function","name":"look","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

var contractAddr = common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")

// fakeBackend embeds the interface so only the methods a test touches need bodies.
type fakeBackend struct {
	bind.ContractBackend

	code     []byte
	codeErr  error
	callOut  []byte
	sent     []*types.Transaction
	receipt  *types.Receipt
	closed   bool
	lastCall ethereum.CallMsg
}

func (f *fakeBackend) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return f.code, f.codeErr
}

func (f *fakeBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return f.code, nil
}

func (f *fakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.lastCall = call
	return f.callOut, nil
}

func (f *fakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1)}, nil
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 50_000, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if f.receipt == nil {
		return nil, ethereum.NotFound
	}
	return f.receipt, nil
}

func (f *fakeBackend) Close() {
	f.closed = true
}

func newTestClient(t *testing.T, backend Backend) *SigningClient {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return NewSigningClient(key, backend, big.NewInt(Sanvil.ChainID))
}

func parsedABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(testABI))
	require.NoError(t, err)
	return parsed
}

func TestParsePrivateKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	encoded := hexutil.Encode(crypto.FromECDSA(key))

	withPrefix, err := ParsePrivateKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(withPrefix.PublicKey))

	withoutPrefix, err := ParsePrivateKey(strings.TrimPrefix(encoded, "0x"))
	require.NoError(t, err)
	assert.Equal(t, withPrefix.D, withoutPrefix.D)

	_, err = ParsePrivateKey("")
	require.Error(t, err)

	_, err = ParsePrivateKey("0xnothex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed private key")
}

func TestResolveNetwork(t *testing.T) {
	n, err := ResolveNetwork("31337", "http://127.0.0.1:8545")
	require.NoError(t, err)
	assert.Equal(t, "sanvil", n.Name)
	assert.Equal(t, int64(31337), n.ChainID.Int64())
	assert.Equal(t, "http://127.0.0.1:8545", n.RPCURL)

	n, err = ResolveNetwork("5124", "https://node-2.seismicdev.net/rpc")
	require.NoError(t, err)
	assert.Equal(t, "seismic-devnet", n.Name)

	_, err = ResolveNetwork("anvil", "http://127.0.0.1:8545")
	require.Error(t, err)
}

func TestSigningClientDerivesAccount(t *testing.T) {
	backend := &fakeBackend{}
	client := newTestClient(t, backend)

	opts, err := client.TransactOpts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.Account, opts.From)

	call := client.CallOpts(context.Background())
	assert.Equal(t, client.Account, call.From)

	client.Close()
	assert.True(t, backend.closed)
}

func TestNewContractWithCheck(t *testing.T) {
	parsed := parsedABI(t)

	_, err := NewContractWithCheck(context.Background(), newTestClient(t, &fakeBackend{}), parsed, contractAddr)
	require.ErrorIs(t, err, ErrNoCode)

	rpcErr := errors.New("connection refused")
	_, err = NewContractWithCheck(context.Background(), newTestClient(t, &fakeBackend{codeErr: rpcErr}), parsed, contractAddr)
	require.ErrorIs(t, err, rpcErr)

	client := newTestClient(t, &fakeBackend{code: []byte{0x60, 0x80}})
	handle, err := NewContractWithCheck(context.Background(), client, parsed, contractAddr)
	require.NoError(t, err)
	assert.Equal(t, contractAddr, handle.Address())
	assert.Equal(t, client.Account, handle.Account())
}

func TestBoundContractCall(t *testing.T) {
	parsed := parsedABI(t)
	out, err := parsed.Methods["look"].Outputs.Pack(big.NewInt(7))
	require.NoError(t, err)

	backend := &fakeBackend{code: []byte{0x60}, callOut: out}
	client := newTestClient(t, backend)
	handle, err := NewContractWithCheck(context.Background(), client, parsed, contractAddr)
	require.NoError(t, err)

	values, err := handle.Call(context.Background(), "look", nil)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, int64(7), values[0].(*big.Int).Int64())
	assert.Equal(t, client.Account, backend.lastCall.From)
	assert.Equal(t, parsed.Methods["look"].ID, backend.lastCall.Data)
}

func TestBoundContractTransact(t *testing.T) {
	parsed := parsedABI(t)
	backend := &fakeBackend{code: []byte{0x60}}
	client := newTestClient(t, backend)
	handle, err := NewContractWithCheck(context.Background(), client, parsed, contractAddr)
	require.NoError(t, err)

	tx, err := handle.Transact(context.Background(), "buyPolicy", []interface{}{big.NewInt(100)})
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, tx.Hash(), backend.sent[0].Hash())

	require.NotNil(t, tx.To())
	assert.Equal(t, contractAddr, *tx.To())

	packed, err := parsed.Pack("buyPolicy", big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, packed, tx.Data())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(Sanvil.ChainID)), tx)
	require.NoError(t, err)
	assert.Equal(t, client.Account, sender)
}

func TestBoundContractWaitMined(t *testing.T) {
	parsed := parsedABI(t)
	backend := &fakeBackend{code: []byte{0x60}}
	handle, err := NewContractWithCheck(context.Background(), newTestClient(t, backend), parsed, contractAddr)
	require.NoError(t, err)

	tx := types.NewTx(&types.LegacyTx{Nonce: 1, To: &contractAddr, Gas: 21000, GasPrice: big.NewInt(1)})

	backend.receipt = &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}
	receipt, err := handle.WaitMined(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), receipt.TxHash)

	backend.receipt = &types.Receipt{Status: types.ReceiptStatusFailed, TxHash: tx.Hash()}
	_, err = handle.WaitMined(context.Background(), tx)
	require.ErrorIs(t, err, ErrReverted)
}
