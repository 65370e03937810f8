package contracts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract is the interface descriptor and deployed location of one contract.
type Contract struct {
	Name          string         `json:"name"`
	Address       common.Address `json:"address"`
	ABI           abi.ABI        `json:"-"`
	ABIPath       string         `json:"abi_path"`
	BroadcastPath string         `json:"broadcast_path"`
}

// ArtifactPath is the Foundry build output holding the ABI: out/<Name>.sol/<Name>.json.
func ArtifactPath(dir, name string) string {
	return filepath.Join(dir, "out", name+".sol", name+".json")
}

// BroadcastPath is the deployment record written by `forge script`:
// broadcast/<Name>.s.sol/<chainID>/run-latest.json.
func BroadcastPath(dir, name, chainID string) string {
	return filepath.Join(dir, "broadcast", name+".s.sol", chainID, "run-latest.json")
}

// Load reads the ABI and deployed address of the named contract from a Foundry project.
func Load(dir, name, chainID string) (*Contract, error) {
	abiPath := ArtifactPath(dir, name)
	broadcastPath := BroadcastPath(dir, name, chainID)

	parsed, err := ReadContractABI(abiPath)
	if err != nil {
		return nil, err
	}
	address, err := ReadContractAddress(broadcastPath, name)
	if err != nil {
		return nil, err
	}

	return &Contract{
		Name:          name,
		Address:       address,
		ABI:           parsed,
		ABIPath:       abiPath,
		BroadcastPath: broadcastPath,
	}, nil
}

type artifact struct {
	ABI json.RawMessage `json:"abi"`
}

// ReadContractABI parses the "abi" member of a compiler artifact.
func ReadContractABI(path string) (abi.ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to read contract artifact: %w", err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse contract artifact %s: %w", path, err)
	}
	if len(a.ABI) == 0 {
		return abi.ABI{}, fmt.Errorf("contract artifact %s has no abi", path)
	}

	return ParseABI(a.ABI)
}

func ParseABI(abiJSON []byte) (abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(abiJSON))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return parsed, nil
}

type broadcastTransaction struct {
	TransactionType string `json:"transactionType"`
	ContractName    string `json:"contractName"`
	ContractAddress string `json:"contractAddress"`
}

type broadcast struct {
	Transactions []broadcastTransaction `json:"transactions"`
}

var ErrNoDeployment = errors.New("no deployment found in broadcast file")

// ReadContractAddress returns the address created for name in a broadcast file. When no
// CREATE transaction names the contract, the first transaction's address is used.
func ReadContractAddress(path, name string) (common.Address, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to read broadcast file: %w", err)
	}

	var b broadcast
	if err := json.Unmarshal(data, &b); err != nil {
		return common.Address{}, fmt.Errorf("failed to parse broadcast file %s: %w", path, err)
	}

	var found string
	for _, tx := range b.Transactions {
		if tx.TransactionType == "CREATE" && tx.ContractName == name && tx.ContractAddress != "" {
			found = tx.ContractAddress
			break
		}
	}
	if found == "" && len(b.Transactions) > 0 {
		found = b.Transactions[0].ContractAddress
	}
	if found == "" {
		return common.Address{}, fmt.Errorf("%w: %s", ErrNoDeployment, path)
	}
	if !common.IsHexAddress(found) {
		return common.Address{}, fmt.Errorf("invalid contract address %q in %s", found, path)
	}

	return common.HexToAddress(found), nil
}
