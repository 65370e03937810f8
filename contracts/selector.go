package contracts

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// Keccak256 returns a keccak256 hash of the given string.
func Keccak256(s string) string {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(s))
	return hex.EncodeToString(hasher.Sum(nil))
}

// Selector is the 4-byte function selector of a canonical signature such as
// "buyPolicy(uint256)", hex encoded.
func Selector(signature string) string {
	return Keccak256(signature)[:8]
}

// FindSelector finds the function selector for a method name in the ABI.
func FindSelector(parsed abi.ABI, name string) (string, error) {
	method, ok := parsed.Methods[name]
	if !ok {
		return "", fmt.Errorf("function not found in ABI: %s", name)
	}
	return Selector(method.Sig), nil
}
