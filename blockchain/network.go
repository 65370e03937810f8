package blockchain

import (
	"fmt"
	"math/big"
	"strconv"
)

// Network is a chain profile plus the endpoint used to reach it.
type Network struct {
	Name    string
	ChainID *big.Int
	RPCURL  string
}

type Profile struct {
	Name    string
	ChainID int64
}

var (
	Sanvil        = Profile{Name: "sanvil", ChainID: 31337}
	SeismicDevnet = Profile{Name: "seismic-devnet", ChainID: 5124}
)

// ResolveNetwork picks the local sanvil profile when chainID matches it and the devnet
// profile otherwise. The profile's own id is the one used for signing.
func ResolveNetwork(chainID, rpcURL string) (Network, error) {
	if _, err := strconv.ParseInt(chainID, 10, 64); err != nil {
		return Network{}, fmt.Errorf("invalid chain id %q: %w", chainID, err)
	}

	profile := SeismicDevnet
	if chainID == strconv.FormatInt(Sanvil.ChainID, 10) {
		profile = Sanvil
	}

	return Network{
		Name:    profile.Name,
		ChainID: big.NewInt(profile.ChainID),
		RPCURL:  rpcURL,
	}, nil
}

func (n Network) String() string {
	return fmt.Sprintf("%s (chain %s) at %s", n.Name, n.ChainID, n.RPCURL)
}
