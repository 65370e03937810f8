package config

import (
	"strings"

	"flight-insurance/types"
)

var (
	DefaultProviders  = []string{"Aaron", "Bella", "Charlie", "Diana", "Ethan", "Fiona"}
	DefaultPassengers = []string{"Alice", "Bob", "Chad", "Dave", "Eve", "Frank", "Grace", "Heidi"}
)

// KeyVar is the environment variable holding an actor's private key, e.g. ALICE_PRIVKEY.
func KeyVar(name string) string {
	return strings.ToUpper(name) + "_PRIVKEY"
}

// BuildRoster resolves each named actor's key through lookup. An unset key is kept as
// empty so the failure surfaces, per actor, when the registry is built.
func BuildRoster(lookup func(string) (string, bool), providers, passengers []string) types.Roster {
	return types.Roster{
		Providers:  identities(lookup, providers),
		Passengers: identities(lookup, passengers),
	}
}

func identities(lookup func(string) (string, bool), names []string) []types.ActorIdentity {
	ids := make([]types.ActorIdentity, 0, len(names))
	for _, name := range names {
		key, _ := lookup(KeyVar(name))
		ids = append(ids, types.ActorIdentity{Name: name, PrivateKey: key})
	}
	return ids
}
