package types

import "fmt"

// Group partitions the roster into insurers and travellers.
type Group string

const (
	Provider  Group = "provider"
	Passenger Group = "passenger"
)

func (g Group) Valid() bool {
	return g == Provider || g == Passenger
}

func ParseGroup(s string) (Group, error) {
	g := Group(s)
	if !g.Valid() {
		return "", fmt.Errorf("unknown actor group %q", s)
	}
	return g, nil
}

// ActorIdentity is one named key holder from the roster.
type ActorIdentity struct {
	Name       string `json:"name"`
	PrivateKey string `json:"-"`
}

// String never prints the key.
func (a ActorIdentity) String() string {
	return a.Name
}

type Roster struct {
	Providers  []ActorIdentity
	Passengers []ActorIdentity
}

// Member is a roster entry tagged with its group.
type Member struct {
	ActorIdentity
	Group Group
}

// Members returns every actor in setup order: all providers, then all passengers.
func (r Roster) Members() []Member {
	members := make([]Member, 0, len(r.Providers)+len(r.Passengers))
	for _, p := range r.Providers {
		members = append(members, Member{ActorIdentity: p, Group: Provider})
	}
	for _, p := range r.Passengers {
		members = append(members, Member{ActorIdentity: p, Group: Passenger})
	}
	return members
}

func (r Roster) Len() int {
	return len(r.Providers) + len(r.Passengers)
}

// Flight is a demo itinerary referenced by the scenario drivers.
type Flight struct {
	FlightID  int64
	Departure string
	Arrival   string
}
