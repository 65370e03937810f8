package dispatcher

import "flight-insurance/types"

type Kind string

const (
	Write Kind = "write"
	Read  Kind = "read"
)

// Operation binds a client-side action to one remote method. Params lists the remote
// arguments in the exact positional order they are sent.
type Operation struct {
	Name   string      `json:"name"`
	Group  types.Group `json:"group"`
	Method string      `json:"method"`
	Params []string    `json:"params"`
	Kind   Kind        `json:"kind"`
}

const (
	OpUnderwritePolicy  = "underwritePolicy"
	OpCreatePolicy      = "createPolicy"
	OpBuyPolicy         = "buyPolicy"
	OpClaimPayout       = "claimPayout"
	OpResolvePolicy     = "resolvePolicy"
	OpClaimCoverageBack = "claimCoverageBack"
	OpReset             = "reset"
	OpShake             = "shake"
	OpHit               = "hit"
	OpLook              = "look"
)

var operations = []Operation{
	{Name: OpUnderwritePolicy, Group: types.Provider, Method: "underwritePolicy", Params: []string{"flightNumber", "premium", "coverage"}, Kind: Write},
	{Name: OpCreatePolicy, Group: types.Provider, Method: "createPolicy", Params: []string{"policyId", "flightId", "premium", "coverage"}, Kind: Write},
	{Name: OpBuyPolicy, Group: types.Passenger, Method: "buyPolicy", Params: []string{"flightId"}, Kind: Write},
	{Name: OpClaimPayout, Group: types.Passenger, Method: "claimPayout", Params: []string{"policyId"}, Kind: Write},
	{Name: OpResolvePolicy, Group: types.Passenger, Method: "resolvePolicy", Params: []string{"flightId", "isResolved"}, Kind: Write},
	{Name: OpClaimCoverageBack, Group: types.Provider, Method: "claimCoverageBack", Params: []string{"policyId"}, Kind: Write},
	{Name: OpReset, Group: types.Passenger, Method: "reset", Params: []string{}, Kind: Write},
	{Name: OpShake, Group: types.Passenger, Method: "shake", Params: []string{"numShakes"}, Kind: Write},
	{Name: OpHit, Group: types.Passenger, Method: "hit", Params: []string{}, Kind: Write},
	{Name: OpLook, Group: types.Passenger, Method: "look", Params: []string{}, Kind: Read},
}

var byName = func() map[string]Operation {
	m := make(map[string]Operation, len(operations))
	for _, op := range operations {
		m[op.Name] = op
	}
	return m
}()

// Operations returns the dispatch table in declaration order.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	return out
}

func Find(name string) (Operation, bool) {
	op, ok := byName[name]
	return op, ok
}
