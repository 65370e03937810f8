package dispatcher

import "fmt"

// RemoteCallError wraps any failure returned by the node or the contract.
type RemoteCallError struct {
	Operation string
	Actor     string
	Err       error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s by %s failed: %v", e.Operation, e.Actor, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", e.Name)
}
