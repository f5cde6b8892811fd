package level

import (
	"errors"
	"fmt"

	"toycar/internal/fetch"
)

// ErrNetworkUnavailable is wrapped by every remote fetch failure.
var ErrNetworkUnavailable = fetch.ErrNetworkUnavailable

// ErrLoadFailure means neither the remote nor the local placement list could be read.
var ErrLoadFailure = errors.New("cannot load blocks")

// MissingNameError reports a record without a name.
type MissingNameError struct {
	Record Record
}

func (e *MissingNameError) Error() string {
	return fmt.Sprintf("block without name at (%g, %g, %g)", e.Record.X, e.Record.Y, e.Record.Z)
}

// UnknownModelError reports a record whose name is not in the asset catalog.
type UnknownModelError struct {
	Name string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("model not found: %s", e.Name)
}

// UnexpectedError carries a panic recovered while loading.
type UnexpectedError struct {
	Value any
	Stack []byte
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("error loading blocks: %v", e.Value)
}
