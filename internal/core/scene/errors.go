package scene

import "errors"

var (
	ErrNotFound       = errors.New("entity has no transform")
	ErrOutOfRange     = errors.New("transform index out of range")
	ErrAlreadyExists  = errors.New("entity already has a transform")
	ErrCyclicLink     = errors.New("link would make a transform its own ancestor")
	ErrSingularParent = errors.New("parent world matrix is not invertible")
	ErrUnknownMode    = errors.New("unknown mode")
)
