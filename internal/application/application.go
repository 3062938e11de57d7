package application

import "context"

// UseCase is the uniform shape of command-style operations.
type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

// IDGenerator produces unique identifiers for new entities.
type IDGenerator interface {
	NewID() string
}
