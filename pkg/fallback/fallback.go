// Package fallback implements ordered retry-over-alternatives for calls to
// unreliable generative backends. One chain serves every call site that has
// the shape "try these providers in order until one result is acceptable".
package fallback

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrExhausted is returned when every provider in a chain has been tried
// and none produced an accepted result. Callers must treat it as a terminal
// failure, never as a successful empty result.
var ErrExhausted = errors.New("fallback: all providers exhausted")

// Provider is one alternative in a chain.
type Provider[T any] struct {
	Name string
	Call func(ctx context.Context) (T, error)
}

// Result carries the accepted value together with the identity of the
// provider that produced it.
type Result[T any] struct {
	Value    T
	Provider string
}

// Chain attempts providers strictly in order and stops at the first result
// satisfying the accept predicate. A provider is attempted at most once per
// Execute call; retries across pipeline cycles happen by re-invocation, not
// here.
type Chain[T any] struct {
	providers []Provider[T]
	accept    func(T) bool
	logger    *zap.Logger
}

// New builds a chain. accept may be nil, in which case any non-error result
// is taken.
func New[T any](logger *zap.Logger, providers []Provider[T], accept func(T) bool) *Chain[T] {
	return &Chain[T]{
		providers: providers,
		accept:    accept,
		logger:    logger,
	}
}

// Execute runs the chain. On provider error or predicate rejection it logs
// and moves on; when no provider yields an accepted result the returned
// error wraps ErrExhausted.
func (c *Chain[T]) Execute(ctx context.Context) (Result[T], error) {
	var zero Result[T]

	if len(c.providers) == 0 {
		return zero, fmt.Errorf("%w: no providers configured", ErrExhausted)
	}

	for _, provider := range c.providers {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := provider.Call(ctx)
		if err != nil {
			c.logger.Warn("Provider failed, trying next",
				zap.String("provider", provider.Name),
				zap.Error(err))
			continue
		}

		if c.accept != nil && !c.accept(value) {
			c.logger.Warn("Provider result rejected by acceptance check, trying next",
				zap.String("provider", provider.Name))
			continue
		}

		return Result[T]{Value: value, Provider: provider.Name}, nil
	}

	return zero, ErrExhausted
}
