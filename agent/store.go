package agent

import (
	"context"
)

// Store scopes a Cache to one namespace. The entry key is the state key of
// the context, so every conversation gets its own entry.
type Store[S any] struct {
	core      Cache[S]
	namespace string
}

func NewStore[S any](core Cache[S], namespace string) Store[S] {
	return Store[S]{core: core, namespace: namespace}
}

// Key is the cache key used for the conversation routed by ctx.
func (s Store[S]) Key(ctx context.Context) string {
	return s.namespace + ":" + stateKey(ctx)
}

func (s Store[S]) Set(ctx context.Context, val S) error {
	return s.core.Set(ctx, s.Key(ctx), val)
}

func (s Store[S]) Get(ctx context.Context) (S, bool, error) {
	return s.core.Get(ctx, s.Key(ctx))
}

func (s Store[S]) Del(ctx context.Context) error {
	return s.core.Del(ctx, s.Key(ctx))
}
