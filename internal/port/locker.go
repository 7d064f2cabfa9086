package port

import "context"

type Locker interface {
	// Acquire blocks until key is held or ctx is done. The returned release
	// must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}
