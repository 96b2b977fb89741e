package locker

import "context"

// AdvisoryLocker serialises critical sections across server replicas. WithLock holds
// the lock for the duration of fn.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
