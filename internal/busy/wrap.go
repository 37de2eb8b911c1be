package busy

import "context"

// Wrap registers an operation on c, runs op, and completes the registration
// exactly once however op ends: value, error, cancellation or panic. The
// result and error of op are returned unchanged.
func Wrap[T any](ctx context.Context, c *Counter, op func(context.Context) (T, error)) (T, error) {
	h := c.Register()
	defer func() { _ = c.Complete(h) }()

	return op(ctx)
}

// Do is Wrap for operations that only return an error.
func Do(ctx context.Context, c *Counter, op func(context.Context) error) error {
	_, err := Wrap(ctx, c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

type result[T any] struct {
	value T
	err   error
}

// Go runs op in the background. The operation is registered before Go
// returns and completed exactly once. then receives op's outcome unless ctx
// is cancelled first, in which case the registration is completed and then
// is never called. then may be nil.
func Go[T any](ctx context.Context, c *Counter, op func(context.Context) (T, error), then func(T, error)) {
	h := c.Register()

	opCtx, cancel := context.WithCancel(ctx)
	results := make(chan result[T], 1)

	go func() {
		v, err := op(opCtx)
		results <- result[T]{value: v, err: err}
	}()

	go func() {
		defer cancel()

		select {
		case r := <-results:
			_ = c.Complete(h)
			if then != nil && ctx.Err() == nil {
				then(r.value, r.err)
			}
		case <-ctx.Done():
			_ = c.Complete(h)
		}
	}()
}
