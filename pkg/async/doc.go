// Package async provides a safe fire-and-forget goroutine primitive.
//
// SafeGo runs a function in the background with panic recovery and a
// timeout, detached from the caller's cancellation. The audit fan-out
// uses it so that persisting an audit event never blocks, and never
// dies with, the request that produced it.
//
//	async.SafeGo(r.Context(), 5*time.Second, "audit write", func(ctx context.Context) error {
//		return logger.Log(ctx, event)
//	})
package async
