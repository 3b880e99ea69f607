package async

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
)

// SafeGo runs fn in a goroutine with panic recovery and a timeout. The
// child context keeps the parent's values (request ID, guild ID) but not
// its cancellation, so a fire-and-forget task such as an audit write
// outlives the HTTP response that triggered it.
//
// Use this instead of a bare `go func()` for background work whose failure
// should be logged but must never crash the process.
func SafeGo(parentCtx context.Context, timeout time.Duration, taskName string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parentCtx), timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				logrus.WithFields(logrus.Fields{
					"task":  taskName,
					"panic": r,
				}).Errorf("background task panicked\n%s", debug.Stack())
			}
		}()

		if err := fn(ctx); err != nil {
			logrus.WithField("task", taskName).WithError(err).Warn("background task failed")
		}
	}()
}

// SafeGoNoError is SafeGo for functions that do not return an error.
func SafeGoNoError(parentCtx context.Context, timeout time.Duration, taskName string, fn func(context.Context)) {
	SafeGo(parentCtx, timeout, taskName, func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
}
