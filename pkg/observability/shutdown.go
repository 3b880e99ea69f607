package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownFunc releases one resource during shutdown.
type ShutdownFunc func(context.Context) error

type shutdownStep struct {
	name string
	fn   ShutdownFunc
}

// ShutdownManager drains the API server on SIGINT/SIGTERM and then runs the
// registered shutdown steps in registration order, so callers can register
// dependents before their dependencies (HTTP surfaces first, connections
// last).
type ShutdownManager struct {
	logger  *Logger
	server  *http.Server
	timeout time.Duration

	mu    sync.Mutex
	steps []shutdownStep
}

// NewShutdownManager creates a shutdown manager for the given server. A zero
// timeout defaults to 30 seconds.
func NewShutdownManager(logger *Logger, server *http.Server, timeout time.Duration) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{
		logger:  logger,
		server:  server,
		timeout: timeout,
	}
}

// RegisterShutdownFunc appends a named shutdown step. Steps run in
// registration order after the server has drained.
func (sm *ShutdownManager) RegisterShutdownFunc(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.steps = append(sm.steps, shutdownStep{name: name, fn: fn})
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then performs the
// shutdown sequence.
func (sm *ShutdownManager) WaitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	sm.logger.Infof("Received %s, shutting down", sig)

	return sm.Shutdown()
}

// Shutdown drains the HTTP server and runs every registered step in order,
// all under one deadline. Step failures are collected, not fatal: a broken
// connection close must not keep the next resource from closing. Steps
// remaining when the deadline passes are skipped.
func (sm *ShutdownManager) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	var errs []error

	if sm.server != nil {
		sm.logger.Info("Draining API server")
		if err := sm.server.Shutdown(ctx); err != nil {
			sm.logger.WithError(err).Error("API server drain failed")
			errs = append(errs, fmt.Errorf("api server: %w", err))
		}
	}

	sm.mu.Lock()
	steps := sm.steps
	sm.mu.Unlock()

	for _, step := range steps {
		if ctx.Err() != nil {
			sm.logger.Warnf("Shutdown deadline passed, skipping %q and later steps", step.name)
			errs = append(errs, fmt.Errorf("shutdown deadline passed before %q", step.name))
			break
		}
		if err := step.fn(ctx); err != nil {
			sm.logger.WithError(err).Errorf("Shutdown step %q failed", step.name)
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	sm.logger.Info("Shutdown complete")
	return nil
}
