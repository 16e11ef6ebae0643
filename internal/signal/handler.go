// Package signal turns SIGINT and SIGTERM into context cancellation so a run
// stops between pointer actions instead of mid-click.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package signal

import (
	"context"
	"os"
	ossignal "os/signal"
	"sync"
	"syscall"
)

// ExitCodeForced is the exit code used when a second signal forces exit.
const ExitCodeForced = 130

// Handler cancels its context on the first signal. A second signal calls
// the force function, which exits the process by default.
type Handler struct {
	ctx    context.Context //nolint:containedctx // the handler owns the context lifecycle
	cancel context.CancelFunc

	sigs  chan os.Signal
	done  chan struct{}
	force func()

	mu          sync.Mutex
	received    os.Signal
	count       int
	interrupted chan struct{}
	stopOnce    sync.Once
}

// Option configures a Handler.
type Option func(*Handler)

// WithForce replaces the action taken on the second signal.
func WithForce(f func()) Option {
	return func(h *Handler) {
		h.force = f
	}
}

// NewHandler starts listening for SIGINT and SIGTERM. Call Stop when done.
func NewHandler(parent context.Context, opts ...Option) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		sigs:        make(chan os.Signal, 2),
		done:        make(chan struct{}),
		force:       func() { os.Exit(ExitCodeForced) },
		interrupted: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	ossignal.Notify(h.sigs, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()
	return h
}

// Context is canceled by the first signal or by Stop.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted is closed by the first signal.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Received returns the first signal, or nil.
func (h *Handler) Received() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// OnInterrupt calls f with the first signal from a separate goroutine. The
// returned stop function ends the wait and returns once f, if it was
// called, has finished.
func (h *Handler) OnInterrupt(f func(sig os.Signal)) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-h.Interrupted():
			f(h.Received())
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}

// Stop stops listening and cancels the context. It is idempotent.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		ossignal.Stop(h.sigs)
		close(h.done)
		h.cancel()
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.done:
			return
		case sig := <-h.sigs:
			h.handle(sig)
		}
	}
}

func (h *Handler) handle(sig os.Signal) {
	h.mu.Lock()
	h.count++
	first := h.count == 1
	if first {
		h.received = sig
	}
	h.mu.Unlock()

	if first {
		h.cancel()
		close(h.interrupted)
		return
	}
	h.force()
}
