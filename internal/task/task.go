// Package task provides the task contract and the group runner for clickplan.
//
// A Task is one locate-then-act unit: it drives its own Locators and reports
// the outcome as a Result. A Group runs an ordered list of tasks under a
// fail-fast or ignore-failure policy, optionally in random order and with a
// pacing delay between tasks.
//
// Ordinary failures are data, never errors: a failed task yields a failed
// Result and records a diagnostic retrievable through LastError.
//
// Import rules:
//   - CAN import: internal/clock, internal/ctxutil, internal/domain, internal/errors, internal/locator, std lib
//   - MUST NOT import: internal/actions, internal/plan, internal/cli
package task

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mrz1836/clickplan/internal/errors"
	"github.com/mrz1836/clickplan/internal/locator"
)

// Task is a named unit of work.
type Task interface {
	// Name returns the task's non-empty name.
	Name() string

	// Run performs the task. Implementations record a diagnostic through
	// LastError whenever they return a failed Result. Run is repeatable,
	// though its side effects (clicks) are not reversible.
	Run(ctx context.Context) Result

	// LastError returns the most recent diagnostic, or "" if none.
	LastError() string

	// Release frees every resource the task owns. Safe to call repeatedly.
	Release()
}

// Releasable is implemented by tasks that can report whether they were
// released. RunInstrumented refuses to run a released task.
type Releasable interface {
	Released() bool
}

// Base carries the state shared by concrete tasks: the name, the locators
// the task owns, and the last diagnostic. Concrete tasks embed *Base and
// implement Run.
type Base struct {
	name string

	mu       sync.Mutex
	locators map[string]*locator.Locator
	lastErr  string
	released bool
}

// NewBase returns a Base for a task called name.
func NewBase(name string) (*Base, error) {
	if name == "" {
		return nil, errors.Wrap(errors.ErrInvalidArgument, "task name is empty")
	}
	return &Base{
		name:     name,
		locators: make(map[string]*locator.Locator),
	}, nil
}

// Name returns the task name.
func (b *Base) Name() string {
	return b.name
}

// AddLocator hands ownership of l to the task under key. A locator cannot be
// registered twice, and keys are unique.
func (b *Base) AddLocator(key string, l *locator.Locator) error {
	if key == "" || l == nil {
		return errors.Wrapf(errors.ErrInvalidArgument, "task %q: locator key and value are required", b.name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return errors.Wrapf(errors.ErrReleased, "task %q", b.name)
	}
	if _, exists := b.locators[key]; exists {
		return errors.Wrapf(errors.ErrInvalidArgument, "task %q: locator %q already registered", b.name, key)
	}
	for k, existing := range b.locators {
		if existing == l {
			return errors.Wrapf(errors.ErrInvalidArgument, "task %q: locator already registered as %q", b.name, k)
		}
	}
	b.locators[key] = l
	return nil
}

// Locator returns the locator registered under key.
func (b *Base) Locator(key string) (*locator.Locator, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locators[key]
	return l, ok
}

// LocatorNames returns the registered keys, sorted.
func (b *Base) LocatorNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.locators))
	for k := range b.locators {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LastError returns the most recent diagnostic.
func (b *Base) LastError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// SetLastError overwrites the diagnostic.
func (b *Base) SetLastError(msg string) {
	b.mu.Lock()
	b.lastErr = msg
	b.mu.Unlock()
}

// Fail records msg and returns a failed Result.
func (b *Base) Fail(msg string) Result {
	b.SetLastError(msg)
	return Failed()
}

// Failf is Fail with a formatted message.
func (b *Base) Failf(format string, args ...any) Result {
	return b.Fail(fmt.Sprintf(format, args...))
}

// Succeed clears the diagnostic and returns a successful Result.
func (b *Base) Succeed() Result {
	b.SetLastError("")
	return Succeeded()
}

// Release releases every owned locator and forgets them.
func (b *Base) Release() {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.released = true
	owned := b.locators
	b.locators = make(map[string]*locator.Locator)
	b.mu.Unlock()

	for _, l := range owned {
		l.Release()
	}
}

// Released reports whether Release has been called.
func (b *Base) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}
