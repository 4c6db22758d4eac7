// Package waiter blocks until a selector matches inside a dom.Document.
//
// The host dashboard renders asynchronously and never announces readiness,
// so every step of the editing workflow is expressed as "wait until this
// selector matches". A Wait resolves on the immediate query when possible;
// otherwise it subscribes to structural changes, re-runs the query on each
// signal, and gives up at the deadline. The subscription is released on
// every path.
package waiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/dashclone/dom"
)

// DefaultTimeout applies when neither the Request nor the Waiter set one.
const DefaultTimeout = 10 * time.Second

// Multiplicity selects what satisfies a Request.
type Multiplicity int

const (
	Single   Multiplicity = iota // first match
	Multiple                     // every current match, at least one
)

func (m Multiplicity) String() string {
	if m == Multiple {
		return "multiple"
	}
	return "single"
}

// Request describes one wait. A nil Scope means the Waiter's root document.
// A zero Timeout means the Waiter's timeout.
type Request struct {
	Selector     string
	Scope        dom.Document
	Multiplicity Multiplicity
	Timeout      time.Duration
}

// Waiter issues Requests against a root document.
type Waiter struct {
	root    dom.Document
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Waiter.
type Option func(*Waiter)

// WithTimeout sets the default deadline. Default: DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(w *Waiter) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Waiter) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a Waiter whose requests default to root.
func New(root dom.Document, opts ...Option) *Waiter {
	w := &Waiter{
		root:    root,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Root returns the document used when a Request has no Scope.
func (w *Waiter) Root() dom.Document { return w.root }

// Timeout returns the default deadline.
func (w *Waiter) Timeout() time.Duration { return w.timeout }

// Element waits for the first match of selector in scope.
func (w *Waiter) Element(ctx context.Context, scope dom.Document, selector string) (dom.Element, error) {
	els, err := w.Wait(ctx, Request{Selector: selector, Scope: scope, Multiplicity: Single})
	if err != nil {
		return nil, err
	}
	return els[0], nil
}

// Elements waits until selector matches at least once in scope and returns
// every match in document order.
func (w *Waiter) Elements(ctx context.Context, scope dom.Document, selector string) ([]dom.Element, error) {
	return w.Wait(ctx, Request{Selector: selector, Scope: scope, Multiplicity: Multiple})
}

// Wait runs req to completion. On success the slice holds exactly one
// element in Single mode and at least one in Multiple mode. On deadline it
// returns a *TimeoutError.
func (w *Waiter) Wait(ctx context.Context, req Request) ([]dom.Element, error) {
	scope := req.Scope
	if scope == nil {
		scope = w.root
	}
	if scope == nil {
		return nil, errors.New("waiter: no scope and no root document")
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = w.timeout
	}

	// The deadline counts from the request, not from the subscription.
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	found, err := probe(ctx, scope, req)
	if err != nil || found != nil {
		return found, err
	}

	changes, stop, err := scope.Observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("waiter: observe %q: %w", req.Selector, err)
	}
	defer stop()

	// A change may land between the first probe and the subscription.
	found, err = probe(ctx, scope, req)
	if err != nil || found != nil {
		return found, err
	}

	w.logger.Debug("waiter: observing", "selector", req.Selector,
		"multiplicity", req.Multiplicity, "timeout", timeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timer.C:
			w.logger.Debug("waiter: timed out", "selector", req.Selector, "timeout", timeout)
			return nil, &TimeoutError{Selector: req.Selector, After: timeout}

		case _, ok := <-changes:
			if !ok {
				return nil, fmt.Errorf("waiter: %q: %w", req.Selector, ErrObserverClosed)
			}
			found, err := probe(ctx, scope, req)
			if err != nil || found != nil {
				return found, err
			}
		}
	}
}

// probe runs the query once. A nil slice with a nil error means "not yet".
func probe(ctx context.Context, scope dom.Document, req Request) ([]dom.Element, error) {
	if req.Multiplicity == Multiple {
		els, err := scope.QueryAll(ctx, req.Selector)
		if err != nil {
			return nil, fmt.Errorf("waiter: query %q: %w", req.Selector, err)
		}
		if len(els) == 0 {
			return nil, nil
		}
		return els, nil
	}

	el, err := scope.Query(ctx, req.Selector)
	if err != nil {
		return nil, fmt.Errorf("waiter: query %q: %w", req.Selector, err)
	}
	if el == nil {
		return nil, nil
	}
	return []dom.Element{el}, nil
}
