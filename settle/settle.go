// Package settle provides the waits inserted where the host UI renders
// asynchronously and offers no readiness signal.
//
// A Func is a timing assumption about the host, not part of the editing
// algorithm. Fixed reproduces the plain delay; UntilQuiet replaces it with
// a bounded poll that returns once the document has stopped changing.
package settle

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/dashclone/dom"
)

// Func blocks until the host is assumed to have settled.
type Func func(ctx context.Context) error

// None returns immediately.
func None() Func {
	return func(context.Context) error { return nil }
}

// Fixed sleeps for d, or until ctx is done.
func Fixed(d time.Duration) Func {
	return func(ctx context.Context) error {
		if d <= 0 {
			return nil
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// UntilQuiet waits until doc reports no structural change for quiet, giving
// up (without error) after ceiling. A document that cannot be observed falls
// back to a fixed wait of quiet.
func UntilQuiet(doc dom.Document, quiet, ceiling time.Duration) Func {
	return func(ctx context.Context) error {
		if quiet <= 0 {
			return nil
		}
		if ceiling < quiet {
			ceiling = quiet
		}
		changes, stop, err := doc.Observe(ctx)
		if err != nil {
			if ferr := Fixed(quiet)(ctx); ferr != nil {
				return ferr
			}
			return nil
		}
		defer stop()

		timer := time.NewTimer(quiet)
		defer timer.Stop()
		limit := time.NewTimer(ceiling)
		defer limit.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-limit.C:
				return nil
			case <-timer.C:
				return nil
			case _, ok := <-changes:
				if !ok {
					return fmt.Errorf("settle: observer closed")
				}
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(quiet)
			}
		}
	}
}
