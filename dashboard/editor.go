// Package dashboard drives the edit workflows of the embedded dashboard:
// entering edit mode, cloning groups of components, and bulk restyling.
//
// The dashboard renders inside an iframe and has no readiness events, so
// every step waits on the document through package waiter, with settle
// delays where the host animates without any observable signal. Fatal
// errors abort the workflow in place: components created before the
// failure are left on the dashboard.
package dashboard

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/dashclone/dom"
	"github.com/hazyhaar/dashclone/settle"
	"github.com/hazyhaar/dashclone/waiter"
)

// DefaultSettleDelay is the fixed settle used at each stage by default.
const DefaultSettleDelay = 500 * time.Millisecond

// Settle holds the settle delays of each stage.
type Settle struct {
	Boot   settle.Func // before looking for the frame
	Toggle settle.Func // after clicking the edit toggle
	Panel  settle.Func // after clicking add, before waiting for the panel
}

// DefaultSettle returns fixed delays of DefaultSettleDelay.
func DefaultSettle() Settle {
	return Settle{
		Boot:   settle.Fixed(DefaultSettleDelay),
		Toggle: settle.Fixed(DefaultSettleDelay),
		Panel:  settle.Fixed(DefaultSettleDelay),
	}
}

func (s Settle) withDefaults() Settle {
	if s.Boot == nil {
		s.Boot = settle.Fixed(DefaultSettleDelay)
	}
	if s.Toggle == nil {
		s.Toggle = settle.Fixed(DefaultSettleDelay)
	}
	if s.Panel == nil {
		s.Panel = settle.Fixed(DefaultSettleDelay)
	}
	return s
}

// Editor runs workflows against one outer document. Workflows on the same
// Editor are serialized: the host exposes a single add control and a single
// configuration panel, and interleaved clicks would mismatch them.
type Editor struct {
	mu          sync.Mutex
	root        dom.Document
	wait        *waiter.Waiter
	waitTimeout time.Duration
	markers     Markers
	settle      Settle
	sanitize    func(string) string
	logger      *slog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithMarkers overrides the selector vocabulary. Empty fields keep defaults.
func WithMarkers(m Markers) Option {
	return func(e *Editor) { e.markers = m.WithDefaults() }
}

// WithWaitTimeout sets the deadline of every element wait. Default: 10s.
func WithWaitTimeout(d time.Duration) Option {
	return func(e *Editor) { e.waitTimeout = d }
}

// WithSettle overrides the settle delays. Nil stages keep defaults.
func WithSettle(s Settle) Option {
	return func(e *Editor) { e.settle = s.withDefaults() }
}

// WithReplacementSanitizer filters the replacement text of every clone
// request. Default: SanitizeReplacement. nil writes replacements verbatim.
func WithReplacementSanitizer(fn func(string) string) Option {
	return func(e *Editor) { e.sanitize = fn }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Editor for the outer document root.
func New(root dom.Document, opts ...Option) *Editor {
	e := &Editor{
		root:        root,
		waitTimeout: waiter.DefaultTimeout,
		markers:     DefaultMarkers(),
		settle:      DefaultSettle(),
		sanitize:    SanitizeReplacement,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	e.wait = waiter.New(root, waiter.WithTimeout(e.waitTimeout), waiter.WithLogger(e.logger))
	return e
}

// Markers returns the selector vocabulary in use.
func (e *Editor) Markers() Markers { return e.markers }
