package dashboard

import (
	"context"
	"fmt"

	"github.com/hazyhaar/dashclone/dom"
)

// State is a step of OpenEditMode.
type State int

const (
	StateStart State = iota
	StateFramePrimed
	StateInnerDocResolved
	StateDashboardRootFound
	StateAlreadyEditable
	StateToggledEditable
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateFramePrimed:
		return "frame_primed"
	case StateInnerDocResolved:
		return "inner_doc_resolved"
	case StateDashboardRootFound:
		return "dashboard_root_found"
	case StateAlreadyEditable:
		return "already_editable"
	case StateToggledEditable:
		return "toggled_editable"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// EditSession is the dashboard in edit mode.
type EditSession struct {
	Frame   dom.Element
	Doc     dom.Document
	Toggled bool // the edit toggle was clicked to get here
}

// OpenEditMode brings the dashboard into edit mode and returns the frame
// and its inner document. None of the failures are retried.
func (e *Editor) OpenEditMode(ctx context.Context) (*EditSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.openEditMode(ctx)
}

func (e *Editor) openEditMode(ctx context.Context) (*EditSession, error) {
	m := e.markers
	state := StateStart
	step := func(next State) {
		e.logger.Debug("dashboard: edit mode", "from", state, "to", next)
		state = next
	}

	// The frame bootstraps with no readiness signal.
	if err := e.settle.Boot(ctx); err != nil {
		return nil, err
	}

	frame, err := e.wait.Element(ctx, e.root, m.Frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoFrame, err)
	}
	step(StateFramePrimed)

	doc, err := frame.ContentDocument(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoInnerDocument, err)
	}
	if doc == nil {
		return nil, ErrNoInnerDocument
	}
	step(StateInnerDocResolved)

	root, err := e.wait.Element(ctx, doc, m.DashboardRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDashboardRoot, err)
	}
	step(StateDashboardRootFound)

	editable, err := isEditable(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("dashboard: read dashboard classes: %w", err)
	}

	sess := &EditSession{Frame: frame, Doc: doc}
	if editable {
		step(StateAlreadyEditable)
	} else {
		toggle, err := e.wait.Element(ctx, doc, m.EditToggle)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoEditToggle, err)
		}
		if err := toggle.Click(ctx); err != nil {
			return nil, fmt.Errorf("dashboard: click edit toggle: %w", err)
		}
		if err := e.settle.Toggle(ctx); err != nil {
			return nil, err
		}
		sess.Toggled = true
		step(StateToggledEditable)
	}

	step(StateDone)
	e.logger.Info("dashboard: edit mode open", "toggled", sess.Toggled)
	return sess, nil
}

// isEditable reports whether the dashboard root is already in edit mode.
// The host marks edit mode by adding classes; a root with no class is in
// view mode.
func isEditable(ctx context.Context, root dom.Element) (bool, error) {
	classes, err := root.Classes(ctx)
	if err != nil {
		return false, err
	}
	return len(classes) > 0, nil
}
