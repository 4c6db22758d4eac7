package dashboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hazyhaar/dashclone/dom"
)

// SelectComponents returns every dashboard component in document order,
// switching the dashboard to edit mode first when needed. Unlike
// OpenEditMode it does not wait: every element must already be present.
func (e *Editor) SelectComponents(ctx context.Context) ([]dom.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectComponents(ctx)
}

func (e *Editor) selectComponents(ctx context.Context) ([]dom.Element, error) {
	m := e.markers

	frame, err := e.root.Query(ctx, m.Frame)
	if err != nil {
		return nil, fmt.Errorf("dashboard: query frame: %w", err)
	}
	if frame == nil {
		return nil, ErrNoFrame
	}
	doc, err := frame.ContentDocument(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoInnerDocument, err)
	}
	if doc == nil {
		return nil, ErrNoInnerDocument
	}

	root, err := doc.Query(ctx, m.DashboardRoot)
	if err != nil {
		return nil, fmt.Errorf("dashboard: query dashboard root: %w", err)
	}
	if root == nil {
		return nil, ErrNoDashboardRoot
	}
	editable, err := isEditable(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("dashboard: read dashboard classes: %w", err)
	}
	if !editable {
		toggle, err := doc.Query(ctx, m.EditToggle)
		if err != nil {
			return nil, fmt.Errorf("dashboard: query edit toggle: %w", err)
		}
		if toggle == nil {
			return nil, ErrNoEditToggle
		}
		if err := toggle.Click(ctx); err != nil {
			return nil, fmt.Errorf("dashboard: click edit toggle: %w", err)
		}
	}

	comps, err := doc.QueryAll(ctx, m.Component)
	if err != nil {
		return nil, fmt.Errorf("dashboard: query components: %w", err)
	}
	if len(comps) == 0 {
		return nil, ErrNoComponents
	}
	return comps, nil
}

// LineAreaCharts keeps the components that draw a line or area chart: an
// SVG path made of line segments, and no arc path (pie charts).
func LineAreaCharts(ctx context.Context, comps []dom.Element) ([]dom.Element, error) {
	var out []dom.Element
	for _, c := range comps {
		if c == nil {
			continue
		}
		line, err := c.Query(ctx, lineAreaPathSelector)
		if err != nil {
			return nil, fmt.Errorf("dashboard: query line path: %w", err)
		}
		if line == nil {
			continue
		}
		arc, err := c.Query(ctx, arcPathSelector)
		if err != nil {
			return nil, fmt.Errorf("dashboard: query arc path: %w", err)
		}
		if arc == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// ResizeComponents sets width and height, in pixels, on every non-nil
// component. It returns how many were changed.
func ResizeComponents(ctx context.Context, comps []dom.Element, width, height int) (int, error) {
	w := strconv.Itoa(width) + "px"
	h := strconv.Itoa(height) + "px"
	n := 0
	for _, c := range comps {
		if c == nil {
			continue
		}
		if err := c.SetStyle(ctx, "width", w); err != nil {
			return n, fmt.Errorf("dashboard: resize: %w", err)
		}
		if err := c.SetStyle(ctx, "height", h); err != nil {
			return n, fmt.Errorf("dashboard: resize: %w", err)
		}
		n++
	}
	return n, nil
}

// MoveComponents shifts every non-nil component by the given pixel
// increments. Both increments must be positive; they are checked before
// any component is touched. A component with no parsable offset starts
// from 0.
func MoveComponents(ctx context.Context, comps []dom.Element, incTop, incLeft int) (int, error) {
	if incTop <= 0 {
		return 0, &ArgumentError{Arg: "top increment", Value: incTop, Reason: "must be greater than 0"}
	}
	if incLeft <= 0 {
		return 0, &ArgumentError{Arg: "left increment", Value: incLeft, Reason: "must be greater than 0"}
	}

	n := 0
	for _, c := range comps {
		if c == nil {
			continue
		}
		top, err := c.Style(ctx, "top")
		if err != nil {
			return n, fmt.Errorf("dashboard: move: %w", err)
		}
		left, err := c.Style(ctx, "left")
		if err != nil {
			return n, fmt.Errorf("dashboard: move: %w", err)
		}
		if err := c.SetStyle(ctx, "top", ShiftPixels(top, incTop)); err != nil {
			return n, fmt.Errorf("dashboard: move: %w", err)
		}
		if err := c.SetStyle(ctx, "left", ShiftPixels(left, incLeft)); err != nil {
			return n, fmt.Errorf("dashboard: move: %w", err)
		}
		n++
	}
	return n, nil
}

// BulkRequest selects the components a bulk edit applies to.
type BulkRequest struct {
	LineAreaOnly bool `json:"line_area_only"`
}

// BulkResult reports a bulk edit.
type BulkResult struct {
	Selected int `json:"selected"`
	Changed  int `json:"changed"`
}

// Resize selects components (optionally only line/area charts) and sets
// their size.
func (e *Editor) Resize(ctx context.Context, sel BulkRequest, width, height int) (*BulkResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	comps, err := e.pick(ctx, sel)
	if err != nil {
		return nil, err
	}
	n, err := ResizeComponents(ctx, comps, width, height)
	res := &BulkResult{Selected: len(comps), Changed: n}
	if err != nil {
		return res, err
	}
	e.logger.Info("dashboard: resized components", "changed", n, "width", width, "height", height)
	return res, nil
}

// Move selects components (optionally only line/area charts) and shifts
// them. Increments are validated before selection, since selecting may
// toggle edit mode.
func (e *Editor) Move(ctx context.Context, sel BulkRequest, incTop, incLeft int) (*BulkResult, error) {
	if _, err := MoveComponents(ctx, nil, incTop, incLeft); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	comps, err := e.pick(ctx, sel)
	if err != nil {
		return nil, err
	}
	n, err := MoveComponents(ctx, comps, incTop, incLeft)
	res := &BulkResult{Selected: len(comps), Changed: n}
	if err != nil {
		return res, err
	}
	e.logger.Info("dashboard: moved components", "changed", n, "top", incTop, "left", incLeft)
	return res, nil
}

func (e *Editor) pick(ctx context.Context, sel BulkRequest) ([]dom.Element, error) {
	comps, err := e.selectComponents(ctx)
	if err != nil {
		return nil, err
	}
	if sel.LineAreaOnly {
		return LineAreaCharts(ctx, comps)
	}
	return comps, nil
}

// Inventory snapshots the selected components. Index is the position among
// all components, so it stays stable when LineAreaOnly filters.
func (e *Editor) Inventory(ctx context.Context, sel BulkRequest) ([]Component, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	comps, err := e.selectComponents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Component, 0, len(comps))
	for i, el := range comps {
		if sel.LineAreaOnly {
			keep, err := LineAreaCharts(ctx, []dom.Element{el})
			if err != nil {
				return nil, err
			}
			if len(keep) == 0 {
				continue
			}
		}
		c, err := ReadComponent(ctx, el, i)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
