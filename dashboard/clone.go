package dashboard

import (
	"context"
	"fmt"

	"github.com/hazyhaar/dashclone/dom"
)

// CloneRequest asks for Count new components copied from the last Count
// existing ones, each shifted down by Spacing pixels and retitled with
// TransformTitle(title, Find, Replace). Replace is passed through the
// Editor's replacement sanitizer first; the default (SanitizeReplacement)
// strips markup and escapes HTML, so "R&D" is written as "R&amp;D".
type CloneRequest struct {
	Count   int    `json:"count"`
	Spacing int    `json:"spacing"`
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// CloneResult reports what a clone run did. It is returned alongside the
// error of a failed run: Created counts components that exist on the
// dashboard even though the run aborted.
type CloneResult struct {
	Requested int         `json:"requested"`
	Created   int         `json:"created"`
	Toggled   bool        `json:"toggled_edit_mode"`
	Templates []Component `json:"templates"`
	Clones    []Component `json:"clones"`
}

// CloneComponents creates new components through the host's add control,
// then copies size, position and title from the template batch onto the
// clone batch, matched by index in document order.
//
// The loop is strictly sequential: one click on the add control, one
// configuration panel, one apply, then wait for the add control to come
// back before the next iteration.
func (e *Editor) CloneComponents(ctx context.Context, req CloneRequest) (*CloneResult, error) {
	if req.Count < 1 {
		return nil, &ArgumentError{Arg: "count", Value: req.Count, Reason: "must be at least 1"}
	}

	if e.sanitize != nil {
		req.Replace = e.sanitize(req.Replace)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	res := &CloneResult{Requested: req.Count}
	m := e.markers

	sess, err := e.openEditMode(ctx)
	if err != nil {
		return res, err
	}
	res.Toggled = sess.Toggled
	doc := sess.Doc

	all, err := doc.QueryAll(ctx, m.Component)
	if err != nil {
		return res, fmt.Errorf("dashboard: query components: %w", err)
	}
	batch := lastN(all, req.Count)
	if len(batch) == 0 {
		return res, fmt.Errorf("%w (selector %q)", ErrNoComponents, m.Component)
	}
	if len(batch) < req.Count {
		e.logger.Warn("dashboard: fewer components than requested",
			"requested", req.Count, "found", len(batch))
	}

	offset := len(all) - len(batch)
	res.Templates = make([]Component, 0, len(batch))
	for i, el := range batch {
		c, err := ReadComponent(ctx, el, offset+i)
		if err != nil {
			return res, err
		}
		if !c.titled {
			return res, fmt.Errorf("%w (template %d)", ErrNoTitle, c.Index)
		}
		res.Templates = append(res.Templates, c)
	}

	add, err := e.wait.Element(ctx, doc, m.AddComponent)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrNoAddControl, err)
	}

	for i := range res.Templates {
		add, err = e.createComponent(ctx, doc, add)
		if err != nil {
			return res, fmt.Errorf("dashboard: create component %d/%d: %w", i+1, len(res.Templates), err)
		}
		res.Created++
		e.logger.Info("dashboard: created component",
			"n", i+1, "of", len(res.Templates))
	}

	found, err := e.wait.Elements(ctx, doc, m.Component)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrNoClones, err)
	}
	clones := lastN(found, len(res.Templates))
	if len(clones) < len(res.Templates) {
		return res, fmt.Errorf("%w: found %d, want %d", ErrNoClones, len(clones), len(res.Templates))
	}

	offset = len(found) - len(clones)
	res.Clones = make([]Component, 0, len(clones))
	for i, el := range clones {
		if err := transfer(ctx, res.Templates[i], el, req); err != nil {
			return res, fmt.Errorf("dashboard: transfer to clone %d: %w", i, err)
		}
		c, err := ReadComponent(ctx, el, offset+i)
		if err != nil {
			return res, err
		}
		res.Clones = append(res.Clones, c)
	}

	e.logger.Info("dashboard: clone complete",
		"count", len(res.Clones), "spacing", req.Spacing)
	return res, nil
}

// createComponent runs one add -> panel -> apply cycle and returns the add
// control found after the panel closed.
func (e *Editor) createComponent(ctx context.Context, doc dom.Document, add dom.Element) (dom.Element, error) {
	m := e.markers

	if err := add.Click(ctx); err != nil {
		return nil, fmt.Errorf("click add control: %w", err)
	}
	// The panel animates in; the apply control is not reliably present
	// when the panel node first appears.
	if err := e.settle.Panel(ctx); err != nil {
		return nil, err
	}

	panel, err := e.wait.Element(ctx, doc, m.ConfigPanel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoConfigPanel, err)
	}

	apply, err := e.findApply(ctx, panel)
	if err != nil {
		return nil, err
	}
	if err := apply.Click(ctx); err != nil {
		return nil, fmt.Errorf("click apply control: %w", err)
	}

	add, err = e.wait.Element(ctx, doc, m.AddComponent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoAddControl, err)
	}
	return add, nil
}

// findApply scans the panel's immediate children for the apply action.
func (e *Editor) findApply(ctx context.Context, panel dom.Element) (dom.Element, error) {
	m := e.markers
	kids, err := panel.Children(ctx)
	if err != nil {
		return nil, fmt.Errorf("read panel children: %w", err)
	}
	for _, k := range kids {
		v, ok, err := k.Attribute(ctx, m.ApplyAttr)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", m.ApplyAttr, err)
		}
		if ok && v == m.ApplyAction {
			return k, nil
		}
	}
	return nil, fmt.Errorf("%w (%s=%q among %d children)", ErrNoApplyControl, m.ApplyAttr, m.ApplyAction, len(kids))
}

// transfer copies the size styling of tmpl onto clone, shifts its top by
// req.Spacing and rewrites its title.
func transfer(ctx context.Context, tmpl Component, clone dom.Element, req CloneRequest) error {
	for _, prop := range SizeProps {
		if err := clone.SetStyle(ctx, prop, tmpl.Styles[prop]); err != nil {
			return fmt.Errorf("set %s: %w", prop, err)
		}
	}

	top, err := clone.Style(ctx, "top")
	if err != nil {
		return fmt.Errorf("read top: %w", err)
	}
	if err := clone.SetStyle(ctx, "top", ShiftPixels(top, req.Spacing)); err != nil {
		return fmt.Errorf("set top: %w", err)
	}

	title, err := titleElement(ctx, clone)
	if err != nil {
		return err
	}
	if title == nil {
		return ErrNoTitle
	}
	if err := title.SetInnerHTML(ctx, TransformTitle(tmpl.Title, req.Find, req.Replace)); err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	return nil
}
