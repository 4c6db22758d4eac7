package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/dashclone/dom"
)

// Document is a dom.Document backed by a Rod page: the top-level document
// of a tab, or the document of a frame.
type Document struct {
	page   *rod.Page
	poll   time.Duration
	logger *slog.Logger
}

var _ dom.Document = (*Document)(nil)

func newDocument(page *rod.Page, poll time.Duration, logger *slog.Logger) *Document {
	return &Document{page: page, poll: poll, logger: logger}
}

// Query implements dom.Querier.
func (d *Document) Query(ctx context.Context, selector string) (dom.Element, error) {
	els, err := d.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: query %q: %w", selector, err)
	}
	if len(els) == 0 {
		return nil, nil
	}
	return d.wrap(els[0]), nil
}

// QueryAll implements dom.Querier.
func (d *Document) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	els, err := d.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: query %q: %w", selector, err)
	}
	return d.wrapAll(els), nil
}

// Observe subscribes to CDP DOM child-list events. CDP only reports
// mutations under nodes it has sent to the client, so the whole tree is
// requested first (depth -1, piercing frames), and a fallback tick every
// poll interval covers subtrees rendered before tracking caught up.
func (d *Document) Observe(ctx context.Context) (<-chan struct{}, func(), error) {
	obsCtx, cancel := context.WithCancel(ctx)
	p := d.page.Context(obsCtx)

	ch := make(chan struct{}, 1)
	signal := func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}

	// Subscribe before tracking so no insertion is missed in between.
	wait := p.EachEvent(
		func(*proto.DOMChildNodeInserted) { signal() },
		func(*proto.DOMChildNodeRemoved) { signal() },
		func(*proto.DOMChildNodeCountUpdated) { signal() },
		func(*proto.DOMDocumentUpdated) { signal() },
	)

	go wait()

	if err := (proto.DOMEnable{}).Call(p); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("browser: DOM.enable: %w", err)
	}
	depth := -1
	if _, err := (proto.DOMGetDocument{Depth: &depth, Pierce: true}).Call(p); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("browser: DOM.getDocument: %w", err)
	}

	if d.poll > 0 {
		go func() {
			tick := time.NewTicker(d.poll)
			defer tick.Stop()
			for {
				select {
				case <-obsCtx.Done():
					return
				case <-tick.C:
					signal()
				}
			}
		}()
	}

	d.logger.Debug("browser: observing document", "poll", d.poll)
	return ch, sync.OnceFunc(cancel), nil
}

func (d *Document) wrap(el *rod.Element) *Element {
	return &Element{el: el, doc: d}
}

func (d *Document) wrapAll(els rod.Elements) []dom.Element {
	out := make([]dom.Element, len(els))
	for i, el := range els {
		out[i] = d.wrap(el)
	}
	return out
}

// Element is a dom.Element backed by a Rod element.
type Element struct {
	el  *rod.Element
	doc *Document
}

var _ dom.Element = (*Element)(nil)

// Query implements dom.Querier.
func (e *Element) Query(ctx context.Context, selector string) (dom.Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: query %q: %w", selector, err)
	}
	if len(els) == 0 {
		return nil, nil
	}
	return e.doc.wrap(els[0]), nil
}

// QueryAll implements dom.Querier.
func (e *Element) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: query %q: %w", selector, err)
	}
	return e.doc.wrapAll(els), nil
}

// Click dispatches a script-level click. A trusted mouse click would need
// the element scrolled into view and unobstructed, which the dashboard's
// overlays do not guarantee.
func (e *Element) Click(ctx context.Context) error {
	if _, err := e.el.Context(ctx).Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("browser: click: %w", err)
	}
	return nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, fmt.Errorf("browser: attribute %s: %w", name, err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *Element) Classes(ctx context.Context) ([]string, error) {
	res, err := e.el.Context(ctx).Eval(`() => Array.from(this.classList)`)
	if err != nil {
		return nil, fmt.Errorf("browser: classes: %w", err)
	}
	arr := res.Value.Arr()
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, v.Str())
	}
	return out, nil
}

func (e *Element) Style(ctx context.Context, prop string) (string, error) {
	res, err := e.el.Context(ctx).Eval(`(p) => this.style.getPropertyValue(p)`, prop)
	if err != nil {
		return "", fmt.Errorf("browser: style %s: %w", prop, err)
	}
	return res.Value.Str(), nil
}

func (e *Element) SetStyle(ctx context.Context, prop, value string) error {
	_, err := e.el.Context(ctx).Eval(`(p, v) => {
		if (v === "") { this.style.removeProperty(p) } else { this.style.setProperty(p, v) }
	}`, prop, value)
	if err != nil {
		return fmt.Errorf("browser: set style %s: %w", prop, err)
	}
	return nil
}

func (e *Element) Children(ctx context.Context) ([]dom.Element, error) {
	els, err := e.el.Context(ctx).Elements(":scope > *")
	if err != nil {
		return nil, fmt.Errorf("browser: children: %w", err)
	}
	return e.doc.wrapAll(els), nil
}

func (e *Element) InnerHTML(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(`() => this.innerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: innerHTML: %w", err)
	}
	return res.Value.Str(), nil
}

func (e *Element) SetInnerHTML(ctx context.Context, html string) error {
	if _, err := e.el.Context(ctx).Eval(`(h) => { this.innerHTML = h }`, html); err != nil {
		return fmt.Errorf("browser: set innerHTML: %w", err)
	}
	return nil
}

// ContentDocument resolves the document of a frame element. Elements that
// are not frames, and frames whose document is not reachable (cross-origin
// or not yet attached), report none.
func (e *Element) ContentDocument(ctx context.Context) (dom.Document, error) {
	el := e.el.Context(ctx)
	res, err := el.Eval(`() => (this.tagName === "IFRAME" || this.tagName === "FRAME") && this.contentDocument !== null`)
	if err != nil {
		return nil, fmt.Errorf("browser: inspect frame: %w", err)
	}
	if !res.Value.Bool() {
		return nil, nil
	}
	fr, err := el.Frame()
	if err != nil {
		return nil, fmt.Errorf("browser: frame: %w", err)
	}
	return newDocument(fr, e.doc.poll, e.doc.logger), nil
}

// EventsOnly returns a view of d whose Observe reports CDP events only,
// without the fallback tick. Quiet-period settles need it: the tick never
// lets the document look quiet.
func (d *Document) EventsOnly() *Document {
	return &Document{page: d.page, logger: d.logger}
}
