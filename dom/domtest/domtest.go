// Package domtest provides a synthetic, in-memory dom.Document for tests.
//
// The tree is parsed with golang.org/x/net/html and queried with cascadia
// selectors, so fixtures are written as plain markup. Structural edits made
// through Append, Remove and SetInnerHTML notify observers the way a
// childList+subtree MutationObserver would; style edits do not.
//
// Click handlers registered with OnClick run synchronously inside Click, on
// the caller's goroutine. Handlers that need to simulate asynchronous
// rendering should start their own goroutine.
package domtest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/hazyhaar/dashclone/dom"
)

// Document is a mutable synthetic tree. Safe for concurrent use.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	observers map[int]chan struct{}
	nextObs   int
	observed  int
	handlers  []clickHandler
	clicks    map[*html.Node]int
	frames    map[*html.Node]*Document
}

type clickHandler struct {
	sel cascadia.Selector
	fn  func(*Element)
}

// Parse builds a Document from markup.
func Parse(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("domtest: parse: %w", err)
	}
	return &Document{
		root:      root,
		observers: make(map[int]chan struct{}),
		clicks:    make(map[*html.Node]int),
		frames:    make(map[*html.Node]*Document),
	}, nil
}

// MustParse is Parse that panics on error. For fixtures only.
func MustParse(markup string) *Document {
	d, err := Parse(markup)
	if err != nil {
		panic(err)
	}
	return d
}

// Query implements dom.Querier.
func (d *Document) Query(_ context.Context, selector string) (dom.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes, err := matchUnder(d.root, selector)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return &Element{doc: d, n: nodes[0]}, nil
}

// QueryAll implements dom.Querier.
func (d *Document) QueryAll(_ context.Context, selector string) ([]dom.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes, err := matchUnder(d.root, selector)
	if err != nil {
		return nil, err
	}
	return d.wrap(nodes), nil
}

// Observe implements dom.Document.
func (d *Document) Observe(ctx context.Context) (<-chan struct{}, func(), error) {
	d.mu.Lock()
	id := d.nextObs
	d.nextObs++
	d.observed++
	ch := make(chan struct{}, 1)
	d.observers[id] = ch
	d.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.observers, id)
			d.mu.Unlock()
		})
	}
	stopAfter := context.AfterFunc(ctx, release)
	stop := func() {
		stopAfter()
		release()
	}
	return ch, stop, nil
}

// ActiveObservers reports subscriptions that have not been released.
func (d *Document) ActiveObservers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.observers)
}

// ObserveCalls reports how many subscriptions were ever opened.
func (d *Document) ObserveCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.observed
}

// Notify delivers a structural-change signal without changing the tree.
func (d *Document) Notify() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifyLocked()
}

// OnClick registers fn for clicks on any element matching selector. The
// selector is evaluated at click time.
func (d *Document) OnClick(selector string, fn func(*Element)) error {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return fmt.Errorf("domtest: selector %q: %w", selector, err)
	}
	d.mu.Lock()
	d.handlers = append(d.handlers, clickHandler{sel: sel, fn: fn})
	d.mu.Unlock()
	return nil
}

// ClickCount sums the clicks received by elements currently matching selector.
func (d *Document) ClickCount(selector string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes, err := matchUnder(d.root, selector)
	if err != nil {
		return 0
	}
	total := 0
	for _, n := range nodes {
		total += d.clicks[n]
	}
	return total
}

// Append parses markup and appends it to the first element matching
// parentSelector.
func (d *Document) Append(parentSelector, markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes, err := matchUnder(d.root, parentSelector)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("domtest: append: no element matches %q", parentSelector)
	}
	parent := nodes[0]
	frag, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return fmt.Errorf("domtest: append: %w", err)
	}
	for _, n := range frag {
		parent.AppendChild(n)
	}
	d.notifyLocked()
	return nil
}

// Remove detaches every element matching selector and returns how many
// were removed.
func (d *Document) Remove(selector string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes, err := matchUnder(d.root, selector)
	if err != nil {
		return 0, err
	}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	if len(nodes) > 0 {
		d.notifyLocked()
	}
	return len(nodes), nil
}

// SetAttribute sets an attribute on every element matching selector.
// Observers are not notified.
func (d *Document) SetAttribute(selector, name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes, err := matchUnder(d.root, selector)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("domtest: set attribute: no element matches %q", selector)
	}
	for _, n := range nodes {
		setAttr(n, name, value)
	}
	return nil
}

// SetFrame makes the first element matching selector host inner as its
// content document. A nil inner detaches it.
func (d *Document) SetFrame(selector string, inner *Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes, err := matchUnder(d.root, selector)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("domtest: frame: no element matches %q", selector)
	}
	if inner == nil {
		delete(d.frames, nodes[0])
		return nil
	}
	d.frames[nodes[0]] = inner
	return nil
}

// HTML renders the whole tree.
func (d *Document) HTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf bytes.Buffer
	html.Render(&buf, d.root)
	return buf.String()
}

func (d *Document) notifyLocked() {
	for _, ch := range d.observers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (d *Document) wrap(nodes []*html.Node) []dom.Element {
	out := make([]dom.Element, len(nodes))
	for i, n := range nodes {
		out[i] = &Element{doc: d, n: n}
	}
	return out
}

// matchUnder returns the descendants of n matching selector, in document
// order, excluding n itself.
func matchUnder(n *html.Node, selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("domtest: selector %q: %w", selector, err)
	}
	var out []*html.Node
	for _, m := range sel.MatchAll(n) {
		if m != n {
			out = append(out, m)
		}
	}
	return out, nil
}
