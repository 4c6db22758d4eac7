package domtest

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/dashclone/dom"
)

// Element is a handle on a node of a synthetic Document.
type Element struct {
	doc *Document
	n   *html.Node
}

var _ dom.Element = (*Element)(nil)

// Query implements dom.Querier.
func (e *Element) Query(_ context.Context, selector string) (dom.Element, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	nodes, err := matchUnder(e.n, selector)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return &Element{doc: e.doc, n: nodes[0]}, nil
}

// QueryAll implements dom.Querier.
func (e *Element) QueryAll(_ context.Context, selector string) ([]dom.Element, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	nodes, err := matchUnder(e.n, selector)
	if err != nil {
		return nil, err
	}
	return e.doc.wrap(nodes), nil
}

// Click records the click and runs every matching handler.
func (e *Element) Click(_ context.Context) error {
	e.doc.mu.Lock()
	e.doc.clicks[e.n]++
	var fns []func(*Element)
	for _, h := range e.doc.handlers {
		if h.sel.Match(e.n) {
			fns = append(fns, h.fn)
		}
	}
	e.doc.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
	return nil
}

func (e *Element) Attribute(_ context.Context, name string) (string, bool, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	v, ok := attr(e.n, name)
	return v, ok, nil
}

func (e *Element) Classes(_ context.Context) ([]string, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	v, _ := attr(e.n, "class")
	return strings.Fields(v), nil
}

func (e *Element) Style(_ context.Context, prop string) (string, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	v, _ := attr(e.n, "style")
	for _, decl := range parseStyle(v) {
		if decl.prop == prop {
			return decl.value, nil
		}
	}
	return "", nil
}

func (e *Element) SetStyle(_ context.Context, prop, value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	v, _ := attr(e.n, "style")
	decls := parseStyle(v)

	found := false
	for i := 0; i < len(decls); i++ {
		if decls[i].prop != prop {
			continue
		}
		found = true
		if value == "" {
			decls = append(decls[:i], decls[i+1:]...)
			i--
			continue
		}
		decls[i].value = value
	}
	if !found && value != "" {
		decls = append(decls, styleDecl{prop: prop, value: value})
	}
	setAttr(e.n, "style", formatStyle(decls))
	return nil
}

func (e *Element) Children(_ context.Context) ([]dom.Element, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var out []dom.Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{doc: e.doc, n: c})
		}
	}
	return out, nil
}

func (e *Element) InnerHTML(_ context.Context) (string, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var buf bytes.Buffer
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("domtest: render: %w", err)
		}
	}
	return buf.String(), nil
}

// SetInnerHTML replaces the children and notifies observers.
func (e *Element) SetInnerHTML(_ context.Context, markup string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.n)
	if err != nil {
		return fmt.Errorf("domtest: set innerHTML: %w", err)
	}
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		e.n.AppendChild(n)
	}
	e.doc.notifyLocked()
	return nil
}

func (e *Element) ContentDocument(_ context.Context) (dom.Document, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	inner, ok := e.doc.frames[e.n]
	if !ok {
		return nil, nil
	}
	return inner, nil
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

type styleDecl struct {
	prop  string
	value string
}

func parseStyle(s string) []styleDecl {
	var out []styleDecl
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		out = append(out, styleDecl{prop: prop, value: strings.TrimSpace(value)})
	}
	return out
}

func formatStyle(decls []styleDecl) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value + ";"
	}
	return strings.Join(parts, " ")
}
