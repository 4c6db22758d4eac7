// Package dom defines the document-tree surface the dashboard editor drives.
//
// A Document is a tree of renderable nodes: the outer page, or the tree
// rendered inside an embedded frame. The editor never owns one; callers pass
// it into every operation. Implementations live in internal/browser (a live
// Chrome tab driven through Rod) and dom/domtest (a synthetic tree for tests).
package dom

import "context"

// Querier resolves CSS selectors against a subtree.
type Querier interface {
	// Query returns the first match in document order, or nil with a nil
	// error when nothing matches.
	Query(ctx context.Context, selector string) (Element, error)

	// QueryAll returns every match in document order. An empty result is
	// not an error.
	QueryAll(ctx context.Context, selector string) ([]Element, error)
}

// Document is a queryable tree that can report structural changes.
type Document interface {
	Querier

	// Observe subscribes to node insertions and removals anywhere under the
	// document. Every change delivers at most one pending signal on the
	// returned channel (signals coalesce). stop releases the subscription
	// and is safe to call more than once.
	Observe(ctx context.Context) (changes <-chan struct{}, stop func(), err error)
}

// Element is a single node in a Document.
type Element interface {
	Querier

	// Click activates the element the way a script-level click() does.
	Click(ctx context.Context) error

	// Attribute returns the raw attribute value and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)

	// Classes returns the class list. An element with an empty class
	// attribute has no classes.
	Classes(ctx context.Context) ([]string, error)

	// Style returns an inline style property (e.g. "top"), or "" when unset.
	Style(ctx context.Context, prop string) (string, error)

	// SetStyle writes an inline style property. An empty value removes it.
	SetStyle(ctx context.Context, prop, value string) error

	// Children returns the immediate element children in document order.
	Children(ctx context.Context) ([]Element, error)

	InnerHTML(ctx context.Context) (string, error)
	SetInnerHTML(ctx context.Context, html string) error

	// ContentDocument returns the document hosted by a frame element, or
	// nil with a nil error when the element hosts none.
	ContentDocument(ctx context.Context) (Document, error)
}
