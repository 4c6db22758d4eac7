package waiter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/dashclone/dom"
	"github.com/hazyhaar/dashclone/dom/domtest"
)

// countingDoc signals every single-element query on queried.
type countingDoc struct {
	*domtest.Document
	queried chan struct{}
}

func (c *countingDoc) Query(ctx context.Context, selector string) (dom.Element, error) {
	el, err := c.Document.Query(ctx, selector)
	c.queried <- struct{}{}
	return el, err
}

func TestWait_ImmediateMatchSkipsObserver(t *testing.T) {
	doc := domtest.MustParse(`<div id="dashboard"></div>`)
	w := New(doc)

	el, err := w.Element(context.Background(), nil, "#dashboard")
	if err != nil {
		t.Fatalf("Element: %v", err)
	}
	if el == nil {
		t.Fatal("Element: got nil")
	}
	if n := doc.ObserveCalls(); n != 0 {
		t.Errorf("ObserveCalls: got %d, want 0", n)
	}
}

func TestWait_ResolvesOnFirstSuccessfulNotification(t *testing.T) {
	doc := &countingDoc{
		Document: domtest.MustParse(`<div id="root"></div>`),
		queried:  make(chan struct{}, 64),
	}
	w := New(doc, WithTimeout(5*time.Second))

	go func() {
		// Initial probe plus the probe right after subscribing.
		<-doc.queried
		<-doc.queried
		for i := 0; i < 3; i++ {
			doc.Notify()
			<-doc.queried
		}
		doc.Append("#root", `<div id="late"></div>`)
	}()

	el, err := w.Element(context.Background(), nil, "#late")
	if err != nil {
		t.Fatalf("Element: %v", err)
	}
	id, _, _ := el.Attribute(context.Background(), "id")
	if id != "late" {
		t.Errorf("got id %q, want late", id)
	}
	// Only the successful probe is left unconsumed.
	if n := len(doc.queried); n != 1 {
		t.Errorf("queries after the last notification: got %d, want 1", n)
	}
	if n := doc.ActiveObservers(); n != 0 {
		t.Errorf("ActiveObservers: got %d, want 0", n)
	}
}

func TestWait_TimeoutAtDeadlineAndReleases(t *testing.T) {
	doc := domtest.MustParse(`<div></div>`)
	w := New(doc)
	timeout := 60 * time.Millisecond

	start := time.Now()
	_, err := w.Wait(context.Background(), Request{Selector: "#never", Timeout: timeout})
	elapsed := time.Since(start)

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("got %v, want *TimeoutError", err)
	}
	if te.Selector != "#never" {
		t.Errorf("Selector: got %q, want #never", te.Selector)
	}
	if te.After != timeout || !te.Timeout() {
		t.Errorf("After: got %s, Timeout() = %v", te.After, te.Timeout())
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("errors.Is(err, ErrTimeout) = false")
	}
	if !strings.Contains(err.Error(), `"#never"`) {
		t.Errorf("message should name the selector: %q", err.Error())
	}
	if elapsed < timeout {
		t.Errorf("timed out after %s, before the %s deadline", elapsed, timeout)
	}
	if n := doc.ActiveObservers(); n != 0 {
		t.Errorf("ActiveObservers: got %d, want 0", n)
	}
	if n := doc.ObserveCalls(); n != 1 {
		t.Errorf("ObserveCalls: got %d, want 1", n)
	}
}

func TestWait_TimeoutIgnoresUnrelatedChanges(t *testing.T) {
	doc := domtest.MustParse(`<div id="root"></div>`)
	w := New(doc, WithTimeout(80*time.Millisecond))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		tick := time.NewTicker(5 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				doc.Append("#root", `<span class="noise"></span>`)
			}
		}
	}()

	_, err := w.Element(context.Background(), nil, "#never")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want timeout", err)
	}
}

func TestWait_MultipleReturnsEveryMatch(t *testing.T) {
	doc := domtest.MustParse(`<div class="w"></div><div class="w"></div><div class="w"></div>`)
	w := New(doc)

	els, err := w.Elements(context.Background(), nil, ".w")
	if err != nil {
		t.Fatal(err)
	}
	if len(els) != 3 {
		t.Errorf("got %d elements, want 3", len(els))
	}
}

func TestWait_MultipleWaitsForFirstMatch(t *testing.T) {
	doc := domtest.MustParse(`<div id="root"></div>`)
	w := New(doc, WithTimeout(5*time.Second))

	go func() {
		time.Sleep(20 * time.Millisecond)
		doc.Append("#root", `<div class="w"></div><div class="w"></div>`)
	}()

	els, err := w.Elements(context.Background(), nil, ".w")
	if err != nil {
		t.Fatal(err)
	}
	if len(els) != 2 {
		t.Errorf("got %d elements, want 2", len(els))
	}
}

func TestWait_ExplicitScope(t *testing.T) {
	outer := domtest.MustParse(`<div id="outer"></div>`)
	inner := domtest.MustParse(`<div id="dashboard"></div>`)
	w := New(outer)

	if _, err := w.Element(context.Background(), inner, "#dashboard"); err != nil {
		t.Fatalf("scoped wait: %v", err)
	}
	_, err := w.Wait(context.Background(), Request{Selector: "#dashboard", Timeout: 10 * time.Millisecond})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("root wait: got %v, want timeout", err)
	}
}

func TestWait_ContextCancel(t *testing.T) {
	doc := domtest.MustParse(`<div></div>`)
	w := New(doc)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := w.Element(ctx, nil, "#never")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if n := doc.ActiveObservers(); n != 0 {
		t.Errorf("ActiveObservers: got %d, want 0", n)
	}
}

func TestWait_NoScope(t *testing.T) {
	w := New(nil)
	if _, err := w.Element(context.Background(), nil, "#x"); err == nil {
		t.Fatal("expected an error without scope or root")
	}
}

func TestWait_InvalidSelector(t *testing.T) {
	doc := domtest.MustParse(`<div></div>`)
	w := New(doc)
	_, err := w.Element(context.Background(), nil, "[[[")
	if err == nil {
		t.Fatal("expected a query error")
	}
	if errors.Is(err, ErrTimeout) {
		t.Errorf("query error reported as timeout: %v", err)
	}
}
