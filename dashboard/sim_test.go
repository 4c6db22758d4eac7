package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hazyhaar/dashclone/dom/domtest"
	"github.com/hazyhaar/dashclone/settle"
)

const componentClass = "componentWrapper componentLoading dropshadow ui-resizable ui-draggable ui-draggable-handle"

const applyButton = `<button onclick="dashboard.componentedit_apply();return false;">Apply</button>`

// widget is a fixture component.
type widget struct {
	title    string
	top      int
	left     int
	chart    string // markup rendered after the title
	untitled bool
}

func (w widget) markup() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="%s" style="min-height: 50px; min-width: 80px; top: %dpx; left: %dpx; height: 200px; width: 300px;">`,
		componentClass, w.top, w.left)
	if !w.untitled {
		fmt.Fprintf(&b, `<h3>%s</h3>`, w.title)
	}
	b.WriteString(w.chart)
	b.WriteString(`</div>`)
	return b.String()
}

// sim is a synthetic host dashboard: an outer page with an iframe whose
// inner document carries the dashboard, the edit toggle, the add control
// and the component canvas.
type sim struct {
	outer *domtest.Document
	inner *domtest.Document

	panelMarkup  string // panel appended on add; default has the apply control
	panelDelay   time.Duration
	panelSettle  atomic.Int32
	toggleSettle atomic.Int32
}

type simOption func(*simConfig)

type simConfig struct {
	editable bool
	widgets  []widget
	noFrame  bool
	noInner  bool
}

func editable() simOption { return func(c *simConfig) { c.editable = true } }

func widgets(ws ...widget) simOption {
	return func(c *simConfig) { c.widgets = append(c.widgets, ws...) }
}

func noFrame() simOption { return func(c *simConfig) { c.noFrame = true } }
func noInner() simOption { return func(c *simConfig) { c.noInner = true } }

// fiveWidgets is the stock fixture: the last three carry "old" titles.
func fiveWidgets() simOption {
	return widgets(
		widget{title: "revenue", top: 20, left: 10},
		widget{title: "users", top: 60, left: 10},
		widget{title: "old sales", top: 100, left: 10},
		widget{title: "old cost", top: 140, left: 320},
		widget{title: "old margin", top: 180, left: 630},
	)
}

func newSim(t *testing.T, opts ...simOption) *sim {
	t.Helper()
	var cfg simConfig
	for _, o := range opts {
		o(&cfg)
	}

	var cards strings.Builder
	for _, w := range cfg.widgets {
		cards.WriteString(w.markup())
	}
	class := ""
	if cfg.editable {
		class = ` class="editing"`
	}
	inner := domtest.MustParse(fmt.Sprintf(
		`<a id="ui-id-2">Edit</a><div id="dashboard"%s><div id="newcomponentArea">+</div><div id="canvas">%s</div></div>`,
		class, cards.String()))

	outerMarkup := `<div id="app"><iframe src="/dashboard"></iframe></div>`
	if cfg.noFrame {
		outerMarkup = `<div id="app"></div>`
	}
	outer := domtest.MustParse(outerMarkup)
	if !cfg.noFrame && !cfg.noInner {
		if err := outer.SetFrame("iframe", inner); err != nil {
			t.Fatal(err)
		}
	}

	s := &sim{
		outer:       outer,
		inner:       inner,
		panelMarkup: `<div id="componentConfig"><label>Type</label>` + applyButton + `</div>`,
		panelDelay:  5 * time.Millisecond,
	}

	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(inner.OnClick("#ui-id-2", func(*domtest.Element) {
		if err := inner.SetAttribute("#dashboard", "class", "editing"); err != nil {
			t.Error(err)
		}
	}))
	// The panel renders after the click returns.
	must(inner.OnClick("#newcomponentArea", func(*domtest.Element) {
		go func() {
			time.Sleep(s.panelDelay)
			if err := inner.Append("#dashboard", s.panelMarkup); err != nil {
				t.Error(err)
			}
		}()
	}))
	must(inner.OnClick("#componentConfig button", func(*domtest.Element) {
		if _, err := inner.Remove("#componentConfig"); err != nil {
			t.Error(err)
		}
		blank := fmt.Sprintf(`<div class="%s" style="top: 0px; left: 0px;"><h3></h3></div>`, componentClass)
		if err := inner.Append("#canvas", blank); err != nil {
			t.Error(err)
		}
	}))
	return s
}

// editor returns an Editor on the sim with no settle delays. Toggle
// and panel settles are counted.
func (s *sim) editor(opts ...Option) *Editor {
	base := []Option{
		WithWaitTimeout(2 * time.Second),
		WithSettle(Settle{
			Boot: settle.None(),
			Toggle: func(context.Context) error {
				s.toggleSettle.Add(1)
				return nil
			},
			Panel: func(context.Context) error {
				s.panelSettle.Add(1)
				return nil
			},
		}),
	}
	return New(s.outer, append(base, opts...)...)
}

func (s *sim) components(t *testing.T) []Component {
	t.Helper()
	ctx := context.Background()
	els, err := s.inner.QueryAll(ctx, DefaultMarkers().Component)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]Component, len(els))
	for i, el := range els {
		if out[i], err = ReadComponent(ctx, el, i); err != nil {
			t.Fatal(err)
		}
	}
	return out
}
