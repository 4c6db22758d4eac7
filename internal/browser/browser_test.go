package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/hazyhaar/dashclone/waiter"
)

func TestShouldBlock(t *testing.T) {
	block := map[string]bool{"images": true, "fonts": true, "script": true}
	tests := []struct {
		resType string
		want    bool
	}{
		{"Image", true},
		{"Font", true},
		{"Stylesheet", false},
		{"Media", false},
		{"Script", false},
		{"XHR", false},
		{"Other", false},
	}
	for _, tt := range tests {
		if got := shouldBlock(block, tt.resType); got != tt.want {
			t.Errorf("shouldBlock(%q) = %v, want %v", tt.resType, got, tt.want)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.defaults()
	if c.NavigateTimeout != 30*time.Second {
		t.Errorf("NavigateTimeout: got %s", c.NavigateTimeout)
	}
	if c.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval: got %s", c.PollInterval)
	}
	if c.Logger == nil {
		t.Error("Logger not set")
	}
}

func TestManager_ClosedRejectsStart(t *testing.T) {
	m := NewManager(Config{})
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Start(context.Background()); err == nil {
		t.Fatal("Start after Close: expected an error")
	}
}

const framedPage = `<!doctype html><html><body>
<iframe srcdoc="<div id='dashboard'><div class='w' style='top: 12px'><h3>t</h3></div></div>"></iframe>
<script>
setTimeout(() => {
  const d = document.querySelector('iframe').contentDocument;
  const el = d.createElement('div');
  el.id = 'late';
  d.getElementById('dashboard').appendChild(el);
}, 300);
</script>
</body></html>`

// Needs a local Chrome; set DASHCLONE_BROWSER_TESTS=1 to run.
func TestDocument_LiveChrome(t *testing.T) {
	if os.Getenv("DASHCLONE_BROWSER_TESTS") == "" {
		t.Skip("DASHCLONE_BROWSER_TESTS not set")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(framedPage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	mgr := NewManager(Config{PollInterval: 50 * time.Millisecond})
	defer mgr.Close()
	if _, err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	tab, err := OpenTab(ctx, mgr, srv.URL)
	if err != nil {
		t.Fatalf("OpenTab: %v", err)
	}
	defer tab.Close()

	w := waiter.New(tab.Document(), waiter.WithTimeout(10*time.Second))
	frame, err := w.Element(ctx, nil, "iframe")
	if err != nil {
		t.Fatalf("wait frame: %v", err)
	}
	inner, err := frame.ContentDocument(ctx)
	if err != nil || inner == nil {
		t.Fatalf("ContentDocument: %v, %v", inner, err)
	}
	if _, err := w.Element(ctx, inner, "#late"); err != nil {
		t.Fatalf("wait late element: %v", err)
	}

	comp, err := w.Element(ctx, inner, ".w")
	if err != nil {
		t.Fatal(err)
	}
	if err := comp.SetStyle(ctx, "top", "52px"); err != nil {
		t.Fatal(err)
	}
	if top, _ := comp.Style(ctx, "top"); top != "52px" {
		t.Errorf("top: got %q, want 52px", top)
	}
	kids, err := comp.Children(ctx)
	if err != nil || len(kids) != 1 {
		t.Fatalf("Children: %d, %v", len(kids), err)
	}
	if html, _ := kids[0].InnerHTML(ctx); html != "t" {
		t.Errorf("title: got %q", html)
	}

	notFrame, err := comp.ContentDocument(ctx)
	if err != nil || notFrame != nil {
		t.Errorf("ContentDocument on a div: got %v, %v", notFrame, err)
	}

	dead, stop := context.WithCancel(ctx)
	stop()
	if _, _, err := tab.Document().Observe(dead); err == nil {
		t.Error("Observe on a cancelled context: got nil error")
	}
	changes, release, err := tab.Document().Observe(ctx)
	if err != nil {
		t.Fatalf("Observe after a failed one: %v", err)
	}
	defer release()
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Error("no change signal after a failed Observe")
	}
}
