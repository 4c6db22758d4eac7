package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hazyhaar/dashclone/waiter"
)

func TestOpenEditMode_TogglesViewMode(t *testing.T) {
	s := newSim(t, fiveWidgets())
	sess, err := s.editor().OpenEditMode(context.Background())
	if err != nil {
		t.Fatalf("OpenEditMode: %v", err)
	}
	if !sess.Toggled {
		t.Error("Toggled: got false, want true")
	}
	if n := s.inner.ClickCount("#ui-id-2"); n != 1 {
		t.Errorf("toggle clicks: got %d, want 1", n)
	}
	if n := s.toggleSettle.Load(); n != 1 {
		t.Errorf("toggle settles: got %d, want 1", n)
	}
	if sess.Doc != s.inner {
		t.Error("session document is not the frame's inner document")
	}
}

func TestOpenEditMode_AlreadyEditable(t *testing.T) {
	s := newSim(t, editable(), fiveWidgets())
	sess, err := s.editor().OpenEditMode(context.Background())
	if err != nil {
		t.Fatalf("OpenEditMode: %v", err)
	}
	if sess.Toggled {
		t.Error("Toggled: got true, want false")
	}
	if n := s.inner.ClickCount("#ui-id-2"); n != 0 {
		t.Errorf("toggle clicks: got %d, want 0", n)
	}
	if n := s.toggleSettle.Load(); n != 0 {
		t.Errorf("toggle settles: got %d, want 0", n)
	}
}

func TestOpenEditMode_SecondCallDoesNotToggleAgain(t *testing.T) {
	s := newSim(t, fiveWidgets())
	ed := s.editor()
	for i := 0; i < 2; i++ {
		if _, err := ed.OpenEditMode(context.Background()); err != nil {
			t.Fatalf("OpenEditMode #%d: %v", i+1, err)
		}
	}
	if n := s.inner.ClickCount("#ui-id-2"); n != 1 {
		t.Errorf("toggle clicks: got %d, want 1", n)
	}
}

func TestOpenEditMode_NoFrame(t *testing.T) {
	s := newSim(t, noFrame())
	_, err := s.editor(WithWaitTimeout(30 * time.Millisecond)).OpenEditMode(context.Background())
	if !errors.Is(err, ErrNoFrame) {
		t.Fatalf("got %v, want ErrNoFrame", err)
	}
	if !errors.Is(err, waiter.ErrTimeout) {
		t.Errorf("cause should be a wait timeout: %v", err)
	}
	if n := s.outer.ActiveObservers(); n != 0 {
		t.Errorf("ActiveObservers: got %d, want 0", n)
	}
}

func TestOpenEditMode_DashboardRootRendersLate(t *testing.T) {
	s := newSim(t, fiveWidgets())
	go func() {
		time.Sleep(20 * time.Millisecond)
		if err := s.inner.Append("#canvas", `<section id="late-root" class="editing"></section>`); err != nil {
			t.Error(err)
		}
	}()
	ed := s.editor(WithMarkers(Markers{DashboardRoot: "#late-root"}))
	sess, err := ed.OpenEditMode(context.Background())
	if err != nil {
		t.Fatalf("OpenEditMode: %v", err)
	}
	if sess.Toggled {
		t.Error("late root is editable; toggle should not be clicked")
	}
	if n := s.inner.ActiveObservers(); n != 0 {
		t.Errorf("ActiveObservers: got %d, want 0", n)
	}
}

func TestOpenEditMode_NoInnerDocument(t *testing.T) {
	s := newSim(t, noInner())
	_, err := s.editor().OpenEditMode(context.Background())
	if !errors.Is(err, ErrNoInnerDocument) {
		t.Fatalf("got %v, want ErrNoInnerDocument", err)
	}
}

func TestOpenEditMode_NoDashboardRoot(t *testing.T) {
	s := newSim(t, fiveWidgets())
	ed := s.editor(WithWaitTimeout(30*time.Millisecond), WithMarkers(Markers{DashboardRoot: "#missing"}))
	_, err := ed.OpenEditMode(context.Background())
	if !errors.Is(err, ErrNoDashboardRoot) {
		t.Fatalf("got %v, want ErrNoDashboardRoot", err)
	}
}

func TestOpenEditMode_NoEditToggle(t *testing.T) {
	s := newSim(t, fiveWidgets())
	ed := s.editor(WithWaitTimeout(30*time.Millisecond), WithMarkers(Markers{EditToggle: "#missing"}))
	_, err := ed.OpenEditMode(context.Background())
	if !errors.Is(err, ErrNoEditToggle) {
		t.Fatalf("got %v, want ErrNoEditToggle", err)
	}
}

func TestOpenEditMode_BootSettleCancelled(t *testing.T) {
	s := newSim(t, fiveWidgets())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ed := s.editor(WithSettle(Settle{Boot: func(ctx context.Context) error { return ctx.Err() }}))
	if _, err := ed.OpenEditMode(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if n := s.inner.ClickCount("#ui-id-2"); n != 0 {
		t.Errorf("toggle clicks: got %d, want 0", n)
	}
}

func TestState_String(t *testing.T) {
	if got := StateDashboardRootFound.String(); got != "dashboard_root_found" {
		t.Errorf("got %q", got)
	}
	if got := State(99).String(); got != "state(99)" {
		t.Errorf("got %q", got)
	}
}
