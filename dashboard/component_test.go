package dashboard

import "testing"

func TestTransformTitle(t *testing.T) {
	tests := []struct {
		title, find, replace, want string
	}{
		{"old sales", "OLD", "NEW", "NEW SALES"},
		{"old old", "OLD", "NEW", "NEW OLD"},
		{"sales", "old", "NEW", "SALES"}, // matching is after upper-casing
		{"Q1 <b>cost</b>", "Q1", "Q2", "Q2 <B>COST</B>"},
		{"margin", "", "X", "XMARGIN"},
	}
	for _, tt := range tests {
		if got := TransformTitle(tt.title, tt.find, tt.replace); got != tt.want {
			t.Errorf("TransformTitle(%q, %q, %q) = %q, want %q", tt.title, tt.find, tt.replace, got, tt.want)
		}
	}
}

func TestParsePixels(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"140px", 140, true},
		{"0", 0, true},
		{" -3.5px", -3, true},
		{"+12px", 12, true},
		{"auto", 0, false},
		{"", 0, false},
		{"px", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePixels(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePixels(%q) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestShiftPixels(t *testing.T) {
	tests := []struct {
		in   string
		inc  int
		want string
	}{
		{"100px", 40, "140px"},
		{"", 40, "40px"},
		{"auto", 5, "5px"},
		{"10px", 0, "10px"},
	}
	for _, tt := range tests {
		if got := ShiftPixels(tt.in, tt.inc); got != tt.want {
			t.Errorf("ShiftPixels(%q, %d) = %q, want %q", tt.in, tt.inc, got, tt.want)
		}
	}
}

func TestLastN(t *testing.T) {
	s := []int{1, 2, 3, 4, 5}
	if got := lastN(s, 3); len(got) != 3 || got[0] != 3 {
		t.Errorf("lastN(3): got %v", got)
	}
	if got := lastN(s, 9); len(got) != 5 {
		t.Errorf("lastN(9): got %v", got)
	}
}

func TestMarkers_WithDefaults(t *testing.T) {
	m := Markers{Component: ".card"}.WithDefaults()
	if m.Component != ".card" {
		t.Errorf("Component overridden: %q", m.Component)
	}
	if m.Frame != "iframe" || m.ApplyAttr != "onclick" {
		t.Errorf("defaults not filled: %+v", m)
	}
}

func TestTitleText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"old sales", "old sales"},
		{"Q1 <b>cost</b>", "Q1 **cost**"},
		{"  spaced\n title ", "spaced title"},
	}
	for _, tt := range tests {
		if got := TitleText(tt.in); got != tt.want {
			t.Errorf("TitleText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeReplacement(t *testing.T) {
	if got := SanitizeReplacement(`NEW<script>alert(1)</script>`); got != "NEW" {
		t.Errorf("script kept: %q", got)
	}
	if got := SanitizeReplacement(`<b>NEW</b>`); got != "<b>NEW</b>" {
		t.Errorf("formatting dropped: %q", got)
	}
}
