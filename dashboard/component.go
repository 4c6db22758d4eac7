package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hazyhaar/dashclone/dom"
)

// SizeProps are the inline style properties copied from a template to its
// clone, in copy order.
var SizeProps = []string{"min-height", "min-width", "top", "left", "height", "width"}

// Component is a snapshot of a dashboard widget.
type Component struct {
	Index  int               `json:"index"` // position among all widgets, document order
	Title  string            `json:"title"` // raw markup
	Text   string            `json:"text"`  // title as Markdown
	Top    int               `json:"top"`
	Left   int               `json:"left"`
	Styles map[string]string `json:"styles"`

	Element dom.Element `json:"-"`
	titled  bool
}

// ReadComponent snapshots el. The title is the markup of its first child.
func ReadComponent(ctx context.Context, el dom.Element, index int) (Component, error) {
	c := Component{Index: index, Styles: make(map[string]string, len(SizeProps)), Element: el}
	for _, prop := range SizeProps {
		v, err := el.Style(ctx, prop)
		if err != nil {
			return c, fmt.Errorf("dashboard: read style %s: %w", prop, err)
		}
		c.Styles[prop] = v
	}
	c.Top = PixelsOrZero(c.Styles["top"])
	c.Left = PixelsOrZero(c.Styles["left"])

	title, err := titleElement(ctx, el)
	if err != nil {
		return c, err
	}
	if title != nil {
		c.titled = true
		if c.Title, err = title.InnerHTML(ctx); err != nil {
			return c, fmt.Errorf("dashboard: read title: %w", err)
		}
		c.Text = TitleText(c.Title)
	}
	return c, nil
}

func titleElement(ctx context.Context, el dom.Element) (dom.Element, error) {
	kids, err := el.Children(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: read children: %w", err)
	}
	if len(kids) == 0 {
		return nil, nil
	}
	return kids[0], nil
}

// TransformTitle upper-cases title and replaces the first occurrence of
// find. Matching is case-sensitive and happens after upper-casing.
func TransformTitle(title, find, replace string) string {
	return strings.Replace(strings.ToUpper(title), find, replace, 1)
}

// ShiftPixels adds inc to a pixel offset such as a top or left value. An
// unparsable offset counts as 0.
func ShiftPixels(offset string, inc int) string {
	return strconv.Itoa(PixelsOrZero(offset)+inc) + "px"
}

// ParsePixels reads the leading integer of a CSS length ("140px" -> 140,
// " -3.5px" -> -3). ok is false when no digit leads the value.
func ParsePixels(s string) (n int, ok bool) {
	s = strings.TrimLeft(s, " \t\n\r\f")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// PixelsOrZero is ParsePixels with 0 for unparsable values.
func PixelsOrZero(s string) int {
	n, _ := ParsePixels(s)
	return n
}

// lastN returns the trailing n elements, or all of them when fewer exist.
func lastN[T any](s []T, n int) []T {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}
