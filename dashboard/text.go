package dashboard

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
)

// Titles are markup: the host renders them with innerHTML.
var (
	titleConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	titlePolicy = bluemonday.UGCPolicy()
)

// TitleText renders title markup as single-line Markdown. Markup that does
// not convert is returned trimmed, as is.
func TitleText(title string) string {
	md, err := titleConverter.ConvertString(title)
	if err != nil {
		return strings.TrimSpace(title)
	}
	return strings.Join(strings.Fields(md), " ")
}

// SanitizeReplacement strips scripts, handlers and other active markup
// from a title replacement before it is written with innerHTML. Formatting
// tags survive.
func SanitizeReplacement(s string) string {
	return titlePolicy.Sanitize(s)
}
