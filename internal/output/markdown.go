package output

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const markdownWidth = 80

var (
	plainMarkdown bool

	rendererOnce sync.Once
	renderer     *glamour.TermRenderer
)

// Markdown renders md for the terminal. With color disabled, or when the
// renderer cannot be built, md is returned unchanged.
func Markdown(md string) string {
	if plainMarkdown {
		return withNewline(md)
	}
	rendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(markdownWidth),
		)
		if err == nil {
			renderer = r
		}
	})
	if renderer == nil {
		return withNewline(md)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return withNewline(md)
	}
	return out
}

func withNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
