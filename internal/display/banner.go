package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the startup art horizontally centred for the
// current terminal, already styled. Swap banner.txt to change the art.
func RenderBanner() string {
	lines := strings.Split(strings.TrimRight(bannerRaw, "\n"), "\n")
	if len(lines) == 0 {
		return ""
	}

	widest := 0
	for _, l := range lines {
		if len(l) > widest {
			widest = len(l)
		}
	}

	// The art is monospaced ASCII, so one left margin centres all of it.
	margin := ""
	if w := termWidth(); w > widest {
		margin = strings.Repeat(" ", (w-widest)/2)
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(margin)
		b.WriteString(BannerStyle.Render(l))
		b.WriteByte('\n')
	}
	return b.String()
}

// termWidth reports the terminal column count, defaulting to 80 when
// stdout isn't a terminal.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
