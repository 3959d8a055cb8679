package fetcher

import (
	"fmt"
	"html"
	"strings"

	"github.com/dmick/jamtools/lyrics"
	"github.com/dmick/jamtools/models"
	"github.com/dmick/jamtools/pages"
)

// FormatSong renders one song block: a separator, the title line and the
// lyrics, or a not-found notice. In markup mode every line becomes an
// escaped paragraph.
func FormatSong(r models.ResolvedLyrics, markup bool) string {
	var block string
	if r.Found {
		block = fmt.Sprintf("%s\n%s - %s\n\n%s", lyrics.Separator, r.Song, r.Artist, r.Text)
	} else {
		block = fmt.Sprintf("%s\n*** %s - %s: Lyrics not found ***", lyrics.Separator, r.Song, r.Artist)
	}

	if !markup {
		return block
	}

	var b strings.Builder
	for _, line := range strings.Split(block, "\n") {
		line = html.EscapeString(strings.TrimSpace(line))
		if line == "" {
			line = "&nbsp"
		}
		b.WriteString("<p>")
		b.WriteString(line)
		b.WriteString("</p>\n")
	}
	return b.String()
}

// FormatSet renders every song in order, wrapped in the page chrome when
// markup is set.
func FormatSet(results []models.ResolvedLyrics, markup bool) string {
	var b strings.Builder
	if markup {
		fmt.Fprintf(&b, "%s\n%s\n%s\n", pages.Header, pages.CSS, pages.ScrollScript)
	}
	for _, r := range results {
		b.WriteString(FormatSong(r, markup))
		b.WriteString("\n")
	}
	if markup {
		fmt.Fprintf(&b, "%s\n", pages.Footer)
	}
	return b.String()
}
