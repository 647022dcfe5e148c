package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/spotlens/internal/models"
)

// DefaultPalette is used by [Summary].
var DefaultPalette = NewPalette("#1DB954", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	Title lipgloss.Style
	OK    lipgloss.Style
	Err   lipgloss.Style
	Warn  lipgloss.Style
	Help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		Title: NewBold(t).MarginBottom(1),
		OK:    NewBold(s),
		Err:   NewBold(e),
		Warn:  NewStyle(w),
		Help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// summaryRows caps each list printed to the console.
const summaryRows = 5

// Summary renders a short console overview of a report and the file it was written to.
func Summary(p *Palette, report *models.Report, result *Result) string {
	if p == nil {
		p = DefaultPalette
	}

	var b strings.Builder
	switch {
	case report.Library != nil:
		r := report.Library
		b.WriteString(p.Title.Render("Library report") + "\n")
		fmt.Fprintf(&b, "%d songs, %d artists, %d genres, %d followed artists\n",
			len(r.Songs), len(r.ArtistDistribution), len(r.GenreSummaries), len(r.FollowedArtists))
		b.WriteString(p.OK.Render("Top artists") + "\n")
		for i, a := range r.TopArtists[:min(summaryRows, len(r.TopArtists))] {
			fmt.Fprintf(&b, "  %d. %s %s\n", i+1, a.Name, p.Help.Render(fmt.Sprintf("(%d songs)", a.SongCount)))
		}
	case report.Listening != nil:
		r := report.Listening
		b.WriteString(p.Title.Render("Listening report") + "\n")
		fmt.Fprintf(&b, "time range %s, %d top artists, %d genres\n",
			r.TimeRange, len(r.TopArtists), len(r.GenreDistribution))
		b.WriteString(p.OK.Render("Top genres") + "\n")
		for i, g := range r.GenreDistribution[:min(summaryRows, len(r.GenreDistribution))] {
			fmt.Fprintf(&b, "  %d. %s %s\n", i+1, g.Genre, p.Help.Render(fmt.Sprintf("(%d)", g.PlayCount)))
		}
	default:
		b.WriteString(p.Warn.Render("empty report") + "\n")
	}

	if result != nil {
		fmt.Fprintf(&b, "%s %s %s\n", p.OK.Render("wrote"), result.Path, p.Help.Render(result.Fingerprint))
	}
	return b.String()
}
