// package formatter renders reports to JSON, Markdown and CSV and writes them to disk
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/desertthunder/spotlens/internal/models"
	"github.com/desertthunder/spotlens/internal/shared"
	"github.com/spf13/afero"
)

// Output formats accepted by [WriteReport].
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// ParseFormat validates format. An empty format is JSON.
func ParseFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", shared.NewValidationError("format", format)
	}
}

// Extension returns the file extension for format, without the dot.
func Extension(format string) string {
	switch format {
	case FormatMarkdown:
		return "md"
	case FormatCSV:
		return "csv"
	default:
		return "json"
	}
}

// ReportPath returns dir/<kind>_report.<ext>.
func ReportPath(dir string, kind models.ReportKind, format string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_report.%s", kind, Extension(format)))
}

// Fingerprint is the hex xxhash of a rendered report.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Render encodes report in format.
func Render(report *models.Report, format string) ([]byte, error) {
	if report == nil || (report.Library == nil && report.Listening == nil) {
		return nil, fmt.Errorf("%w: empty report", shared.ErrInvalidInput)
	}

	switch format {
	case FormatJSON:
		return ToJSON(report)
	case FormatMarkdown:
		return ToMarkdown(report)
	case FormatCSV:
		return ToCSV(report)
	default:
		return nil, shared.NewValidationError("format", format)
	}
}

// Result describes a written report file.
type Result struct {
	Path        string
	Bytes       int
	Fingerprint string
}

// WriteReport renders report and writes it to path on fsys. A nil fsys writes to the OS filesystem.
//
// The report is fully rendered, then written to a temp file beside path and renamed into place, so
// an error at any step leaves no partial report behind.
func WriteReport(fsys afero.Fs, report *models.Report, format, path string) (*Result, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	data, err := Render(report, format)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s report: %w", format, err)
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := afero.TempFile(fsys, dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp report file: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		fsys.Remove(tmpName)
		return nil, fmt.Errorf("failed to write report file: %w", err)
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		fsys.Remove(tmpName)
		return nil, fmt.Errorf("failed to replace report file: %w", err)
	}

	return &Result{Path: path, Bytes: len(data), Fingerprint: Fingerprint(data)}, nil
}

// ToJSON encodes the report payload as indented JSON.
func ToJSON(report *models.Report) ([]byte, error) {
	data, err := shared.MarshalJSON(report.Payload(), true)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// ToCSV writes one row per song for library reports and one row per top artist for history reports.
func ToCSV(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	var rows [][]string
	switch {
	case report.Library != nil:
		rows = append(rows, []string{"ID", "Title", "Artist", "PlayCount", "Genres"})
		for _, song := range report.Library.Songs {
			rows = append(rows, []string{
				song.ID(),
				song.Title(),
				song.Artist(),
				strconv.Itoa(song.PlayCount()),
				strings.Join(song.Genres(), "; "),
			})
		}
	case report.Listening != nil:
		rows = append(rows, []string{"Artist", "PlayCount", "TopTracks"})
		for _, artist := range report.Listening.TopArtists {
			rows = append(rows, []string{
				artist.Name,
				strconv.Itoa(artist.PlayCount),
				strings.Join(artist.TopTracks, "; "),
			})
		}
	}

	for _, record := range rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders a readable summary of the report.
func ToMarkdown(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer

	switch {
	case report.Library != nil:
		writeLibraryMarkdown(&buf, report.Library)
	case report.Listening != nil:
		writeListeningMarkdown(&buf, report.Listening)
	}

	return buf.Bytes(), nil
}

func writeLibraryMarkdown(buf *bytes.Buffer, r *models.LibraryReport) {
	buf.WriteString("# Library Report\n\n")
	buf.WriteString(fmt.Sprintf("**Generated**: %s\n", r.GeneratedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n", len(r.Songs)))
	buf.WriteString(fmt.Sprintf("**Followed Artists**: %d\n\n", len(r.FollowedArtists)))

	buf.WriteString("## Top Songs\n\n")
	for i, song := range r.TopSongs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%d)\n", i+1, song.Artist(), song.Title(), song.PlayCount()))
	}

	buf.WriteString("\n## Top Artists\n\n")
	buf.WriteString("| Artist | Songs | Plays |\n|---|---|---|\n")
	for _, a := range r.TopArtists {
		buf.WriteString(fmt.Sprintf("| %s | %d | %d |\n", escapeCell(a.Name), a.SongCount, a.TotalPlayCount))
	}

	buf.WriteString("\n## Genres\n\n")
	for _, g := range r.GenreSummaries {
		buf.WriteString(fmt.Sprintf("### %s\n\n", g.Name))
		buf.WriteString(fmt.Sprintf("%d songs, %d plays\n\n", g.SongCount, g.TotalPlayCount))
		for _, a := range g.TopArtists {
			buf.WriteString(fmt.Sprintf("- %s (%d)\n", a.Name, a.TotalPlayCount))
		}
		buf.WriteString("\n")
	}

	if len(r.FollowedArtists) > 0 {
		buf.WriteString("## Followed Artists\n\n")
		for _, a := range r.FollowedArtists {
			genres := "no genres"
			if len(a.Genres) > 0 {
				genres = strings.Join(a.Genres, ", ")
			}
			buf.WriteString(fmt.Sprintf("- %s: %s\n", a.Name, genres))
		}
	}
}

func writeListeningMarkdown(buf *bytes.Buffer, r *models.ListeningReport) {
	buf.WriteString("# Listening Report\n\n")
	buf.WriteString(fmt.Sprintf("**Generated**: %s\n", r.GeneratedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("**Time Range**: %s\n\n", r.TimeRange))

	buf.WriteString("## Top Artists\n\n")
	for i, a := range r.TopArtists {
		buf.WriteString(fmt.Sprintf("%d. %s (%d)\n", i+1, a.Name, a.PlayCount))
		for _, track := range a.TopTracks {
			buf.WriteString(fmt.Sprintf("   - %s\n", track))
		}
	}

	buf.WriteString("\n## Genres\n\n")
	buf.WriteString("| Genre | Plays |\n|---|---|\n")
	for _, g := range r.GenreDistribution {
		buf.WriteString(fmt.Sprintf("| %s | %d |\n", escapeCell(g.Genre), g.PlayCount))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
