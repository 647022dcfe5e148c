package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/spotlens/internal/models"
	"github.com/desertthunder/spotlens/internal/services"
	"github.com/desertthunder/spotlens/internal/shared"
	tu "github.com/desertthunder/spotlens/internal/testing"
)

func newEngine(f *fixture) *ReportEngine {
	e := NewReportEngine(f.lib, f.fetcher, shared.DiscardLogger())
	e.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestReportEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("library report", func(t *testing.T) {
		f := newFixture(t)
		f.lib.Saved = []json.RawMessage{
			tu.TrackJSON("t1", "One", "a1", "Artist One"),
			tu.TrackJSON("t2", "Two", "a2", "Artist Two"),
		}
		pl := services.SpotifySimplePlaylist{ID: "pl1", Name: "Mix"}
		pl.Tracks.Total = 2
		f.lib.Playlists = []services.SpotifySimplePlaylist{pl}
		f.lib.PlaylistItems["pl1"] = []json.RawMessage{
			tu.PlaylistItem(tu.TrackJSON("t2", "Two", "a2", "Artist Two")),
			tu.PlaylistItem(tu.TrackJSON("t3", "Three", "a1", "Artist One")),
		}
		f.lib.FollowedPages = []services.ArtistCursorPage{{Items: []services.SpotifyArtist{{ID: "a1", Name: "Artist One"}}}}

		progress := make(chan ProgressUpdate, 64)
		report, err := newEngine(f).Build(ctx, models.ReportLibrary, ReportOpts{}, progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Kind != models.ReportLibrary || report.Library == nil || report.Listening != nil {
			t.Fatalf("unexpected report variant %+v", report)
		}

		lib := report.Library
		if len(lib.Songs) != 3 || report.SongCount() != 3 {
			t.Errorf("expected 3 merged songs, got %d", len(lib.Songs))
		}
		if len(lib.TopSongs) != 3 {
			t.Errorf("expected 3 top songs, got %d", len(lib.TopSongs))
		}
		if len(lib.ArtistDistribution) != 2 || len(lib.TopArtists) != 2 {
			t.Errorf("unexpected artist summaries %+v", lib.ArtistDistribution)
		}
		if len(lib.GenreSummaries) != 3 {
			t.Errorf("expected rock, pop and dance, got %+v", lib.GenreSummaries)
		}
		if len(lib.FollowedArtists) != 1 {
			t.Errorf("expected 1 followed artist, got %d", len(lib.FollowedArtists))
		}
		if !lib.GeneratedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected timestamp %v", lib.GeneratedAt)
		}
		if f.lib.Calls["Artist"] != 2 {
			t.Errorf("expected each artist resolved once across both paths, got %d", f.lib.Calls["Artist"])
		}
		if len(progress) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("library report aborts on fetch failure", func(t *testing.T) {
		f := newFixture(t)
		f.lib.Saved = tu.Tracks(0, 5)
		f.lib.Errors["UserPlaylists"] = shared.ErrAPIRequest

		report, err := newEngine(f).Build(ctx, models.ReportLibrary, ReportOpts{}, nil)
		if report != nil || !shared.IsRemoteCallError(err) {
			t.Errorf("expected no report and a RemoteCallError, got %v, %v", report, err)
		}
	})

	t.Run("history report", func(t *testing.T) {
		f := newFixture(t)
		pop := 70
		f.lib.TopArtistItems = []services.SpotifyArtist{{Name: "X", Popularity: &pop, Genres: []string{"rock"}}}
		f.lib.TopTrackItems = []services.SpotifyTrack{{Name: "Hit", Artists: []services.SpotifyArtist{{Name: "X"}}}}

		report, err := newEngine(f).Build(ctx, models.ReportHistory, ReportOpts{Limit: 10, TimeRange: models.ShortTerm}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		h := report.Listening
		if h == nil || h.TimeRange != models.ShortTerm {
			t.Fatalf("unexpected report %+v", report)
		}
		if len(h.TopArtists) != 1 || h.TopArtists[0].PlayCount != 70 || h.TopArtists[0].TopTracks[0] != "Hit" {
			t.Errorf("unexpected top artists %+v", h.TopArtists)
		}
		if len(h.GenreDistribution) != 1 || h.GenreDistribution[0].PlayCount != 70 {
			t.Errorf("unexpected genre distribution %+v", h.GenreDistribution)
		}
		if f.lib.LastTimeRange != models.ShortTerm {
			t.Errorf("expected short_term request, got %s", f.lib.LastTimeRange)
		}
	})

	t.Run("history defaults to medium term", func(t *testing.T) {
		f := newFixture(t)
		report, err := newEngine(f).Build(ctx, models.ReportHistory, ReportOpts{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Listening.TimeRange != models.MediumTerm || f.lib.LastTimeRange != models.MediumTerm {
			t.Errorf("expected medium_term, got %s", report.Listening.TimeRange)
		}
	})

	t.Run("history rejects unknown time range", func(t *testing.T) {
		f := newFixture(t)
		_, err := newEngine(f).Build(ctx, models.ReportHistory, ReportOpts{TimeRange: "forever"}, nil)

		var verr *shared.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if f.lib.TotalCalls() != 0 {
			t.Error("expected no remote calls")
		}
	})

	t.Run("not implemented kind", func(t *testing.T) {
		f := newFixture(t)
		_, err := newEngine(f).Build(ctx, models.ReportNotImplemented, ReportOpts{}, nil)
		if !errors.Is(err, shared.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		f := newFixture(t)
		_, err := newEngine(f).Build(ctx, models.ReportKind(42), ReportOpts{}, nil)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("missing library", func(t *testing.T) {
		e := NewReportEngine(nil, nil, shared.DiscardLogger())
		_, err := e.Build(ctx, models.ReportLibrary, ReportOpts{}, nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
