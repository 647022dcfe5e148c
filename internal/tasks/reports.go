package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlens/internal/models"
	"github.com/desertthunder/spotlens/internal/services"
	"github.com/desertthunder/spotlens/internal/shared"
)

const (
	libraryTopSongs   = 25
	libraryTopArtists = 25
	defaultTopLimit   = 50
)

// ReportOpts tunes the history report. Library reports ignore it.
type ReportOpts struct {
	Limit     int
	TimeRange models.TimeRange
}

// ReportEngine builds reports from a [services.Library].
type ReportEngine struct {
	library services.Library
	fetcher *LibraryFetcher
	logger  *log.Logger
	now     func() time.Time
}

// NewReportEngine creates a new ReportEngine.
func NewReportEngine(library services.Library, fetcher *LibraryFetcher, logger *log.Logger) *ReportEngine {
	return &ReportEngine{library: library, fetcher: fetcher, logger: logger, now: time.Now}
}

// Build produces the report for kind. Any fetch failure aborts the build and no report is returned.
func (e *ReportEngine) Build(ctx context.Context, kind models.ReportKind, opts ReportOpts, progress chan<- ProgressUpdate) (*models.Report, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	switch kind {
	case models.ReportLibrary:
		library, err := e.buildLibrary(ctx, progress)
		if err != nil {
			return nil, fmt.Errorf("failed to generate library report: %w", err)
		}
		return &models.Report{Kind: kind, Library: library}, nil
	case models.ReportHistory:
		listening, err := e.buildHistory(ctx, opts, progress)
		if err != nil {
			return nil, fmt.Errorf("failed to generate history report: %w", err)
		}
		return &models.Report{Kind: kind, Listening: listening}, nil
	case models.ReportNotImplemented:
		return nil, fmt.Errorf("%w: report %s", shared.ErrNotImplemented, kind)
	default:
		return nil, shared.NewValidationError("report type", kind.String())
	}
}

func (e *ReportEngine) buildLibrary(ctx context.Context, progress chan<- ProgressUpdate) (*models.LibraryReport, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: library fetcher not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, phaseUpdate(FetchSaved, 0, 0, "Fetching saved tracks..."))
	liked, err := e.fetcher.FetchSavedTracks(ctx, progress)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, phaseUpdate(FetchPlaylists, 0, 0, "Fetching playlists..."))
	fromPlaylists, err := e.fetcher.FetchPlaylistSongs(ctx, progress)
	if err != nil {
		return nil, err
	}

	songs := Merge(liked, fromPlaylists)
	sendProgress(progress, mergedUpdate(len(songs)))
	e.logger.Info("merged library", "liked", len(liked), "playlists", len(fromPlaylists), "unique", len(songs))

	sendProgress(progress, phaseUpdate(Aggregate, 1, 1, "Grouping by artist and genre..."))
	artists := GroupByArtist(songs)
	report := &models.LibraryReport{
		GeneratedAt:        e.now().UTC(),
		Songs:              songs,
		TopSongs:           TopN(songs, libraryTopSongs),
		ArtistDistribution: artists,
		TopArtists:         TopArtists(artists, libraryTopArtists),
		GenreSummaries:     GroupByGenre(songs),
	}

	sendProgress(progress, phaseUpdate(FetchFollowed, 0, 0, "Fetching followed artists..."))
	if report.FollowedArtists, err = e.fetcher.FetchFollowedArtists(ctx); err != nil {
		return nil, err
	}

	gs := e.fetcher.GenreStats()
	e.logger.Info("genre resolution", "call_hits", gs.CallHits, "process_hits", gs.ProcessHits, "remote_calls", gs.RemoteCalls, "failures", gs.Failures)
	return report, nil
}

func (e *ReportEngine) buildHistory(ctx context.Context, opts ReportOpts, progress chan<- ProgressUpdate) (*models.ListeningReport, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultTopLimit
	}
	timeRange := opts.TimeRange
	if timeRange == "" {
		timeRange = models.MediumTerm
	}
	if _, ok := models.ParseTimeRange(string(timeRange)); !ok {
		return nil, shared.NewValidationError("time range", string(timeRange))
	}

	sendProgress(progress, phaseUpdate(FetchTopArtists, 1, 2, "Fetching top artists..."))
	e.logger.Info("Getting user top artists", "limit", limit, "time_range", timeRange)
	artists, err := e.library.TopArtists(ctx, limit, timeRange)
	if err != nil {
		return nil, shared.NewRemoteCallError("top artists", err, "limit=%d time_range=%s", limit, timeRange)
	}

	sendProgress(progress, phaseUpdate(FetchTopTracks, 2, 2, "Fetching top tracks..."))
	e.logger.Info("Getting user top tracks", "limit", limit, "time_range", timeRange)
	tracks, err := e.library.TopTracks(ctx, limit, timeRange)
	if err != nil {
		return nil, shared.NewRemoteCallError("top tracks", err, "limit=%d time_range=%s", limit, timeRange)
	}

	topArtists, distribution := GroupArtistsAndGenres(artists, GroupTopTracksByArtist(tracks))
	return &models.ListeningReport{
		TimeRange:         timeRange,
		GeneratedAt:       e.now().UTC(),
		TopArtists:        topArtists,
		GenreDistribution: distribution,
	}, nil
}
