package main

import (
	"context"

	"github.com/desertthunder/spotlens/internal/cache"
	"github.com/desertthunder/spotlens/internal/formatter"
	"github.com/desertthunder/spotlens/internal/genres"
	"github.com/desertthunder/spotlens/internal/models"
	"github.com/desertthunder/spotlens/internal/repositories"
	"github.com/desertthunder/spotlens/internal/shared"
	"github.com/desertthunder/spotlens/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ReportLibrary builds the library report.
func (r *Runner) ReportLibrary(ctx context.Context, cmd *cli.Command) error {
	return r.runReport(ctx, cmd, models.ReportLibrary, tasks.ReportOpts{})
}

// ReportHistory builds the listening-history report for --limit and --time-range.
func (r *Runner) ReportHistory(ctx context.Context, cmd *cli.Command) error {
	timeRange, ok := models.ParseTimeRange(cmd.String("time-range"))
	if !ok {
		return shared.NewValidationError("time range", cmd.String("time-range"))
	}
	return r.runReport(ctx, cmd, models.ReportHistory, tasks.ReportOpts{
		Limit:     cmd.Int("limit"),
		TimeRange: timeRange,
	})
}

func (r *Runner) runReport(ctx context.Context, cmd *cli.Command, kind models.ReportKind, opts tasks.ReportOpts) error {
	config, err := r.loadConfig()
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if format == "" {
		format = config.Reports.Format
	}
	format, err = formatter.ParseFormat(format)
	if err != nil {
		return err
	}

	path := cmd.String("output")
	if path == "" {
		path = formatter.ReportPath(config.Reports.Dir, kind, format)
	}

	engine, err := r.reportEngine(ctx)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	r.logger.Info("building report", "kind", kind)
	report, err := engine.Build(ctx, kind, opts, progress)
	close(progress)
	<-done
	r.persistToken()
	if err != nil {
		return err
	}

	result, err := formatter.WriteReport(r.fs, report, format, path)
	if err != nil {
		return err
	}
	r.logger.Info("report written", "path", result.Path, "bytes", result.Bytes)

	if err := r.recordRun(report, result); err != nil {
		r.logger.Warn("failed to record report run", "error", err)
	}

	if !cmd.Bool("quiet") {
		return r.writePlain("%s", formatter.Summary(r.palette, report, result))
	}
	return nil
}

// reportEngine wires the Spotify library, page cache, genre store and pacer into a [tasks.ReportEngine].
func (r *Runner) reportEngine(ctx context.Context) (*tasks.ReportEngine, error) {
	config, err := r.loadConfig()
	if err != nil {
		return nil, err
	}

	library, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	store := cache.Open(config.Cache.Dir, cache.WithFs(r.fs))
	genreStore, err := r.genreStore(config, store)
	if err != nil {
		return nil, err
	}

	resolver := genres.NewResolver(library, genreStore, shared.WithLogger(r.logger, "component", "genres"))
	pacer := tasks.NewPacer(config.Cache.PageDelay())
	fetcher := tasks.NewLibraryFetcher(library, store, resolver, pacer, shared.WithLogger(r.logger, "component", "fetcher"))

	return tasks.NewReportEngine(library, fetcher, r.logger), nil
}

// genreStore selects the persistent artist→genres mapping named by cache.genre_store.
func (r *Runner) genreStore(config *shared.Config, store *cache.Store) (genres.Store, error) {
	switch config.Cache.GenreStore {
	case shared.GenreStoreJSON:
		return cache.NewGenreFile(store), nil
	case shared.GenreStoreSQLite:
		db, err := r.database()
		if err != nil {
			return nil, err
		}
		return repositories.NewGenreRepository(db), nil
	default:
		return nil, shared.NewValidationError("genre store", config.Cache.GenreStore)
	}
}

// recordRun adds the written report to the run ledger.
func (r *Runner) recordRun(report *models.Report, result *formatter.Result) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	run := &models.RunRecord{
		Kind:        report.Kind.String(),
		Path:        result.Path,
		Fingerprint: result.Fingerprint,
		SongCount:   report.SongCount(),
	}
	if err := repositories.NewRunRepository(db).Create(run); err != nil {
		return err
	}
	r.logger.Debug("recorded report run", "id", run.ID, "sequence", run.Sequence)
	return nil
}
