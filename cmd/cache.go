package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotlens/internal/cache"
	"github.com/desertthunder/spotlens/internal/repositories"
	"github.com/desertthunder/spotlens/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) cacheStore() (*cache.Store, error) {
	config, err := r.loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.Open(config.Cache.Dir, cache.WithFs(r.fs)), nil
}

// CacheStats prints the number and total size of cache files, plus the stored artist count for the sqlite genre store.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	store, err := r.cacheStore()
	if err != nil {
		return err
	}

	st, err := store.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	r.writePlain("Cache directory: %s\n", store.Dir())
	r.writePlain("Files: %d\n", st.Files)
	r.writePlain("Size: %s\n", humanBytes(st.Bytes))

	config, err := r.loadConfig()
	if err != nil {
		return err
	}
	if config.Cache.GenreStore != shared.GenreStoreSQLite {
		return nil
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	count, err := repositories.NewGenreRepository(db).Count()
	if err != nil {
		return err
	}
	return r.writePlain("Artists with genres (sqlite): %d\n", count)
}

// CacheClear deletes every cache file. The next report refetches everything.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	store, err := r.cacheStore()
	if err != nil {
		return err
	}

	removed, err := store.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.logger.Info("cache cleared", "dir", store.Dir(), "files", removed)
	return r.writePlain("✓ Removed %d cache files from %s\n", removed, store.Dir())
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
