package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlens/internal/cache"
	"github.com/desertthunder/spotlens/internal/shared"
	"golang.org/x/time/rate"
)

// Pacer spaces consecutive remote page requests by a fixed delay.
//
// It is a token bucket with burst 1: the first request goes out immediately and each later one waits
// until delay has passed since the previous. Cache-served pages never call Wait.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a Pacer for the given delay. A non-positive delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next remote request may be issued or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// PageCache is the cached prefix of an offset-paginated collection.
type PageCache[T any] interface {
	Load() ([]T, error)
	Update(current []T, offset, limit int, batch []T) ([]T, error)
}

// rawPageCache stores raw records in a [cache.Store] file.
type rawPageCache struct {
	store *cache.Store
	key   string
}

// NewRawPageCache returns a PageCache persisted under key in store.
func NewRawPageCache(store *cache.Store, key string) PageCache[json.RawMessage] {
	return &rawPageCache{store: store, key: key}
}

func (c *rawPageCache) Load() ([]json.RawMessage, error) {
	return c.store.Load(c.key)
}

func (c *rawPageCache) Update(current []json.RawMessage, offset, limit int, batch []json.RawMessage) ([]json.RawMessage, error) {
	return c.store.UpdateIfNeeded(c.key, current, offset, limit, batch)
}

// OffsetPageFunc fetches the window [offset, offset+limit) and reports whether the remote has a further page.
type OffsetPageFunc[T any] func(ctx context.Context, offset, limit int) (items []T, hasNext bool, err error)

// OffsetPager walks an offset-paginated collection, serving windows the cache already covers.
type OffsetPager[T any] struct {
	Op     string // operation name used in errors and logs
	Limit  int
	Fetch  OffsetPageFunc[T]
	Cache  PageCache[T] // optional
	Pacer  *Pacer
	Logger *log.Logger
}

// PagerStats counts how the pages of one run were served.
type PagerStats struct {
	Pages       int
	CachedPages int
	RemoteCalls int
}

// Run visits every page in order until a batch is empty, short, or the remote reports no further page.
func (p *OffsetPager[T]) Run(ctx context.Context, visit func(batch []T) error) (PagerStats, error) {
	var stats PagerStats

	var current []T
	if p.Cache != nil {
		loaded, err := p.Cache.Load()
		if err != nil {
			return stats, err
		}
		current = loaded
	}

	for offset := 0; ; offset += p.Limit {
		var (
			batch   []T
			hasNext = true
		)

		if p.Cache != nil && cache.Covers(len(current), offset, p.Limit) {
			batch = current[offset : offset+p.Limit]
			stats.CachedPages++
		} else {
			if err := p.Pacer.Wait(ctx); err != nil {
				return stats, err
			}

			p.logger().Info(p.Op, "offset", offset, "limit", p.Limit)
			items, next, err := p.Fetch(ctx, offset, p.Limit)
			stats.RemoteCalls++
			if err != nil {
				return stats, shared.NewRemoteCallError(p.Op, err, "offset=%d limit=%d", offset, p.Limit)
			}
			if len(items) == 0 {
				break
			}

			if p.Cache != nil {
				if current, err = p.Cache.Update(current, offset, p.Limit, items); err != nil {
					return stats, err
				}
			}
			batch, hasNext = items, next
		}

		stats.Pages++
		if err := visit(batch); err != nil {
			return stats, err
		}

		if len(batch) < p.Limit || !hasNext {
			break
		}
	}

	return stats, nil
}

func (p *OffsetPager[T]) logger() *log.Logger {
	if p.Logger == nil {
		return shared.DiscardLogger()
	}
	return p.Logger
}

// CursorPageFunc fetches the page after cursor and returns the cursor of the following page.
type CursorPageFunc[T any] func(ctx context.Context, cursor string) (items []T, next string, err error)

// CursorPager walks a cursor-paginated collection. The walk ends when the remote returns an empty cursor.
type CursorPager[T any] struct {
	Op     string
	Fetch  CursorPageFunc[T]
	Pacer  *Pacer
	Logger *log.Logger
}

// Run visits every page and returns the number of remote calls made.
func (p *CursorPager[T]) Run(ctx context.Context, visit func(batch []T) error) (int, error) {
	logger := p.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	calls := 0
	cursor := ""
	for {
		if err := p.Pacer.Wait(ctx); err != nil {
			return calls, err
		}

		logger.Info(p.Op, "after", cursor)
		items, next, err := p.Fetch(ctx, cursor)
		calls++
		if err != nil {
			return calls, shared.NewRemoteCallError(p.Op, err, "after=%q", cursor)
		}

		if err := visit(items); err != nil {
			return calls, err
		}

		if next == "" {
			return calls, nil
		}
		cursor = next
	}
}
