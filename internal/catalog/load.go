package catalog

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ballotmap/internal"
	"ballotmap/internal/config"
)

// FeedBatch is the outcome of fetching one configured feed. Err is set when
// the feed contributed nothing.
type FeedBatch struct {
	Feed    config.Feed
	Records []internal.RawRecord
	Cached  bool
	Err     error
}

type Fetcher interface {
	FetchRecords(ctx context.Context, url string) ([]internal.RawRecord, error)
}

type Loader struct {
	fetcher Fetcher
	feeds   []config.Feed
	cache   *FeedCache
	logger  *zap.Logger
}

func NewLoader(fetcher Fetcher, feeds []config.Feed, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, feeds: feeds, cache: NewFeedCache(), logger: logger}
}

// Load fetches every feed concurrently and waits for all of them to settle.
// A failing feed never cancels the others. Batches come back in feed
// configuration order.
func (l *Loader) Load(ctx context.Context) []FeedBatch {
	batches := make([]FeedBatch, len(l.feeds))
	var g errgroup.Group
	for i, feed := range l.feeds {
		g.Go(func() error {
			records, cached, err := l.cache.Get(ctx, feed.URL, l.fetcher.FetchRecords)
			batches[i] = FeedBatch{Feed: feed, Records: records, Cached: cached, Err: err}
			if err != nil {
				l.logger.Warn("feed excluded from build", zap.String("feed", feed.Name), zap.String("url", feed.URL), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
	return batches
}

// Reset drops cached feed documents so the next Load refetches everything.
func (l *Loader) Reset() {
	l.cache.Reset()
}

// Build loads all feeds and folds them into a fresh index.
func (l *Loader) Build(ctx context.Context, incumbents []Incumbent) (*Index, BuildReport) {
	return BuildIndex(l.Load(ctx), incumbents, l.logger)
}
