package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samvad-hq/feed-loader/internal/config"
	"github.com/samvad-hq/feed-loader/internal/logger"
	"github.com/samvad-hq/feed-loader/internal/storage"
	"github.com/samvad-hq/feed-loader/pkg/feedapi"
	"github.com/samvad-hq/feed-loader/pkg/feeds"
	"github.com/samvad-hq/feed-loader/pkg/httpclient"
	"github.com/samvad-hq/feed-loader/pkg/publishers"
)

// eventSink is the publishing surface the poller relies on. *publishers.Fanout satisfies it.
type eventSink interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
	Close() error
}

// feedSource pairs a feed definition with the loader bound to its URL.
type feedSource struct {
	feed   feeds.Feed
	loader feedapi.FeedLoader
}

// Poller represents the feed loader runtime. It owns one loader per feed,
// polls them on an interval, and forwards unseen items to the publishers.
type Poller struct {
	sources  []feedSource
	sink     eventSink
	store    storage.Store
	interval time.Duration
	log      logger.Logger
}

// NewPoller builds a poller runtime from config files.
func NewPoller(ctx context.Context, cfg *config.Config, log logger.Logger) (*Poller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	feedReg, err := feeds.LoadRegistry(cfg.FeedsFile)
	if err != nil {
		return nil, fmt.Errorf("load feeds registry: %w", err)
	}
	feedList := feedReg.All()
	feedIDs := make([]string, 0, len(feedList))
	for _, f := range feedList {
		feedIDs = append(feedIDs, f.ID)
	}
	log.InfoObj("feeds registry loaded", "feeds_meta", map[string]any{
		"count": len(feedIDs),
		"ids":   feedIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	fanout, err := publishers.BuildFanout(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		ItemTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"item_ttl_seconds":         int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	transport := httpclient.NewRestyClient(cfg.HTTPTimeout)
	sources := make([]feedSource, 0, len(feedList))
	for _, f := range feedList {
		client := httpclient.NewBackgroundClient(transport, feeds.Headers(f, cfg.UserAgent))
		sources = append(sources, feedSource{
			feed:   f,
			loader: feedapi.NewRemoteLoader(f.URL, client),
		})
	}

	return newPoller(sources, fanout, store, cfg.PollInterval, log), nil
}

func newPoller(sources []feedSource, sink eventSink, store storage.Store, interval time.Duration, log logger.Logger) *Poller {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Poller{
		sources:  sources,
		sink:     sink,
		store:    store,
		interval: interval,
		log:      log,
	}
}

// Run polls every feed once, then again on each tick until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if p == nil || p.sink == nil || p.store == nil {
		return fmt.Errorf("poller is not initialized")
	}
	if p.interval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	defer p.close()

	if len(p.sources) == 0 {
		p.log.WarnObj("no feeds configured; poller idle", "poller_state", nil)
		<-ctx.Done()
		return nil
	}

	p.log.InfoObj("poller loop starting", "poller_state", map[string]any{
		"feeds_count":      len(p.sources),
		"publishers_count": p.sink.Size(),
		"poll_interval":    p.interval.String(),
	})

	if err := p.RunOnce(ctx); err != nil {
		p.log.ErrorObj("initial poll failed", "error", err.Error())
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoObj("poller loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				p.log.ErrorObj("scheduled poll failed", "error", err.Error())
			}
		}
	}
}

// RunOnce performs a single pass across all feeds. Feed failures are joined;
// one failing feed does not stop the others.
func (p *Poller) RunOnce(ctx context.Context) error {
	start := time.Now()
	var errs []error
	published := 0

	for _, src := range p.sources {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		n, err := p.pollFeed(ctx, src)
		published += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	p.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"feeds_count":     len(p.sources),
		"items_published": published,
		"failed_feeds":    len(errs),
		"elapsed_ms":      time.Since(start).Milliseconds(),
	})
	return errors.Join(errs...)
}

// pollFeed loads one feed and publishes the items not seen before.
func (p *Poller) pollFeed(ctx context.Context, src feedSource) (int, error) {
	res, err := feedapi.LoadSync(ctx, src.loader)
	if err != nil {
		return 0, fmt.Errorf("feed %s: %w", src.feed.ID, err)
	}

	items, err := res.Unwrap()
	if err != nil {
		p.log.WarnObj("feed load failed", "feed_error", map[string]any{
			"feed_id": src.feed.ID,
			"url":     src.feed.URL,
			"kind":    err.Error(),
		})
		return 0, fmt.Errorf("feed %s: %w", src.feed.ID, err)
	}

	published := 0
	for _, item := range items {
		key := storage.ItemKey(src.feed.ID, item.ID)
		seen, err := p.store.SeenItem(key)
		if err != nil {
			p.log.WarnObj("seen lookup failed", "storage_error", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		}
		if seen {
			continue
		}

		delivered, err := p.sink.Publish(ctx, publishers.NewEvent(src.feed.ID, src.feed.Name, item))
		if err != nil {
			p.log.WarnObj("publish failed", "publish_error", map[string]any{
				"feed_id":   src.feed.ID,
				"item_id":   item.ID.String(),
				"delivered": delivered,
				"error":     err.Error(),
			})
		}
		// Items no publisher accepted are retried on the next pass.
		if delivered == 0 && p.sink.Size() > 0 {
			continue
		}
		if err := p.store.MarkItem(key); err != nil {
			p.log.WarnObj("mark seen failed", "storage_error", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		}
		published++
	}

	p.log.InfoObj("feed poll completed", "feed_result", map[string]any{
		"feed_id":         src.feed.ID,
		"items_loaded":    len(items),
		"items_published": published,
	})
	return published, nil
}

// close releases loaders, publishers and the store, logging any errors encountered.
func (p *Poller) close() {
	for _, src := range p.sources {
		if c, ok := src.loader.(io.Closer); ok {
			_ = c.Close()
		}
	}
	if err := p.sink.Close(); err != nil {
		p.log.ErrorObj("publishers close failed", "error", err.Error())
	}
	if err := p.store.Close(); err != nil {
		p.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
