// Package dcengine owns configuration, the in-run deduplication set,
// cancellation, heartbeat emission, and the overall three-phase run
// (optional rehydrate → search → detail) of one scenario's crawl
// (spec.md §4.6). Grounded on the teacher's Crawler.Run(resume bool)
// phase sequencing and progress-ticker goroutine in pkg/crawler/crawler.go.
package dcengine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/kimjiho/dcrawl/pkg/dccollect"
	"github.com/kimjiho/dcrawl/pkg/dcconfig"
	"github.com/kimjiho/dcrawl/pkg/dcerrors"
	"github.com/kimjiho/dcrawl/pkg/dcfetch"
	"github.com/kimjiho/dcrawl/pkg/dcmodel"
	"github.com/kimjiho/dcrawl/pkg/dcrepo"
	"github.com/kimjiho/dcrawl/pkg/dcwalk"
)

// Options configures one Engine instance. Semaphore, when non-nil, is
// shared across multiple concurrently-running Engine instances to cap
// total in-flight upstream requests (spec.md §5: engines "share nothing
// mutable" except this caller-supplied budget).
type Options struct {
	Config            dcconfig.RunConfig
	Repo              dcrepo.Repository
	HTTPTimeout       time.Duration
	MaxRetries        int
	HeartbeatInterval time.Duration
	RehydrateEnabled  bool
	Semaphore         *semaphore.Weighted
	Log               *logrus.Logger
}

// Engine runs one scenario's crawl from construction to completion.
type Engine struct {
	config           dcconfig.RunConfig
	repo             dcrepo.Repository
	fetcher          *dcfetch.Fetcher
	heartbeatEvery   time.Duration
	rehydrateEnabled bool
	inRunSet         *dcwalk.InRunSet
	log              *logrus.Entry
	shouldCancel     func() bool
}

// New constructs an Engine per spec.md §4.6 "Construction establishes".
func New(opts Options) *Engine {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}
	entry := log.WithFields(logrus.Fields{
		"scenario": opts.Config.ScenarioID,
		"cid":      opts.Config.CrawlerCode,
	})

	httpClient := dcfetch.NewClient(opts.HTTPTimeout, log)
	fetcher := dcfetch.NewFetcher(httpClient, opts.MaxRetries, entry)
	if opts.Semaphore != nil {
		fetcher = fetcher.WithSemaphore(opts.Semaphore)
	}

	heartbeat := opts.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}

	return &Engine{
		config:           opts.Config,
		repo:             opts.Repo,
		fetcher:          fetcher,
		heartbeatEvery:   heartbeat,
		rehydrateEnabled: opts.RehydrateEnabled,
		inRunSet:         dcwalk.NewInRunSet(),
		log:              entry,
	}
}

// WithCancellation sets the cooperative-cancellation predicate polled
// before every post fetch, before every listing page fetch, and between
// comment pages (spec.md §4.6).
func (e *Engine) WithCancellation(shouldCancel func() bool) *Engine {
	e.shouldCancel = shouldCancel
	return e
}

// StartCrawling runs the three-phase crawl: optional rehydrate → search
// → detail (spec.md §4.6). Cancellation is cooperative and silent: the
// run returns promptly and without error when shouldCancel reports true.
func (e *Engine) StartCrawling(ctx context.Context) error {
	stopHeartbeat := e.startHeartbeat()
	defer stopHeartbeat()

	// The in-run ID set lives for exactly one StartCrawling call.
	e.inRunSet = dcwalk.NewInRunSet()

	collector := &dccollect.Collector{
		Fetcher:      e.fetcher,
		Repo:         e.repo,
		ScenarioID:   e.config.ScenarioID,
		ShouldCancel: e.shouldCancel,
		Log:          e.log,
	}

	if e.rehydrateEnabled && e.config.ExpirationDate != nil {
		if err := e.runRehydrate(ctx, collector); err != nil {
			return err
		}
	}

	if e.cancelled() {
		return nil
	}

	queued, err := e.runSearch(ctx)
	if err != nil {
		return err
	}

	if e.cancelled() {
		return nil
	}

	return collector.Run(ctx, queued)
}

func (e *Engine) runRehydrate(ctx context.Context, collector *dccollect.Collector) error {
	posts, err := e.repo.ListRecentPosts(ctx, e.config.ScenarioID, *e.config.ExpirationDate)
	if err != nil {
		return fmt.Errorf("%w: listing recent posts for rehydrate: %v", dcerrors.ErrBackend, err)
	}
	e.log.WithField("count", len(posts)).Info("rehydrating recent posts")
	return collector.Rehydrate(ctx, posts)
}

func (e *Engine) runSearch(ctx context.Context) ([]dcmodel.PlatformPostID, error) {
	walker := &dcwalk.Walker{
		Fetcher:      e.fetcher,
		Repo:         e.repo,
		ScenarioID:   e.config.ScenarioID,
		Mode:         e.config.Mode,
		Seen:         e.inRunSet,
		ShouldCancel: e.shouldCancel,
		Log:          e.log,
	}

	queued, err := walker.Run(ctx, e.config.FirstURL)
	if err != nil {
		return nil, fmt.Errorf("listing walk: %w", err)
	}
	e.log.WithField("queued", len(queued)).Info("listing walk complete")
	return queued, nil
}

func (e *Engine) cancelled() bool {
	return e.shouldCancel != nil && e.shouldCancel()
}

func (e *Engine) startHeartbeat() func() {
	ticker := time.NewTicker(e.heartbeatEvery)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				e.log.Info("heartbeat: crawl still running")
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
