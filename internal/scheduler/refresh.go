package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/lightkeep/lightkeep/internal/logger"
	"github.com/lightkeep/lightkeep/internal/sources/watchlist"
	"github.com/lightkeep/lightkeep/internal/store"
)

// Dispatcher submits one asynchronous refresh task for a URL. The task is
// expected to call back into the audit path later; Submit only enqueues.
type Dispatcher interface {
	Submit(ctx context.Context, url string) error
}

// Refresher fans out refresh tasks for every known URL. Submissions are
// independent: one failed enqueue is logged and does not stop the rest.
type Refresher struct {
	store         store.Store
	watchlist     *watchlist.Loader // nil = no watchlist configured
	dispatcher    Dispatcher
	logger        logger.Logger
	interval      time.Duration // 0 = triggered refresh only, no ticker
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewRefresher creates a refresher. manualTrigger lets the cron endpoint
// kick a refresh without waiting for the ticker.
func NewRefresher(
	s store.Store,
	wl *watchlist.Loader,
	d Dispatcher,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *Refresher {
	return &Refresher{
		store:         s,
		watchlist:     wl,
		dispatcher:    d,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start launches the refresh loop. With a zero interval the loop only
// reacts to manual triggers.
func (rf *Refresher) Start(ctx context.Context) error {
	var tick <-chan time.Time
	var ticker *time.Ticker
	if rf.interval > 0 {
		ticker = time.NewTicker(rf.interval)
		tick = ticker.C
	}

	go func() {
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				if _, err := rf.RefreshAll(ctx); err != nil {
					rf.logger.Error("scheduled refresh failed", logger.Error(err))
				}
			case <-rf.manualTrigger:
				rf.logger.Info("manual refresh triggered")
				if _, err := rf.RefreshAll(ctx); err != nil {
					rf.logger.Error("manual refresh failed", logger.Error(err))
				}
			case <-rf.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the refresh loop.
func (rf *Refresher) Stop() {
	close(rf.stopCh)
}

// RefreshAll enumerates known URLs (plus the watchlist, when configured)
// and submits one refresh task per URL. It returns the number of
// submissions issued; per-URL failures are logged, counted and skipped,
// never propagated.
func (rf *Refresher) RefreshAll(ctx context.Context) (int, error) {
	urls, err := rf.store.ListKnownURLs(ctx)
	if err != nil {
		return 0, err
	}

	urls = rf.mergeWatchlist(urls)

	submitted := 0
	failed := 0
	for _, url := range urls {
		submitted++
		if err := rf.dispatcher.Submit(ctx, url); err != nil {
			failed++
			rf.logger.Error("failed to submit refresh task",
				logger.String("url", url),
				logger.Error(err))
		}
	}

	rf.logger.Info("refresh fan-out completed",
		logger.Int("urls", len(urls)),
		logger.Int("submitted", submitted),
		logger.Int("failed", failed))

	return submitted, nil
}

// mergeWatchlist appends watchlist URLs that are not already known and
// returns the combined list sorted ascending. A watchlist load failure is
// logged and ignored; the stored URLs still get refreshed.
func (rf *Refresher) mergeWatchlist(urls []string) []string {
	if rf.watchlist == nil {
		return urls
	}

	extra, err := rf.watchlist.Load()
	if err != nil {
		rf.logger.Warn("failed to load watchlist, refreshing stored urls only",
			logger.Error(err))
		return urls
	}

	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		seen[u] = true
	}
	for _, u := range extra {
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	sort.Strings(urls)
	return urls
}
