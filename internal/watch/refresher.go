package watch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kicklab/challenge-api/internal/cache"
	"github.com/kicklab/challenge-api/internal/domain"
	"github.com/kicklab/challenge-api/internal/ranking"
)

// ActiveLister reports the challenges that are still running.
type ActiveLister interface {
	ListActiveIDs(ctx context.Context) ([]string, error)
}

// Refresher keeps the leaderboard cache warm: it maintains one Watcher per
// active challenge and recomputes the top-N from every snapshot received.
// The cache stays an acceleration layer; readers fall back to the repository
// when an entry is missing.
type Refresher struct {
	challenges ActiveLister
	lister     Lister
	board      *cache.Leaderboard
	topN       int
	interval   time.Duration
	logger     *zap.SugaredLogger
	onSnapshot func()

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewRefresher constructs a Refresher.
func NewRefresher(challenges ActiveLister, lister Lister, board *cache.Leaderboard, topN int, interval time.Duration, logger *zap.SugaredLogger, onSnapshot func()) *Refresher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Refresher{
		challenges: challenges,
		lister:     lister,
		board:      board,
		topN:       topN,
		interval:   interval,
		logger:     logger,
		onSnapshot: onSnapshot,
		cancels:    make(map[string]context.CancelFunc),
	}
}

// Run reconciles the watcher set once per interval and blocks until ctx is
// done. All watchers are stopped before it returns.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	defer r.stopAll()

	for {
		ids, err := r.challenges.ListActiveIDs(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Warnw("watch: listing active challenges failed", "error", err)
		} else {
			r.reconcile(ctx, ids, &wg)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Refresher) reconcile(ctx context.Context, active []string, wg *sync.WaitGroup) {
	current := make(map[string]struct{}, len(active))
	for _, id := range active {
		current[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Stop watchers whose challenge has ended.
	for id, cancel := range r.cancels {
		if _, ok := current[id]; !ok {
			cancel()
			delete(r.cancels, id)
		}
	}

	// Start watchers for newly active challenges.
	for id := range current {
		if _, ok := r.cancels[id]; ok {
			continue
		}
		watchCtx, cancel := context.WithCancel(ctx)
		r.cancels[id] = cancel

		watcher := New(r.lister, id, r.interval, r.logger, r.onSnapshot)
		snapshots := make(chan []domain.Submission, 1)

		wg.Add(2)
		go func() {
			defer wg.Done()
			watcher.Run(watchCtx, snapshots)
		}()
		go func(challengeID string) {
			defer wg.Done()
			r.consume(watchCtx, challengeID, snapshots)
		}(id)
	}
}

func (r *Refresher) consume(ctx context.Context, challengeID string, snapshots <-chan []domain.Submission) {
	for snapshot := range snapshots {
		top := ranking.RankTop(snapshot, r.topN)
		if err := r.board.Put(ctx, challengeID, top); err != nil {
			r.logger.Warnw("watch: leaderboard cache update failed",
				"challenge", challengeID, "error", err)
		}
	}
}

func (r *Refresher) stopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, cancel := range r.cancels {
		cancel()
		delete(r.cancels, id)
	}
}
