// Package watch provides snapshot subscriptions over the submission set of a
// challenge. A watcher emits complete snapshots, never diffs; consumers must
// treat every snapshot as a full replacement of the previous one.
package watch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kicklab/challenge-api/internal/domain"
)

// Lister loads the current full submission set of a challenge.
type Lister interface {
	ListByChallenge(ctx context.Context, challengeID string) ([]domain.Submission, error)
}

// Watcher polls one challenge and emits its submission snapshots. A watcher
// is restartable: Run may be called again after it returns.
type Watcher struct {
	lister      Lister
	challengeID string
	interval    time.Duration
	logger      *zap.SugaredLogger
	onSnapshot  func()
}

// New constructs a Watcher. onSnapshot, if non-nil, is invoked once per
// emitted snapshot (an observability hook).
func New(lister Lister, challengeID string, interval time.Duration, logger *zap.SugaredLogger, onSnapshot func()) *Watcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Watcher{
		lister:      lister,
		challengeID: challengeID,
		interval:    interval,
		logger:      logger,
		onSnapshot:  onSnapshot,
	}
}

// Run emits an immediate snapshot and then one per interval until ctx is
// done, closing out on return. List failures are logged and the tick is
// skipped; the sequence resumes on the next interval.
func (w *Watcher) Run(ctx context.Context, out chan<- []domain.Submission) {
	defer close(out)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		snapshot, err := w.lister.ListByChallenge(ctx, w.challengeID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warnw("watch: snapshot failed",
				"challenge", w.challengeID, "error", err)
		} else {
			select {
			case out <- snapshot:
				if w.onSnapshot != nil {
					w.onSnapshot()
				}
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
