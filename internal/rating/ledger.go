// Package rating implements the ledger that applies a rating at most once
// per (submission, rater) pair and keeps submission aggregates consistent.
package rating

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kicklab/challenge-api/internal/domain"
	"github.com/kicklab/challenge-api/internal/metrics"
	"github.com/kicklab/challenge-api/internal/repository"
	"github.com/kicklab/challenge-api/internal/store"
)

// Star values accepted by the product.
const (
	MinStars = 1
	MaxStars = 5
)

var (
	// ErrInvalidStars rejects a star value outside [1,5] before any I/O.
	ErrInvalidStars = errors.New("rating: stars must be between 1 and 5")
	// ErrUnauthenticated rejects a missing rater identity before any I/O.
	ErrUnauthenticated = errors.New("rating: no authenticated rater")
	// ErrAlreadyRated indicates the rater already rated this submission.
	ErrAlreadyRated = errors.New("rating: already rated")
	// ErrStoreUnavailable indicates the store kept conflicting or was
	// unreachable; the caller may retry the whole operation.
	ErrStoreUnavailable = errors.New("rating: store unavailable")
)

// ledgerStore is the slice of the ratings repository the ledger needs.
type ledgerStore interface {
	Submit(ctx context.Context, params repository.RatingSubmitParams) (domain.RatingReceipt, error)
	Exists(ctx context.Context, submissionID, raterID string) (bool, error)
}

// Ledger validates rating requests and delegates the atomic read-check-write
// to the repository's serializable transaction.
type Ledger struct {
	ratings ledgerStore
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
}

// NewLedger constructs a Ledger. metrics may be nil in tests.
func NewLedger(ratings ledgerStore, m *metrics.Metrics, logger *zap.SugaredLogger) *Ledger {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Ledger{ratings: ratings, metrics: m, logger: logger}
}

// SubmitRating applies stars from raterID to a submission exactly once and
// returns the submission's new aggregates. Precondition failures surface as
// ErrInvalidStars or ErrUnauthenticated without touching the store; a
// duplicate rating surfaces as ErrAlreadyRated with no mutation; conflict
// exhaustion surfaces as ErrStoreUnavailable.
func (l *Ledger) SubmitRating(ctx context.Context, submissionID, raterID string, stars int) (domain.RatingReceipt, error) {
	if stars < MinStars || stars > MaxStars {
		return domain.RatingReceipt{}, ErrInvalidStars
	}
	if strings.TrimSpace(raterID) == "" {
		return domain.RatingReceipt{}, ErrUnauthenticated
	}

	receipt, err := l.ratings.Submit(ctx, repository.RatingSubmitParams{
		SubmissionID: submissionID,
		RaterID:      raterID,
		Stars:        stars,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyRated):
			if l.metrics != nil {
				l.metrics.RatingConflicts.Inc()
			}
			return domain.RatingReceipt{}, ErrAlreadyRated
		case errors.Is(err, repository.ErrNotFound):
			return domain.RatingReceipt{}, err
		case errors.Is(err, store.ErrTxExhausted):
			l.logger.Warnw("rating: transaction retries exhausted",
				"submission", submissionID, "error", err)
			return domain.RatingReceipt{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		default:
			return domain.RatingReceipt{}, fmt.Errorf("submit rating: %w", err)
		}
	}

	if l.metrics != nil {
		l.metrics.RatingsSubmitted.Inc()
	}
	l.logger.Debugw("rating: recorded",
		"submission", submissionID, "stars", stars,
		"totalStars", receipt.TotalStars, "ratingCount", receipt.RatingCount)
	return receipt, nil
}

// HasRated reports whether raterID already rated a submission. Drives UI
// state only; never an authorization check.
func (l *Ledger) HasRated(ctx context.Context, submissionID, raterID string) (bool, error) {
	if strings.TrimSpace(raterID) == "" {
		return false, ErrUnauthenticated
	}
	return l.ratings.Exists(ctx, submissionID, raterID)
}
