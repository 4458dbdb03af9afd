package rating

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kicklab/challenge-api/internal/domain"
	"github.com/kicklab/challenge-api/internal/repository"
	"github.com/kicklab/challenge-api/internal/store"
)

// fakeStore records calls and returns scripted results.
type fakeStore struct {
	submitCalls int
	existsCalls int
	submitErr   error
	receipt     domain.RatingReceipt
	exists      bool
}

func (f *fakeStore) Submit(ctx context.Context, params repository.RatingSubmitParams) (domain.RatingReceipt, error) {
	f.submitCalls++
	if f.submitErr != nil {
		return domain.RatingReceipt{}, f.submitErr
	}
	return f.receipt, nil
}

func (f *fakeStore) Exists(ctx context.Context, submissionID, raterID string) (bool, error) {
	f.existsCalls++
	return f.exists, nil
}

func TestSubmitRating_InvalidStarsFailFast(t *testing.T) {
	for _, stars := range []int{0, 6, -1, 100} {
		t.Run(fmt.Sprintf("stars=%d", stars), func(t *testing.T) {
			fake := &fakeStore{}
			ledger := NewLedger(fake, nil, nil)

			_, err := ledger.SubmitRating(context.Background(), "sub-1", "rater-1", stars)
			if !errors.Is(err, ErrInvalidStars) {
				t.Fatalf("error = %v, want ErrInvalidStars", err)
			}
			if fake.submitCalls != 0 {
				t.Fatalf("store touched before validation: %d calls", fake.submitCalls)
			}
		})
	}
}

func TestSubmitRating_MissingIdentityFailFast(t *testing.T) {
	fake := &fakeStore{}
	ledger := NewLedger(fake, nil, nil)

	_, err := ledger.SubmitRating(context.Background(), "sub-1", "   ", 3)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
	if fake.submitCalls != 0 {
		t.Fatalf("store touched before validation: %d calls", fake.submitCalls)
	}
}

func TestSubmitRating_Success(t *testing.T) {
	fake := &fakeStore{receipt: domain.RatingReceipt{
		SubmissionID: "sub-1",
		TotalStars:   7,
		TotalPoints:  35,
		RatingCount:  2,
	}}
	ledger := NewLedger(fake, nil, nil)

	receipt, err := ledger.SubmitRating(context.Background(), "sub-1", "rater-1", 3)
	if err != nil {
		t.Fatalf("SubmitRating: %v", err)
	}
	if receipt.TotalPoints != receipt.TotalStars*domain.PointsPerStar {
		t.Fatalf("points invariant broken: %+v", receipt)
	}
	if fake.submitCalls != 1 {
		t.Fatalf("submit calls = %d, want 1", fake.submitCalls)
	}
}

func TestSubmitRating_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		wantErr  error
	}{
		{"already rated", repository.ErrAlreadyRated, ErrAlreadyRated},
		{"not found", repository.ErrNotFound, repository.ErrNotFound},
		{
			"retries exhausted",
			fmt.Errorf("%w: serialization failure", store.ErrTxExhausted),
			ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeStore{submitErr: tt.storeErr}
			ledger := NewLedger(fake, nil, nil)

			_, err := ledger.SubmitRating(context.Background(), "sub-1", "rater-1", 4)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHasRated(t *testing.T) {
	fake := &fakeStore{exists: true}
	ledger := NewLedger(fake, nil, nil)

	rated, err := ledger.HasRated(context.Background(), "sub-1", "rater-1")
	if err != nil {
		t.Fatalf("HasRated: %v", err)
	}
	if !rated {
		t.Fatalf("HasRated = false, want true")
	}

	if _, err := ledger.HasRated(context.Background(), "sub-1", ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
}
