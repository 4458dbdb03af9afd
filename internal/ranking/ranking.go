// Package ranking orders challenge submissions for leaderboard display. All
// functions are pure: they operate on an immutable snapshot, never mutate
// their input, and are safe to recompute on every aggregate update.
package ranking

import (
	"sort"

	"github.com/kicklab/challenge-api/internal/domain"
)

// DefaultTopN is the leaderboard size shown by the product.
const DefaultTopN = 3

// RankTop returns the top n submissions ordered by total points descending,
// ties broken by earlier creation time. The sort is stable, so submissions
// with identical points and identical timestamps keep their input order.
func RankTop(submissions []domain.Submission, n int) []domain.Submission {
	if n <= 0 {
		return nil
	}
	ordered := make([]domain.Submission, len(submissions))
	copy(ordered, submissions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].TotalPoints != ordered[j].TotalPoints {
			return ordered[i].TotalPoints > ordered[j].TotalPoints
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	if len(ordered) > n {
		ordered = ordered[:n]
	}
	return ordered
}

// PinnedOrder returns top followed by the remaining elements of all in their
// original relative order, with anything already in top removed. Used only
// for display; nothing is mutated.
func PinnedOrder(top, all []domain.Submission) []domain.Submission {
	pinned := make(map[string]struct{}, len(top))
	out := make([]domain.Submission, 0, len(all))
	for _, sub := range top {
		if _, ok := pinned[sub.ID]; ok {
			continue
		}
		pinned[sub.ID] = struct{}{}
		out = append(out, sub)
	}
	for _, sub := range all {
		if _, ok := pinned[sub.ID]; ok {
			continue
		}
		out = append(out, sub)
	}
	return out
}
