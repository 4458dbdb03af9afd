package ranking

import (
	"reflect"
	"testing"
	"time"

	"github.com/kicklab/challenge-api/internal/domain"
)

func sub(id string, points int64, createdAt time.Time) domain.Submission {
	return domain.Submission{ID: id, TotalPoints: points, CreatedAt: createdAt}
}

func ids(subs []domain.Submission) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.ID)
	}
	return out
}

func TestRankTop_TieBrokenByEarlierCreation(t *testing.T) {
	t0 := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	t2 := t0.Add(2 * time.Hour)

	input := []domain.Submission{
		sub("A", 100, t1),
		sub("B", 100, t0),
		sub("C", 90, t2),
	}

	got := ids(RankTop(input, 3))
	want := []string{"B", "A", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RankTop = %v, want %v", got, want)
	}
}

func TestRankTop_TruncatesToN(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	input := []domain.Submission{
		sub("a", 50, base),
		sub("b", 70, base.Add(time.Minute)),
		sub("c", 60, base.Add(2 * time.Minute)),
		sub("d", 80, base.Add(3 * time.Minute)),
	}

	got := ids(RankTop(input, 3))
	want := []string{"d", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RankTop = %v, want %v", got, want)
	}
}

func TestRankTop_StableForExactTies(t *testing.T) {
	ts := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	input := []domain.Submission{
		sub("x", 40, ts),
		sub("y", 40, ts),
		sub("z", 40, ts),
	}

	got := ids(RankTop(input, 3))
	want := []string{"x", "y", "z"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RankTop = %v, want input order %v for exact ties", got, want)
	}
}

func TestRankTop_Idempotent(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	input := []domain.Submission{
		sub("a", 10, base.Add(time.Minute)),
		sub("b", 30, base),
		sub("c", 20, base.Add(2 * time.Minute)),
	}

	first := RankTop(input, 2)
	second := RankTop(input, 2)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("RankTop not idempotent: %v vs %v", ids(first), ids(second))
	}
}

func TestRankTop_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	input := []domain.Submission{
		sub("a", 10, base),
		sub("b", 30, base.Add(time.Minute)),
	}
	snapshot := make([]domain.Submission, len(input))
	copy(snapshot, input)

	_ = RankTop(input, 2)
	if !reflect.DeepEqual(input, snapshot) {
		t.Fatalf("RankTop mutated its input")
	}
}

func TestRankTop_EmptyAndZeroN(t *testing.T) {
	if got := RankTop(nil, 3); len(got) != 0 {
		t.Fatalf("RankTop(nil) = %v, want empty", ids(got))
	}
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	if got := RankTop([]domain.Submission{sub("a", 1, base)}, 0); got != nil {
		t.Fatalf("RankTop(n=0) = %v, want nil", ids(got))
	}
}

func TestPinnedOrder(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	x := sub("X", 0, base)
	y := sub("Y", 0, base)
	z := sub("Z", 0, base)
	w := sub("W", 0, base)

	got := ids(PinnedOrder(
		[]domain.Submission{x, y},
		[]domain.Submission{y, z, x, w},
	))
	want := []string{"X", "Y", "Z", "W"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PinnedOrder = %v, want %v", got, want)
	}
}

func TestPinnedOrder_EmptyTop(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	all := []domain.Submission{sub("a", 0, base), sub("b", 0, base)}

	got := ids(PinnedOrder(nil, all))
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PinnedOrder = %v, want %v", got, want)
	}
}
