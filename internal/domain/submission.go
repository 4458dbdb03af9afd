package domain

import "time"

// PointsPerStar is the fixed star-to-points conversion used by the
// leaderboard. Changing it changes leaderboard semantics.
const PointsPerStar = 5

// Submission is one user's video entry into a challenge, together with the
// aggregate fields maintained by the rating ledger.
type Submission struct {
	ID           string
	ChallengeID  string
	OwnerID      string
	VideoURL     string
	StoragePath  string
	DurationSecs float64
	TotalStars   int64
	TotalPoints  int64
	RatingCount  int64
	CreatedAt    time.Time
}
