package domain

import "time"

// Rating is a single rater's one-time star evaluation of a submission. The
// (SubmissionID, RaterID) pair is unique for all time.
type Rating struct {
	SubmissionID string
	RaterID      string
	Stars        int
	CreatedAt    time.Time
}

// RatingReceipt reports a submission's aggregates after a successful rating.
type RatingReceipt struct {
	SubmissionID string
	TotalStars   int64
	TotalPoints  int64
	RatingCount  int64
}
