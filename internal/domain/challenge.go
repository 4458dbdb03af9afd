package domain

import "time"

// Challenge represents a time-boxed video contest. Challenges are created by
// an administrative actor and are immutable afterwards; whether a challenge
// is "past" is derived from the clock, never stored.
type Challenge struct {
	ID          string
	Title       string
	Description string
	Criteria    []string
	CoverURL    *string
	StartsAt    time.Time
	EndsAt      time.Time
	CreatedAt   time.Time
}

// Ended reports whether the challenge is past relative to now.
func (c Challenge) Ended(now time.Time) bool {
	return now.After(c.EndsAt)
}
