package domain

import "time"

// User mirrors the identity provider's view of a user. Rows are upserted
// from verified token claims, never created through a self-service flow.
type User struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
}
