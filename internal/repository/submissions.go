package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kicklab/challenge-api/internal/domain"
)

// SubmissionsRepository provides persistence helpers for video submissions.
type SubmissionsRepository struct {
	pool *pgxpool.Pool
}

const submissionColumns = `
    id,
    challenge_id,
    owner_id,
    video_url,
    storage_path,
    duration_secs,
    total_stars,
    total_points,
    rating_count,
    created_at
`

// SubmissionCreateParams bundles the fields required to create a submission.
type SubmissionCreateParams struct {
	ChallengeID  string
	OwnerID      string
	VideoURL     string
	StoragePath  string
	DurationSecs float64
}

// Create inserts a new submission row with zeroed aggregates.
func (r *SubmissionsRepository) Create(ctx context.Context, params SubmissionCreateParams) (domain.Submission, error) {
	query := fmt.Sprintf(`
        INSERT INTO submissions (challenge_id, owner_id, video_url, storage_path, duration_secs)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, submissionColumns)

	row := r.pool.QueryRow(ctx, query,
		params.ChallengeID, params.OwnerID, params.VideoURL,
		params.StoragePath, params.DurationSecs)
	return scanSubmission(row)
}

// GetByID fetches a submission by its identifier.
func (r *SubmissionsRepository) GetByID(ctx context.Context, id string) (domain.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE id = $1`, submissionColumns)
	row := r.pool.QueryRow(ctx, query, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Submission{}, ErrNotFound
		}
		return domain.Submission{}, err
	}
	return sub, nil
}

// ListByChallenge returns the full submission set of a challenge, oldest
// first. Callers treat the result as a complete snapshot.
func (r *SubmissionsRepository) ListByChallenge(ctx context.Context, challengeID string) ([]domain.Submission, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM submissions
        WHERE challenge_id = $1
        ORDER BY created_at ASC, id ASC
    `, submissionColumns)

	rows, err := r.pool.Query(ctx, query, challengeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sub)
	}
	return items, rows.Err()
}

// Delete removes a submission and, via cascade, its ratings. The deleted row
// is returned so callers can release the stored blob.
func (r *SubmissionsRepository) Delete(ctx context.Context, id string) (domain.Submission, error) {
	query := fmt.Sprintf(`DELETE FROM submissions WHERE id = $1 RETURNING %s`, submissionColumns)
	row := r.pool.QueryRow(ctx, query, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Submission{}, ErrNotFound
		}
		return domain.Submission{}, err
	}
	return sub, nil
}

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var sub domain.Submission
	err := row.Scan(
		&sub.ID,
		&sub.ChallengeID,
		&sub.OwnerID,
		&sub.VideoURL,
		&sub.StoragePath,
		&sub.DurationSecs,
		&sub.TotalStars,
		&sub.TotalPoints,
		&sub.RatingCount,
		&sub.CreatedAt,
	)
	if err != nil {
		return domain.Submission{}, err
	}
	return sub, nil
}
