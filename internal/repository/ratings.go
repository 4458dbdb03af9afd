package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kicklab/challenge-api/internal/domain"
	"github.com/kicklab/challenge-api/internal/store"
)

// RatingsRepository records one-time star ratings and keeps submission
// aggregates consistent with the set of ratings stored.
type RatingsRepository struct {
	pool *pgxpool.Pool
	tx   *store.TxRunner
}

// RatingSubmitParams captures the payload required to record a rating.
type RatingSubmitParams struct {
	SubmissionID string
	RaterID      string
	Stars        int
}

// Submit records a rating and recomputes the submission's aggregates as one
// atomic unit. The whole sequence runs inside a serializable transaction:
//
//  1. an existing (submission, rater) rating aborts with ErrAlreadyRated,
//  2. the submission's aggregates are read under a row lock,
//  3. the rating row is inserted with a server-assigned timestamp,
//  4. total_stars, rating_count and total_points (stars x 5) are updated.
//
// Either every write lands or none does. The composite primary key on
// ratings is the backstop should two transactions for the same rater race
// past the existence check.
func (r *RatingsRepository) Submit(ctx context.Context, params RatingSubmitParams) (domain.RatingReceipt, error) {
	var receipt domain.RatingReceipt

	err := r.tx.Serializable(ctx, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM ratings WHERE submission_id = $1 AND rater_id = $2)`,
			params.SubmissionID, params.RaterID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check existing rating: %w", err)
		}
		if exists {
			return ErrAlreadyRated
		}

		var totalStars, ratingCount int64
		err = tx.QueryRow(ctx,
			`SELECT total_stars, rating_count FROM submissions WHERE id = $1 FOR UPDATE`,
			params.SubmissionID).Scan(&totalStars, &ratingCount)
		if err != nil {
			if err == pgx.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("read submission aggregates: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO ratings (submission_id, rater_id, stars) VALUES ($1,$2,$3)`,
			params.SubmissionID, params.RaterID, params.Stars); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyRated
			}
			return fmt.Errorf("insert rating: %w", err)
		}

		totalStars += int64(params.Stars)
		ratingCount++
		totalPoints := totalStars * domain.PointsPerStar

		if _, err := tx.Exec(ctx,
			`UPDATE submissions SET total_stars = $2, total_points = $3, rating_count = $4 WHERE id = $1`,
			params.SubmissionID, totalStars, totalPoints, ratingCount); err != nil {
			return fmt.Errorf("update submission aggregates: %w", err)
		}

		receipt = domain.RatingReceipt{
			SubmissionID: params.SubmissionID,
			TotalStars:   totalStars,
			TotalPoints:  totalPoints,
			RatingCount:  ratingCount,
		}
		return nil
	})
	if err != nil {
		return domain.RatingReceipt{}, err
	}
	return receipt, nil
}

// Get retrieves a rating for a specific submission/rater combination.
func (r *RatingsRepository) Get(ctx context.Context, submissionID, raterID string) (domain.Rating, error) {
	const query = `
        SELECT submission_id, rater_id, stars, created_at
        FROM ratings
        WHERE submission_id = $1 AND rater_id = $2
    `
	var rating domain.Rating
	err := r.pool.QueryRow(ctx, query, submissionID, raterID).Scan(
		&rating.SubmissionID,
		&rating.RaterID,
		&rating.Stars,
		&rating.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// Exists reports whether a rater already rated a submission. Display-state
// only; the transaction in Submit is what enforces uniqueness.
func (r *RatingsRepository) Exists(ctx context.Context, submissionID, raterID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ratings WHERE submission_id = $1 AND rater_id = $2)`,
		submissionID, raterID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// RatedSet returns which of the given submissions the rater has rated.
func (r *RatingsRepository) RatedSet(ctx context.Context, submissionIDs []string, raterID string) (map[string]bool, error) {
	rated := make(map[string]bool, len(submissionIDs))
	if len(submissionIDs) == 0 {
		return rated, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT submission_id FROM ratings WHERE rater_id = $1 AND submission_id = ANY($2)`,
		raterID, submissionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		rated[id] = true
	}
	return rated, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
