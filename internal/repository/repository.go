package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kicklab/challenge-api/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrAlreadyRated indicates a rater already holds a rating for a submission.
// The detecting transaction aborts without side effects.
var ErrAlreadyRated = errors.New("repository: already rated")

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Challenges  *ChallengesRepository
	Users       *UsersRepository
	Submissions *SubmissionsRepository
	Ratings     *RatingsRepository
}

// New constructs a Repository backed by the provided store. The rating
// repository runs its writes through the store's serializable TxRunner.
func New(st *store.Store, txRunner *store.TxRunner) *Repository {
	return NewWithPool(st.Pool(), txRunner)
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool, txRunner *store.TxRunner) *Repository {
	if txRunner == nil {
		txRunner = store.NewTxRunner(pool, 3, nil, nil)
	}
	return &Repository{
		Challenges:  &ChallengesRepository{pool: pool},
		Users:       &UsersRepository{pool: pool},
		Submissions: &SubmissionsRepository{pool: pool},
		Ratings:     &RatingsRepository{pool: pool, tx: txRunner},
	}
}
