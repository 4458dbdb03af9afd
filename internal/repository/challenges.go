package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kicklab/challenge-api/internal/domain"
)

// ChallengesRepository provides persistence helpers for challenge entities.
type ChallengesRepository struct {
	pool *pgxpool.Pool
}

const challengeColumns = `
    id,
    title,
    description,
    criteria,
    cover_url,
    starts_at,
    ends_at,
    created_at
`

// ChallengeCreateParams bundles the fields required to create a challenge.
type ChallengeCreateParams struct {
	Title       string
	Description string
	Criteria    []string
	CoverURL    *string
	StartsAt    time.Time
	EndsAt      time.Time
}

// ChallengeListFilters encapsulates search and pagination options.
type ChallengeListFilters struct {
	Query  *string
	Active *bool
	Limit  int
	Cursor *ChallengeCursor
}

// ChallengeCursor allows stable pagination by created_at/id.
type ChallengeCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// ChallengeListResult returns the paginated payload.
type ChallengeListResult struct {
	Items      []domain.Challenge
	NextCursor *string
}

// Create inserts a new challenge row and returns the stored entity.
func (r *ChallengesRepository) Create(ctx context.Context, params ChallengeCreateParams) (domain.Challenge, error) {
	query := fmt.Sprintf(`
        INSERT INTO challenges (title, description, criteria, cover_url, starts_at, ends_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING %s
    `, challengeColumns)

	row := r.pool.QueryRow(ctx, query,
		params.Title, params.Description, params.Criteria, params.CoverURL,
		params.StartsAt, params.EndsAt)
	return scanChallenge(row)
}

// GetByID fetches a challenge by its identifier.
func (r *ChallengesRepository) GetByID(ctx context.Context, id string) (domain.Challenge, error) {
	query := fmt.Sprintf(`SELECT %s FROM challenges WHERE id = $1`, challengeColumns)
	row := r.pool.QueryRow(ctx, query, id)
	challenge, err := scanChallenge(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Challenge{}, ErrNotFound
		}
		return domain.Challenge{}, err
	}
	return challenge, nil
}

// List returns challenges that match the provided filters.
func (r *ChallengesRepository) List(ctx context.Context, filters ChallengeListFilters) (ChallengeListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	} else if filters.Limit > 100 {
		filters.Limit = 100
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Query != nil && strings.TrimSpace(*filters.Query) != "" {
		q := "%" + strings.TrimSpace(*filters.Query) + "%"
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", arg(q), arg(q)))
	}
	if filters.Active != nil {
		if *filters.Active {
			where = append(where, "ends_at >= now()")
		} else {
			where = append(where, "ends_at < now()")
		}
	}
	if filters.Cursor != nil {
		cursorCreated := arg(filters.Cursor.CreatedAt)
		cursorID := arg(filters.Cursor.ID)
		where = append(where, fmt.Sprintf("(created_at, id) < (%s, %s)", cursorCreated, cursorID))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(challengeColumns)
	queryBuilder.WriteString(" FROM challenges")

	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d", filters.Limit))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return ChallengeListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.Challenge, 0)
	for rows.Next() {
		challenge, err := scanChallenge(rows)
		if err != nil {
			return ChallengeListResult{}, err
		}
		items = append(items, challenge)
	}
	if err := rows.Err(); err != nil {
		return ChallengeListResult{}, err
	}

	var nextCursor *string
	if len(items) == filters.Limit {
		last := items[len(items)-1]
		token, err := encodeCursor(ChallengeCursor{CreatedAt: last.CreatedAt, ID: last.ID})
		if err != nil {
			return ChallengeListResult{}, err
		}
		nextCursor = &token
	}

	return ChallengeListResult{Items: items, NextCursor: nextCursor}, nil
}

// ListActiveIDs returns the identifiers of challenges still accepting votes.
func (r *ChallengesRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM challenges WHERE ends_at >= now()`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanChallenge(row pgx.Row) (domain.Challenge, error) {
	var challenge domain.Challenge
	err := row.Scan(
		&challenge.ID,
		&challenge.Title,
		&challenge.Description,
		&challenge.Criteria,
		&challenge.CoverURL,
		&challenge.StartsAt,
		&challenge.EndsAt,
		&challenge.CreatedAt,
	)
	if err != nil {
		return domain.Challenge{}, err
	}
	return challenge, nil
}

func encodeCursor(c ChallengeCursor) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeCursor parses a cursor token into a ChallengeCursor.
func DecodeCursor(token string) (*ChallengeCursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	var cursor ChallengeCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("invalid cursor payload: %w", err)
	}
	return &cursor, nil
}
