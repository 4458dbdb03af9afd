package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kicklab/challenge-api/internal/domain"
	"github.com/kicklab/challenge-api/internal/repository"
)

type challengeCreateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Criteria    []string `json:"criteria"`
	CoverURL    *string  `json:"coverUrl"`
	StartsAt    string   `json:"startsAt"`
	EndsAt      string   `json:"endsAt"`
}

type challengeResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Criteria    []string `json:"criteria"`
	CoverURL    *string  `json:"coverUrl,omitempty"`
	StartsAt    string   `json:"startsAt"`
	EndsAt      string   `json:"endsAt"`
	Ended       bool     `json:"ended"`
}

type challengeListResponse struct {
	Items      []challengeResponse `json:"items"`
	NextCursor *string             `json:"nextCursor,omitempty"`
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	filters, err := buildChallengeFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.repo.Challenges.List(r.Context(), filters)
	if err != nil {
		s.logger.Errorw("list challenges failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list challenges")
		return
	}

	now := time.Now().UTC()
	items := make([]challengeResponse, 0, len(result.Items))
	for _, challenge := range result.Items {
		items = append(items, toChallengeResponse(challenge, now))
	}

	resp := challengeListResponse{Items: items}
	if result.NextCursor != nil {
		resp.NextCursor = result.NextCursor
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func buildChallengeFilters(query url.Values) (repository.ChallengeListFilters, error) {
	var filters repository.ChallengeListFilters

	if q := strings.TrimSpace(query.Get("q")); q != "" {
		filters.Query = &q
	}
	if val := strings.TrimSpace(query.Get("active")); val != "" {
		active, err := strconv.ParseBool(val)
		if err != nil {
			return filters, fmt.Errorf("invalid active value")
		}
		filters.Active = &active
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil {
			return filters, fmt.Errorf("invalid limit value")
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("cursor")); val != "" {
		cursor, err := repository.DecodeCursor(val)
		if err != nil {
			return filters, fmt.Errorf("invalid cursor")
		}
		filters.Cursor = cursor
	}
	return filters, nil
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	if !s.verifyAdminBearer(r.Header.Get("Authorization")) {
		s.respondUnauthorized(w)
		return
	}

	var req challengeCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required")
		return
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "startsAt must be RFC3339")
		return
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "endsAt must be RFC3339")
		return
	}
	if !endsAt.After(startsAt) {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "endsAt must be after startsAt")
		return
	}

	criteria := make([]string, 0, len(req.Criteria))
	for _, c := range req.Criteria {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			criteria = append(criteria, trimmed)
		}
	}

	challenge, err := s.repo.Challenges.Create(r.Context(), repository.ChallengeCreateParams{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Criteria:    criteria,
		CoverURL:    req.CoverURL,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
	})
	if err != nil {
		s.logger.Errorw("create challenge failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create challenge")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/challenges/%s", url.PathEscape(challenge.ID)))
	s.respondJSON(w, http.StatusCreated, toChallengeResponse(challenge, time.Now().UTC()))
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID := chi.URLParam(r, "challengeID")
	challenge, err := s.repo.Challenges.GetByID(r.Context(), challengeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Errorw("get challenge failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch challenge")
		return
	}
	s.respondJSON(w, http.StatusOK, toChallengeResponse(challenge, time.Now().UTC()))
}

func toChallengeResponse(challenge domain.Challenge, now time.Time) challengeResponse {
	return challengeResponse{
		ID:          challenge.ID,
		Title:       challenge.Title,
		Description: challenge.Description,
		Criteria:    challenge.Criteria,
		CoverURL:    challenge.CoverURL,
		StartsAt:    challenge.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:      challenge.EndsAt.UTC().Format(time.RFC3339),
		Ended:       challenge.Ended(now),
	}
}
