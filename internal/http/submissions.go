package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kicklab/challenge-api/internal/auth"
	"github.com/kicklab/challenge-api/internal/domain"
	"github.com/kicklab/challenge-api/internal/mediastore"
	"github.com/kicklab/challenge-api/internal/ranking"
	"github.com/kicklab/challenge-api/internal/repository"
)

type submissionCreateRequest struct {
	DurationSecs float64 `json:"durationSecs"`
	ContentType  string  `json:"contentType"`
}

type submissionCreateResponse struct {
	Submission submissionResponse `json:"submission"`
	UploadURL  string             `json:"uploadUrl"`
	ExpiresAt  time.Time          `json:"expiresAt"`
}

type submissionResponse struct {
	ID           string  `json:"id"`
	ChallengeID  string  `json:"challengeId"`
	OwnerID      string  `json:"ownerId"`
	OwnerName    string  `json:"ownerName,omitempty"`
	VideoURL     string  `json:"videoUrl"`
	DurationSecs float64 `json:"durationSecs"`
	TotalStars   int64   `json:"totalStars"`
	TotalPoints  int64   `json:"totalPoints"`
	RatingCount  int64   `json:"ratingCount"`
	CreatedAt    string  `json:"createdAt"`
	Rated        *bool   `json:"rated,omitempty"`
}

type submissionListResponse struct {
	Items []submissionResponse `json:"items"`
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	claims, err := s.verifier.FromRequest(r)
	if err != nil {
		s.respondUnauthorized(w)
		return
	}

	challengeID := chi.URLParam(r, "challengeID")
	challenge, err := s.repo.Challenges.GetByID(r.Context(), challengeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Errorw("fetch challenge for submission failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create submission")
		return
	}
	if challenge.Ended(time.Now().UTC()) {
		s.respondError(w, http.StatusUnprocessableEntity, "CHALLENGE_ENDED", "The challenge is no longer accepting submissions")
		return
	}

	var req submissionCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.DurationSecs <= 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "durationSecs must be positive")
		return
	}
	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = "video/mp4"
	}

	if _, err := s.repo.Users.Upsert(r.Context(), claims.UserID, displayNameOr(claims)); err != nil {
		s.logger.Errorw("upsert user failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create submission")
		return
	}

	storagePath := fmt.Sprintf("videos/%s/%s.mp4", challenge.ID, uuid.NewString())
	ticket, err := s.media.IssueUploadURL(r.Context(), storagePath, contentType)
	if err != nil {
		s.logger.Errorw("issue upload url failed", "path", storagePath, "error", err)
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Media store unavailable")
		return
	}

	sub, err := s.repo.Submissions.Create(r.Context(), repository.SubmissionCreateParams{
		ChallengeID:  challenge.ID,
		OwnerID:      claims.UserID,
		VideoURL:     ticket.PublicURL,
		StoragePath:  storagePath,
		DurationSecs: req.DurationSecs,
	})
	if err != nil {
		s.logger.Errorw("create submission failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create submission")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/submissions/%s", url.PathEscape(sub.ID)))
	s.respondJSON(w, http.StatusCreated, submissionCreateResponse{
		Submission: toSubmissionResponse(sub, "", nil),
		UploadURL:  ticket.UploadURL,
		ExpiresAt:  ticket.ExpiresAt,
	})
}

func (s *Server) handleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	claims, err := s.verifier.FromRequest(r)
	if err != nil {
		s.respondUnauthorized(w)
		return
	}

	submissionID := chi.URLParam(r, "submissionID")
	sub, err := s.repo.Submissions.GetByID(r.Context(), submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Errorw("fetch submission for delete failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete submission")
		return
	}
	if sub.OwnerID != claims.UserID {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Only the owner may delete a submission")
		return
	}

	deleted, err := s.repo.Submissions.Delete(r.Context(), submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Errorw("delete submission failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete submission")
		return
	}

	// Blob release is best effort; the row is already gone.
	if err := s.media.Delete(r.Context(), deleted.StoragePath); err != nil && !errors.Is(err, mediastore.ErrNotFound) {
		s.logger.Warnw("release stored video failed", "path", deleted.StoragePath, "error", err)
	}
	if s.board != nil {
		if err := s.board.Invalidate(r.Context(), deleted.ChallengeID); err != nil {
			s.logger.Warnw("invalidate leaderboard cache failed", "challenge", deleted.ChallengeID, "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	challengeID := chi.URLParam(r, "challengeID")
	if _, err := s.repo.Challenges.GetByID(r.Context(), challengeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Errorw("fetch challenge for listing failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list submissions")
		return
	}

	all, err := s.repo.Submissions.ListByChallenge(r.Context(), challengeID)
	if err != nil {
		s.logger.Errorw("list submissions failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list submissions")
		return
	}

	top := ranking.RankTop(all, s.cfg.LeaderboardSize)
	ordered := ranking.PinnedOrder(top, all)

	// The rated flag is only present for authenticated callers.
	var rated map[string]bool
	if claims, err := s.verifier.FromRequest(r); err == nil {
		ids := make([]string, 0, len(ordered))
		for _, sub := range ordered {
			ids = append(ids, sub.ID)
		}
		rated, err = s.repo.Ratings.RatedSet(r.Context(), ids, claims.UserID)
		if err != nil {
			s.logger.Warnw("rated-set lookup failed", "error", err)
			rated = nil
		}
	}

	items := make([]submissionResponse, 0, len(ordered))
	for _, sub := range ordered {
		var ratedFlag *bool
		if rated != nil {
			val := rated[sub.ID]
			ratedFlag = &val
		}
		items = append(items, toSubmissionResponse(sub, s.ownerName(r.Context(), sub.OwnerID), ratedFlag))
	}
	s.respondJSON(w, http.StatusOK, submissionListResponse{Items: items})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	challengeID := chi.URLParam(r, "challengeID")
	if _, err := s.repo.Challenges.GetByID(r.Context(), challengeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Errorw("fetch challenge for leaderboard failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch leaderboard")
		return
	}

	top, err := s.topSubmissions(r.Context(), challengeID)
	if err != nil {
		s.logger.Errorw("compute leaderboard failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch leaderboard")
		return
	}

	items := make([]submissionResponse, 0, len(top))
	for _, sub := range top {
		items = append(items, toSubmissionResponse(sub, s.ownerName(r.Context(), sub.OwnerID), nil))
	}
	s.respondJSON(w, http.StatusOK, submissionListResponse{Items: items})
}

// topSubmissions consults the leaderboard cache first and recomputes from a
// fresh snapshot on a miss.
func (s *Server) topSubmissions(ctx context.Context, challengeID string) ([]domain.Submission, error) {
	if s.board != nil {
		if top, ok, err := s.board.Get(ctx, challengeID); err == nil && ok {
			return top, nil
		}
	}

	all, err := s.repo.Submissions.ListByChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	top := ranking.RankTop(all, s.cfg.LeaderboardSize)
	if s.board != nil {
		if err := s.board.Put(ctx, challengeID, top); err != nil {
			s.logger.Warnw("leaderboard cache put failed", "challenge", challengeID, "error", err)
		}
	}
	return top, nil
}

func (s *Server) ownerName(ctx context.Context, ownerID string) string {
	if s.users == nil {
		return ""
	}
	name, err := s.users.DisplayName(ctx, ownerID)
	if err != nil {
		return ""
	}
	return name
}

func toSubmissionResponse(sub domain.Submission, ownerName string, rated *bool) submissionResponse {
	return submissionResponse{
		ID:           sub.ID,
		ChallengeID:  sub.ChallengeID,
		OwnerID:      sub.OwnerID,
		OwnerName:    ownerName,
		VideoURL:     sub.VideoURL,
		DurationSecs: sub.DurationSecs,
		TotalStars:   sub.TotalStars,
		TotalPoints:  sub.TotalPoints,
		RatingCount:  sub.RatingCount,
		CreatedAt:    sub.CreatedAt.UTC().Format(time.RFC3339),
		Rated:        rated,
	}
}

func displayNameOr(claims auth.Claims) string {
	if strings.TrimSpace(claims.DisplayName) != "" {
		return claims.DisplayName
	}
	return claims.UserID
}
