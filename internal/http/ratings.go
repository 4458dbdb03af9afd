package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kicklab/challenge-api/internal/rating"
	"github.com/kicklab/challenge-api/internal/repository"
)

type ratingSubmitRequest struct {
	Stars int `json:"stars"`
}

type ratingReceiptResponse struct {
	SubmissionID string `json:"submissionId"`
	TotalStars   int64  `json:"totalStars"`
	TotalPoints  int64  `json:"totalPoints"`
	RatingCount  int64  `json:"ratingCount"`
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	claims, err := s.verifier.FromRequest(r)
	if err != nil {
		s.respondUnauthorized(w)
		return
	}

	var req ratingSubmitRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	submissionID := chi.URLParam(r, "submissionID")
	sub, err := s.repo.Submissions.GetByID(r.Context(), submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Errorw("fetch submission for rating failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit rating")
		return
	}
	if sub.OwnerID == claims.UserID {
		s.respondError(w, http.StatusUnprocessableEntity, "SELF_RATING", "You cannot rate your own submission")
		return
	}

	receipt, err := s.ledger.SubmitRating(r.Context(), submissionID, claims.UserID, req.Stars)
	if err != nil {
		switch {
		case errors.Is(err, rating.ErrInvalidStars):
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "stars must be between 1 and 5")
		case errors.Is(err, rating.ErrUnauthenticated):
			s.respondUnauthorized(w)
		case errors.Is(err, rating.ErrAlreadyRated):
			s.respondError(w, http.StatusConflict, "ALREADY_RATED", "You have already rated this submission")
		case errors.Is(err, repository.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		case errors.Is(err, rating.ErrStoreUnavailable):
			s.respondError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Please retry shortly")
		default:
			s.logger.Errorw("submit rating failed", "submission", submissionID, "error", err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit rating")
		}
		return
	}

	if s.board != nil {
		if err := s.board.Invalidate(r.Context(), sub.ChallengeID); err != nil {
			s.logger.Warnw("invalidate leaderboard cache failed", "challenge", sub.ChallengeID, "error", err)
		}
	}

	s.respondJSON(w, http.StatusCreated, ratingReceiptResponse{
		SubmissionID: receipt.SubmissionID,
		TotalStars:   receipt.TotalStars,
		TotalPoints:  receipt.TotalPoints,
		RatingCount:  receipt.RatingCount,
	})
}

func (s *Server) handleMyRatingState(w http.ResponseWriter, r *http.Request) {
	claims, err := s.verifier.FromRequest(r)
	if err != nil {
		s.respondUnauthorized(w)
		return
	}

	submissionID := chi.URLParam(r, "submissionID")
	if _, err := s.repo.Submissions.GetByID(r.Context(), submissionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Errorw("fetch submission for rating state failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch rating state")
		return
	}

	rated, err := s.ledger.HasRated(r.Context(), submissionID, claims.UserID)
	if err != nil {
		s.logger.Errorw("rating state lookup failed", "submission", submissionID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch rating state")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"rated": rated})
}
