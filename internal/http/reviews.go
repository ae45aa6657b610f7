package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/NorousS/anime-reviews/internal/domain"
)

type reviewCreateRequest struct {
	AnimeID    *int64   `json:"anime_id"`
	UserName   string   `json:"user_name"`
	Rating     *float64 `json:"rating"`
	ReviewText *string  `json:"review_text"`
	Status     string   `json:"status"`
}

type reviewUpdateRequest struct {
	Rating     *float64 `json:"rating"`
	ReviewText *string  `json:"review_text"`
	Status     *string  `json:"status"`
}

type reviewResponse struct {
	ID         int64     `json:"id"`
	AnimeID    int64     `json:"anime_id"`
	UserName   string    `json:"user_name"`
	Rating     float64   `json:"rating"`
	ReviewText *string   `json:"review_text"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.AnimeID == nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Code: "VALIDATION_ERROR", Message: "anime_id is required", Field: "anime_id"})
		return
	}
	if req.Rating == nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Code: "VALIDATION_ERROR", Message: "rating is required", Field: "rating"})
		return
	}

	review, err := s.catalog.CreateReview(r.Context(), domain.NewReview{
		AnimeID:    *req.AnimeID,
		UserName:   req.UserName,
		Rating:     *req.Rating,
		ReviewText: req.ReviewText,
		Status:     domain.Status(req.Status),
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/reviews/%d", review.ID))
	s.respondJSON(w, http.StatusCreated, toReviewResponse(review))
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	review, err := s.catalog.GetReview(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toReviewResponse(review))
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}

	var req reviewUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	patch := domain.ReviewPatch{
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		patch.Status = &status
	}

	review, err := s.catalog.UpdateReview(r.Context(), id, patch)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toReviewResponse(review))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteReview(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, okResponse{OK: true})
}

func toReviewResponse(review domain.Review) reviewResponse {
	return reviewResponse{
		ID:         review.ID,
		AnimeID:    review.AnimeID,
		UserName:   review.UserName,
		Rating:     review.Rating,
		ReviewText: review.ReviewText,
		Status:     string(review.Status),
		CreatedAt:  review.CreatedAt,
	}
}
