package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/NorousS/anime-reviews/internal/catalog"
	"github.com/NorousS/anime-reviews/internal/domain"
)

type animeCreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type animeResponse struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description"`
	AverageRating    *float64  `json:"average_rating"`
	TotalReviews     int       `json:"total_reviews"`
	LatestReviewText *string   `json:"latest_review_text"`
	LatestReviewUser *string   `json:"latest_review_user"`
	CreatedAt        time.Time `json:"created_at"`
}

type animeDetailResponse struct {
	Anime   animeResponse    `json:"anime"`
	Reviews []reviewResponse `json:"reviews"`
}

func (s *Server) handleListAnime(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.catalog.ListAnime(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	items := make([]animeResponse, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, toAnimeResponse(summary))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateAnime(w http.ResponseWriter, r *http.Request) {
	var req animeCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	summary, err := s.catalog.CreateAnime(r.Context(), catalog.NewAnime{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/anime/%d", summary.ID))
	s.respondJSON(w, http.StatusCreated, toAnimeResponse(summary))
}

func (s *Server) handleGetAnime(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}

	detail, err := s.catalog.GetAnime(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	reviews := make([]reviewResponse, 0, len(detail.Reviews))
	for _, review := range detail.Reviews {
		reviews = append(reviews, toReviewResponse(review))
	}
	s.respondJSON(w, http.StatusOK, animeDetailResponse{
		Anime:   toAnimeResponse(detail.Summary),
		Reviews: reviews,
	})
}

func (s *Server) handleDeleteAnime(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteAnime(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, okResponse{OK: true})
}

func toAnimeResponse(summary domain.Summary) animeResponse {
	return animeResponse{
		ID:               summary.ID,
		Title:            summary.Title,
		Description:      summary.Description,
		AverageRating:    summary.AverageRating,
		TotalReviews:     summary.TotalReviews,
		LatestReviewText: summary.LatestReviewText,
		LatestReviewUser: summary.LatestReviewUser,
		CreatedAt:        summary.CreatedAt,
	}
}
