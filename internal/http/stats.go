package httpserver

import (
	"net/http"
)

type rankedResponse struct {
	Title         string  `json:"title"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// handleStats serves the ranking of titles by mean watched rating.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ranking, err := s.catalog.Ranking(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	items := make([]rankedResponse, 0, len(ranking))
	for _, entry := range ranking {
		items = append(items, rankedResponse{
			Title:         entry.Title,
			AverageRating: entry.AverageRating,
			ReviewCount:   entry.ReviewCount,
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}
