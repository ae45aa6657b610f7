package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func BenchmarkHandleCreateReview(b *testing.B) {
	srv := buildTestServer(b)
	anime := createAnime(b, srv, "Benchmark Anime")
	payload := `{"anime_id":` + itoa(anime.ID) + `,"user_name":"bench","rating":7.5,"status":"watched"}`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkHandleStats(b *testing.B) {
	srv := buildTestServer(b)
	for _, title := range []string{"A", "B", "C"} {
		anime := createAnime(b, srv, title)
		createReview(b, srv, `{"anime_id":`+itoa(anime.ID)+`,"user_name":"bench","rating":5,"status":"watched"}`)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
