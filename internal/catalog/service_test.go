package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NorousS/anime-reviews/internal/domain"
	"github.com/NorousS/anime-reviews/internal/pgtest"
	"github.com/NorousS/anime-reviews/internal/repository"
	"github.com/NorousS/anime-reviews/internal/synopsis"
)

type fakeSynopsis struct {
	mu      sync.Mutex
	entries map[string]string
	err     error
	calls   int
}

func (f *fakeSynopsis) Fetch(_ context.Context, title string) (*synopsis.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	text, ok := f.entries[title]
	if !ok {
		return nil, synopsis.ErrNotFound
	}
	return &synopsis.Result{Description: text, Source: "fake"}, nil
}

func newTestService(t *testing.T, syn synopsis.Client) (*Service, context.Context) {
	t.Helper()
	db := pgtest.Start(t, "anime_catalog_test")
	svc := New(repository.NewWithPool(db.Pool), Options{
		Synopsis: syn,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return svc, context.Background()
}

func mustAnime(t *testing.T, svc *Service, ctx context.Context, title string) domain.Summary {
	t.Helper()
	s, err := svc.CreateAnime(ctx, NewAnime{Title: title})
	require.NoError(t, err)
	return s
}

func mustReview(t *testing.T, svc *Service, ctx context.Context, animeID int64, rating float64, status domain.Status) domain.Review {
	t.Helper()
	r, err := svc.CreateReview(ctx, domain.NewReview{AnimeID: animeID, UserName: "tester", Rating: rating, Status: status})
	require.NoError(t, err)
	return r
}

func TestService_AggregateWatchedOnly(t *testing.T) {
	svc, ctx := newTestService(t, nil)

	naruto := mustAnime(t, svc, ctx, "Naruto")
	mustReview(t, svc, ctx, naruto.ID, 8, domain.StatusWatched)
	mustReview(t, svc, ctx, naruto.ID, 10, domain.StatusWatched)
	mustReview(t, svc, ctx, naruto.ID, 0, domain.StatusPlanning)

	bleach := mustAnime(t, svc, ctx, "Bleach")
	mustReview(t, svc, ctx, bleach.ID, 0, domain.StatusPlanning)

	detail, err := svc.GetAnime(ctx, naruto.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Summary.AverageRating)
	assert.InDelta(t, 9.0, *detail.Summary.AverageRating, 1e-9)
	assert.Equal(t, 3, detail.Summary.TotalReviews)
	assert.Len(t, detail.Reviews, 3)
	assert.Equal(t, domain.StatusPlanning, detail.Reviews[0].Status, "reviews newest first")

	detail, err = svc.GetAnime(ctx, bleach.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Summary.AverageRating)
	assert.Equal(t, 1, detail.Summary.TotalReviews)

	list, err := svc.ListAnime(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bleach", list[0].Title, "newest title first")
	assert.Nil(t, list[0].AverageRating)
	require.NotNil(t, list[1].AverageRating)
	assert.InDelta(t, 9.0, *list[1].AverageRating, 1e-9)
}

func TestService_CreateAnime(t *testing.T) {
	svc, ctx := newTestService(t, nil)

	created, err := svc.CreateAnime(ctx, NewAnime{Title: "Naruto"})
	require.NoError(t, err)
	assert.Nil(t, created.AverageRating)
	assert.Zero(t, created.TotalReviews)
	assert.Nil(t, created.LatestReviewUser)

	_, err = svc.CreateAnime(ctx, NewAnime{Title: "Naruto"})
	assert.ErrorIs(t, err, repository.ErrDuplicateTitle)

	still, err := svc.GetAnime(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Naruto", still.Summary.Title)

	_, err = svc.CreateAnime(ctx, NewAnime{Title: "   "})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)
}

func TestService_CreateAnime_Synopsis(t *testing.T) {
	syn := &fakeSynopsis{entries: map[string]string{"One Piece": "Pirate adventure"}}
	svc, ctx := newTestService(t, syn)

	filled, err := svc.CreateAnime(ctx, NewAnime{Title: "One Piece"})
	require.NoError(t, err)
	require.NotNil(t, filled.Description)
	assert.Equal(t, "Pirate adventure", *filled.Description)

	given := "Mine"
	kept, err := svc.CreateAnime(ctx, NewAnime{Title: "Monster", Description: &given})
	require.NoError(t, err)
	assert.Equal(t, "Mine", *kept.Description)
	assert.Equal(t, 1, syn.calls, "provider not asked when a description is given")

	unknown, err := svc.CreateAnime(ctx, NewAnime{Title: "Obscure"})
	require.NoError(t, err)
	assert.Nil(t, unknown.Description)
}

func TestService_CreateAnime_SynopsisFailureIgnored(t *testing.T) {
	svc, ctx := newTestService(t, &fakeSynopsis{err: errors.New("upstream down")})

	created, err := svc.CreateAnime(ctx, NewAnime{Title: "Trigun"})
	require.NoError(t, err)
	assert.Nil(t, created.Description)
}

func TestService_CreateReview_Validation(t *testing.T) {
	svc, ctx := newTestService(t, nil)
	anime := mustAnime(t, svc, ctx, "Attack on Titan")

	tests := []struct {
		name string
		in   domain.NewReview
		want error
	}{
		{"planning rated", domain.NewReview{AnimeID: anime.ID, UserName: "Jane", Rating: 8, Status: domain.StatusPlanning}, domain.ErrPlanningMustBeUnrated},
		{"rating too high", domain.NewReview{AnimeID: anime.ID, UserName: "Jane", Rating: 10.5, Status: domain.StatusWatched}, domain.ErrInvalidRating},
		{"bad status", domain.NewReview{AnimeID: anime.ID, UserName: "Jane", Rating: 1, Status: "dropped"}, domain.ErrInvalidStatus},
		{"no user", domain.NewReview{AnimeID: anime.ID, UserName: "", Rating: 1, Status: domain.StatusWatched}, domain.ErrUserNameRequired},
		{"missing anime", domain.NewReview{AnimeID: anime.ID + 100, UserName: "Jane", Rating: 1, Status: domain.StatusWatched}, repository.ErrReferentialViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateReview(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	detail, err := svc.GetAnime(ctx, anime.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Reviews, "rejected reviews must not be stored")
}

func TestService_UpdateReview_MergedView(t *testing.T) {
	svc, ctx := newTestService(t, nil)
	anime := mustAnime(t, svc, ctx, "Cowboy Bebop")
	review := mustReview(t, svc, ctx, anime.ID, 9, domain.StatusWatched)

	planning := domain.StatusPlanning
	_, err := svc.UpdateReview(ctx, review.ID, domain.ReviewPatch{Status: &planning})
	require.ErrorIs(t, err, domain.ErrPlanningMustBeUnrated)

	unchanged, err := svc.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWatched, unchanged.Status)
	assert.Equal(t, 9.0, unchanged.Rating)

	zero := 0.0
	moved, err := svc.UpdateReview(ctx, review.ID, domain.ReviewPatch{Status: &planning, Rating: &zero})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlanning, moved.Status)
	assert.Equal(t, 0.0, moved.Rating)

	watched := domain.StatusWatched
	seven := 7.0
	back, err := svc.UpdateReview(ctx, review.ID, domain.ReviewPatch{Status: &watched, Rating: &seven})
	require.NoError(t, err)
	assert.Equal(t, 7.0, back.Rating)

	text := "holds up"
	withText, err := svc.UpdateReview(ctx, review.ID, domain.ReviewPatch{ReviewText: &text})
	require.NoError(t, err)
	require.NotNil(t, withText.ReviewText)
	assert.Equal(t, "holds up", *withText.ReviewText)
	assert.Equal(t, 7.0, withText.Rating)

	noop, err := svc.UpdateReview(ctx, review.ID, domain.ReviewPatch{})
	require.NoError(t, err)
	assert.Equal(t, withText, noop)

	tooHigh := 42.0
	_, err = svc.UpdateReview(ctx, review.ID, domain.ReviewPatch{Rating: &tooHigh})
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	_, err = svc.UpdateReview(ctx, review.ID+1000, domain.ReviewPatch{Rating: &seven})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_DeleteAnimeCascades(t *testing.T) {
	svc, ctx := newTestService(t, nil)
	anime := mustAnime(t, svc, ctx, "Bleach")
	r1 := mustReview(t, svc, ctx, anime.ID, 6, domain.StatusWatched)
	r2 := mustReview(t, svc, ctx, anime.ID, 0, domain.StatusPlanning)

	require.NoError(t, svc.DeleteAnime(ctx, anime.ID))

	for _, id := range []int64{r1.ID, r2.ID} {
		_, err := svc.GetReview(ctx, id)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	}
	_, err := svc.GetAnime(ctx, anime.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAnime(ctx, anime.ID), repository.ErrNotFound)
}

func TestService_DeleteReview(t *testing.T) {
	svc, ctx := newTestService(t, nil)
	anime := mustAnime(t, svc, ctx, "Mushishi")
	review := mustReview(t, svc, ctx, anime.ID, 10, domain.StatusWatched)

	require.NoError(t, svc.DeleteReview(ctx, review.ID))
	assert.ErrorIs(t, svc.DeleteReview(ctx, review.ID), repository.ErrNotFound)

	detail, err := svc.GetAnime(ctx, anime.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Summary.AverageRating)
}

func TestService_Ranking(t *testing.T) {
	svc, ctx := newTestService(t, nil)

	a := mustAnime(t, svc, ctx, "A")
	mustReview(t, svc, ctx, a.ID, 10, domain.StatusWatched)
	mustReview(t, svc, ctx, a.ID, 8, domain.StatusWatched)

	b := mustAnime(t, svc, ctx, "B")
	mustReview(t, svc, ctx, b.ID, 6, domain.StatusWatched)

	planningOnly := mustAnime(t, svc, ctx, "Planned")
	mustReview(t, svc, ctx, planningOnly.ID, 0, domain.StatusPlanning)

	ranking, err := svc.Ranking(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.RankedEntry{
		{Title: "A", AverageRating: 9, ReviewCount: 2},
		{Title: "B", AverageRating: 6, ReviewCount: 1},
	}, ranking)
}
