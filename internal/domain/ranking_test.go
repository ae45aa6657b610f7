package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func watched(id, animeID int64, rating float64) Review {
	return Review{ID: id, AnimeID: animeID, UserName: "u", Rating: rating, Status: StatusWatched}
}

func TestComputeRanking_OrdersByAverage(t *testing.T) {
	items := []TitleReviews{
		{Anime: Anime{ID: 2, Title: "B"}, Reviews: []Review{watched(3, 2, 6)}},
		{Anime: Anime{ID: 1, Title: "A"}, Reviews: []Review{watched(1, 1, 10), watched(2, 1, 8)}},
	}

	got := ComputeRanking(items)

	require.Len(t, got, 2)
	assert.Equal(t, RankedEntry{Title: "A", AverageRating: 9, ReviewCount: 2}, got[0])
	assert.Equal(t, RankedEntry{Title: "B", AverageRating: 6, ReviewCount: 1}, got[1])
}

func TestComputeRanking_ExcludesPlanningOnly(t *testing.T) {
	items := []TitleReviews{
		{Anime: Anime{ID: 1, Title: "Bleach"}, Reviews: []Review{{ID: 1, AnimeID: 1, Status: StatusPlanning}}},
		{Anime: Anime{ID: 2, Title: "Empty"}},
		{Anime: Anime{ID: 3, Title: "Monster"}, Reviews: []Review{watched(2, 3, 9)}},
	}

	got := ComputeRanking(items)

	require.Len(t, got, 1)
	assert.Equal(t, "Monster", got[0].Title)
}

func TestComputeRanking_CountsOnlyWatched(t *testing.T) {
	items := []TitleReviews{{
		Anime: Anime{ID: 1, Title: "Naruto"},
		Reviews: []Review{
			watched(1, 1, 8),
			watched(2, 1, 10),
			{ID: 3, AnimeID: 1, Status: StatusPlanning},
		},
	}}

	got := ComputeRanking(items)

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ReviewCount)
	assert.InDelta(t, 9.0, got[0].AverageRating, 1e-9)
}

func TestComputeRanking_GroupsByNormalizedTitle(t *testing.T) {
	items := []TitleReviews{
		{Anime: Anime{ID: 5, Title: " naruto "}, Reviews: []Review{watched(2, 5, 4)}},
		{Anime: Anime{ID: 3, Title: "Naruto"}, Reviews: []Review{watched(1, 3, 10)}},
	}

	got := ComputeRanking(items)

	require.Len(t, got, 1)
	assert.Equal(t, "Naruto", got[0].Title, "display title comes from the oldest title")
	assert.Equal(t, 2, got[0].ReviewCount)
	assert.InDelta(t, 7.0, got[0].AverageRating, 1e-9)
}

func TestComputeRanking_TiesOrderedByTitle(t *testing.T) {
	items := []TitleReviews{
		{Anime: Anime{ID: 1, Title: "Zetman"}, Reviews: []Review{watched(1, 1, 7)}},
		{Anime: Anime{ID: 2, Title: "akira"}, Reviews: []Review{watched(2, 2, 7)}},
		{Anime: Anime{ID: 3, Title: "Monster"}, Reviews: []Review{watched(3, 3, 7)}},
	}

	got := ComputeRanking(items)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"akira", "Monster", "Zetman"}, []string{got[0].Title, got[1].Title, got[2].Title})
}

func TestComputeRanking_Empty(t *testing.T) {
	got := ComputeRanking(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "one piece", NormalizeTitle("  One Piece\t"))
}
