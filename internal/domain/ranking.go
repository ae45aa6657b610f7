package domain

import (
	"cmp"
	"slices"
)

// TitleReviews pairs a title with the reviews loaded for it.
type TitleReviews struct {
	Anime   Anime
	Reviews []Review
}

// RankedEntry is one leaderboard row.
type RankedEntry struct {
	Title         string
	AverageRating float64
	ReviewCount   int
}

type rankGroup struct {
	key       string
	displayID int64
	display   string
	sum       float64
	count     int
}

// ComputeRanking builds the leaderboard over watched reviews only.
//
// Titles are grouped by NormalizeTitle, so "Naruto" and " naruto " share one
// row. The row keeps the display title of the oldest title (lowest ID) in the
// group that has watched reviews. Rows are ordered by average descending, then
// by normalized key ascending.
func ComputeRanking(items []TitleReviews) []RankedEntry {
	groups := make(map[string]*rankGroup)

	for _, item := range items {
		for _, r := range item.Reviews {
			if r.AnimeID != item.Anime.ID || r.Status != StatusWatched {
				continue
			}
			key := NormalizeTitle(item.Anime.Title)
			g, ok := groups[key]
			if !ok {
				g = &rankGroup{key: key, displayID: item.Anime.ID, display: item.Anime.Title}
				groups[key] = g
			} else if item.Anime.ID < g.displayID {
				g.displayID = item.Anime.ID
				g.display = item.Anime.Title
			}
			g.sum += r.Rating
			g.count++
		}
	}

	ordered := make([]*rankGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	slices.SortFunc(ordered, func(a, b *rankGroup) int {
		if c := cmp.Compare(b.mean(), a.mean()); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})

	entries := make([]RankedEntry, 0, len(ordered))
	for _, g := range ordered {
		entries = append(entries, RankedEntry{
			Title:         g.display,
			AverageRating: g.mean(),
			ReviewCount:   g.count,
		})
	}
	return entries
}

func (g *rankGroup) mean() float64 {
	return g.sum / float64(g.count)
}
