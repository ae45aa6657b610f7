package domain

// Aggregate holds the derived per-title statistics. AverageRating is nil when
// the title has no watched reviews; it never defaults to zero.
type Aggregate struct {
	AverageRating    *float64
	TotalReviews     int
	LatestReviewText *string
	LatestReviewUser *string
}

// Summary is an Anime together with its Aggregate.
type Summary struct {
	Anime
	Aggregate
}

// ComputeAggregate derives the Aggregate of anime from its reviews. Reviews
// belonging to other titles are ignored. The latest review is the one with the
// greatest CreatedAt, ties broken by the greater ID.
func ComputeAggregate(anime Anime, reviews []Review) Summary {
	var (
		agg     Aggregate
		sum     float64
		watched int
		latest  *Review
	)

	for i := range reviews {
		r := &reviews[i]
		if r.AnimeID != anime.ID {
			continue
		}
		agg.TotalReviews++
		if r.Status == StatusWatched {
			sum += r.Rating
			watched++
		}
		if latest == nil || newerThan(r, latest) {
			latest = r
		}
	}

	if watched > 0 {
		avg := sum / float64(watched)
		agg.AverageRating = &avg
	}
	if latest != nil {
		user := latest.UserName
		agg.LatestReviewUser = &user
		if latest.ReviewText != nil {
			text := *latest.ReviewText
			agg.LatestReviewText = &text
		}
	}

	return Summary{Anime: anime, Aggregate: agg}
}

func newerThan(a, b *Review) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
