package domain

import "time"

// Status tags whether the reviewer has watched the title yet.
type Status string

const (
	StatusWatched  Status = "watched"
	StatusPlanning Status = "planning"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusWatched || s == StatusPlanning
}

// Review is a single user's rating and commentary for an Anime.
type Review struct {
	ID         int64
	AnimeID    int64
	UserName   string
	Rating     float64
	ReviewText *string
	Status     Status
	CreatedAt  time.Time
}

// NewReview is the candidate payload for creating a review.
type NewReview struct {
	AnimeID    int64
	UserName   string
	Rating     float64
	ReviewText *string
	Status     Status
}

// ReviewPatch carries the independently optional fields of a partial update.
type ReviewPatch struct {
	Rating     *float64
	ReviewText *string
	Status     *Status
}

// Empty reports whether the patch changes nothing.
func (p ReviewPatch) Empty() bool {
	return p.Rating == nil && p.ReviewText == nil && p.Status == nil
}

// Apply returns existing with the patch fields layered on top.
func (p ReviewPatch) Apply(existing Review) Review {
	merged := existing
	if p.Rating != nil {
		merged.Rating = *p.Rating
	}
	if p.ReviewText != nil {
		text := *p.ReviewText
		merged.ReviewText = &text
	}
	if p.Status != nil {
		merged.Status = *p.Status
	}
	return merged
}
