package domain

import (
	"strings"
	"time"
)

// Anime is a catalog title that owns its reviews.
type Anime struct {
	ID          int64
	Title       string
	Description *string
	CreatedAt   time.Time
}

// NormalizeTitle folds a title into the key used to group leaderboard rows.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
