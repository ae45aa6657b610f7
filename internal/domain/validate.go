package domain

import (
	"errors"
	"math"
	"strings"
)

const (
	MinRating = 0.0
	MaxRating = 10.0
)

var (
	ErrInvalidRating         = errors.New("rating must be between 0 and 10")
	ErrInvalidStatus         = errors.New("status must be watched or planning")
	ErrPlanningMustBeUnrated = errors.New("cannot rate anime with planning status")
	ErrTitleRequired         = errors.New("title is required")
	ErrUserNameRequired      = errors.New("user_name is required")
)

// Rejection names the field and rule a candidate payload broke. Reason is one
// of the Err* sentinels above, so callers can match with errors.Is.
type Rejection struct {
	Field  string
	Reason error
}

func (r *Rejection) Error() string {
	return r.Field + ": " + r.Reason.Error()
}

func (r *Rejection) Unwrap() error {
	return r.Reason
}

func reject(field string, reason error) *Rejection {
	return &Rejection{Field: field, Reason: reason}
}

// ValidRating reports whether value sits in the closed rating interval.
func ValidRating(value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	return value >= MinRating && value <= MaxRating
}

// ValidateRating checks a rating/status pair. The range is checked first so an
// out-of-range rating is reported as such whatever the status.
func ValidateRating(rating float64, status Status) error {
	if !ValidRating(rating) {
		return reject("rating", ErrInvalidRating)
	}
	if !status.Valid() {
		return reject("status", ErrInvalidStatus)
	}
	if status == StatusPlanning && rating > 0 {
		return reject("rating", ErrPlanningMustBeUnrated)
	}
	return nil
}

// ValidateNewReview gates a review creation payload.
func ValidateNewReview(r NewReview) error {
	if strings.TrimSpace(r.UserName) == "" {
		return reject("user_name", ErrUserNameRequired)
	}
	return ValidateRating(r.Rating, r.Status)
}

// ValidatePatchFields checks the fields present in a patch on their own,
// without looking at the stored review.
func ValidatePatchFields(p ReviewPatch) error {
	if p.Rating != nil && !ValidRating(*p.Rating) {
		return reject("rating", ErrInvalidRating)
	}
	if p.Status != nil && !p.Status.Valid() {
		return reject("status", ErrInvalidStatus)
	}
	return nil
}

// ValidatePatch re-evaluates the rating rules against the merged view of
// existing and p: missing patch fields fall back to the stored values.
func ValidatePatch(p ReviewPatch, existing Review) error {
	if err := ValidatePatchFields(p); err != nil {
		return err
	}
	merged := p.Apply(existing)
	return ValidateRating(merged.Rating, merged.Status)
}

// ValidateAnimeTitle rejects blank titles.
func ValidateAnimeTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return reject("title", ErrTitleRequired)
	}
	return nil
}
