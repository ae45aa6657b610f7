package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/NorousS/anime-reviews/internal/domain"
)

// Constraint names from db/migrations.
const (
	constraintAnimeTitle      = "anime_title_key"
	constraintReviewRating    = "reviews_rating_check"
	constraintReviewStatus    = "reviews_status_check"
	constraintPlanningUnrated = "reviews_planning_unrated_check"
)

// translate maps driver errors onto the repository and domain sentinels so no
// raw storage error escapes this package for a known condition.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if pgErr.ConstraintName == constraintAnimeTitle {
			return ErrDuplicateTitle
		}
	case pgerrcode.ForeignKeyViolation:
		return ErrReferentialViolation
	case pgerrcode.CheckViolation:
		switch pgErr.ConstraintName {
		case constraintReviewRating:
			return &domain.Rejection{Field: "rating", Reason: domain.ErrInvalidRating}
		case constraintReviewStatus:
			return &domain.Rejection{Field: "status", Reason: domain.ErrInvalidStatus}
		case constraintPlanningUnrated:
			return &domain.Rejection{Field: "rating", Reason: domain.ErrPlanningMustBeUnrated}
		}
	}
	return err
}
