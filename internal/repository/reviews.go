package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/NorousS/anime-reviews/internal/domain"
)

// ReviewsRepository provides helpers for anime reviews.
type ReviewsRepository struct {
	db DBTX
}

const reviewColumns = `id, anime_id, user_name, rating, review_text, status, created_at`

// ReviewCreateParams captures the payload required to insert a review.
type ReviewCreateParams struct {
	AnimeID    int64
	UserName   string
	Rating     float64
	ReviewText *string
	Status     domain.Status
}

// ReviewUpdateParams lists the columns a partial update may touch. Nil fields
// keep their stored value.
type ReviewUpdateParams struct {
	Rating     *float64
	ReviewText *string
	Status     *domain.Status
}

// ReviewListFilters narrows List.
type ReviewListFilters struct {
	Status *domain.Status
}

// Create inserts a review. A missing anime surfaces as ErrReferentialViolation.
func (r *ReviewsRepository) Create(ctx context.Context, params ReviewCreateParams) (domain.Review, error) {
	query := fmt.Sprintf(`
        INSERT INTO reviews (anime_id, user_name, rating, review_text, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING %s
    `, reviewColumns)

	row := r.db.QueryRow(ctx, query, params.AnimeID, params.UserName, params.Rating, params.ReviewText, string(params.Status))
	review, err := scanReview(row)
	if err != nil {
		return domain.Review{}, fmt.Errorf("create review: %w", translate(err))
	}
	return review, nil
}

// GetByID fetches a review by its identifier.
func (r *ReviewsRepository) GetByID(ctx context.Context, id int64) (domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)
	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Review{}, fmt.Errorf("get review %d: %w", id, translate(err))
	}
	return review, nil
}

// GetForUpdate fetches a review and locks its row until the surrounding
// transaction ends. Outside a transaction the lock is released immediately.
func (r *ReviewsRepository) GetForUpdate(ctx context.Context, id int64) (domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1 FOR UPDATE`, reviewColumns)
	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Review{}, fmt.Errorf("lock review %d: %w", id, translate(err))
	}
	return review, nil
}

// Update applies a partial update and returns the stored row.
func (r *ReviewsRepository) Update(ctx context.Context, id int64, params ReviewUpdateParams) (domain.Review, error) {
	query := fmt.Sprintf(`
        UPDATE reviews
        SET rating = COALESCE($2, rating),
            review_text = COALESCE($3, review_text),
            status = COALESCE($4, status)
        WHERE id = $1
        RETURNING %s
    `, reviewColumns)

	var status *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}

	review, err := scanReview(r.db.QueryRow(ctx, query, id, params.Rating, params.ReviewText, status))
	if err != nil {
		return domain.Review{}, fmt.Errorf("update review %d: %w", id, translate(err))
	}
	return review, nil
}

// Delete removes a single review.
func (r *ReviewsRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review %d: %w", id, translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete review %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListByAnime returns the reviews of one anime, newest first.
func (r *ReviewsRepository) ListByAnime(ctx context.Context, animeID int64) ([]domain.Review, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM reviews
        WHERE anime_id = $1
        ORDER BY created_at DESC, id DESC
    `, reviewColumns)
	return r.query(ctx, query, animeID)
}

// List returns reviews across all anime, grouped by anime and newest first
// within each anime.
func (r *ReviewsRepository) List(ctx context.Context, filters ReviewListFilters) ([]domain.Review, error) {
	var (
		where []string
		args  []any
	)
	if filters.Status != nil {
		args = append(args, string(*filters.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := strings.Builder{}
	query.WriteString("SELECT ")
	query.WriteString(reviewColumns)
	query.WriteString(" FROM reviews")
	if len(where) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(where, " AND "))
	}
	query.WriteString(" ORDER BY anime_id, created_at DESC, id DESC")

	return r.query(ctx, query.String(), args...)
}

func (r *ReviewsRepository) query(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		items = append(items, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return items, nil
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var (
		review domain.Review
		status string
	)
	err := row.Scan(
		&review.ID,
		&review.AnimeID,
		&review.UserName,
		&review.Rating,
		&review.ReviewText,
		&status,
		&review.CreatedAt,
	)
	if err != nil {
		return domain.Review{}, err
	}
	review.Status = domain.Status(status)
	return review, nil
}
