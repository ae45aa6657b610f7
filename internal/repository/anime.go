package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NorousS/anime-reviews/internal/domain"
)

// AnimeRepository provides persistence helpers for anime titles.
type AnimeRepository struct {
	db DBTX
}

const animeColumns = `id, title, description, created_at`

// AnimeCreateParams bundles the fields required to create an anime.
type AnimeCreateParams struct {
	Title       string
	Description *string
}

// Create inserts a new anime row and returns the stored entity.
func (r *AnimeRepository) Create(ctx context.Context, params AnimeCreateParams) (domain.Anime, error) {
	query := fmt.Sprintf(`
        INSERT INTO anime (title, description)
        VALUES ($1, $2)
        RETURNING %s
    `, animeColumns)

	anime, err := scanAnime(r.db.QueryRow(ctx, query, params.Title, params.Description))
	if err != nil {
		return domain.Anime{}, fmt.Errorf("create anime: %w", translate(err))
	}
	return anime, nil
}

// GetByID fetches an anime by its identifier.
func (r *AnimeRepository) GetByID(ctx context.Context, id int64) (domain.Anime, error) {
	query := fmt.Sprintf(`SELECT %s FROM anime WHERE id = $1`, animeColumns)
	anime, err := scanAnime(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Anime{}, fmt.Errorf("get anime %d: %w", id, translate(err))
	}
	return anime, nil
}

// List returns every anime, newest first.
func (r *AnimeRepository) List(ctx context.Context) ([]domain.Anime, error) {
	query := fmt.Sprintf(`SELECT %s FROM anime ORDER BY created_at DESC, id DESC`, animeColumns)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list anime: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Anime, 0)
	for rows.Next() {
		anime, err := scanAnime(rows)
		if err != nil {
			return nil, fmt.Errorf("scan anime: %w", err)
		}
		items = append(items, anime)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list anime: %w", err)
	}
	return items, nil
}

// SetDescription fills the description of an anime that has none yet.
func (r *AnimeRepository) SetDescription(ctx context.Context, id int64, description string) (domain.Anime, error) {
	query := fmt.Sprintf(`
        UPDATE anime
        SET description = COALESCE(description, $2)
        WHERE id = $1
        RETURNING %s
    `, animeColumns)

	anime, err := scanAnime(r.db.QueryRow(ctx, query, id, description))
	if err != nil {
		return domain.Anime{}, fmt.Errorf("set anime %d description: %w", id, translate(err))
	}
	return anime, nil
}

// Delete removes an anime; its reviews go with it through ON DELETE CASCADE.
func (r *AnimeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM anime WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete anime %d: %w", id, translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete anime %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanAnime(row pgx.Row) (domain.Anime, error) {
	var anime domain.Anime
	err := row.Scan(&anime.ID, &anime.Title, &anime.Description, &anime.CreatedAt)
	if err != nil {
		return domain.Anime{}, err
	}
	return anime, nil
}
