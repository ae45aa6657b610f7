// Package catalog runs the anime and review use cases. Each method is one unit
// of work: it validates input with the domain rules before touching storage,
// and derives aggregates and rankings from freshly loaded rows.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NorousS/anime-reviews/internal/domain"
	"github.com/NorousS/anime-reviews/internal/repository"
	"github.com/NorousS/anime-reviews/internal/synopsis"
)

// Detail is a single anime with its aggregate and reviews, newest first.
type Detail struct {
	Summary domain.Summary
	Reviews []domain.Review
}

// NewAnime is the payload for creating an anime.
type NewAnime struct {
	Title       string
	Description *string
}

// Options tunes optional collaborators.
type Options struct {
	Synopsis        synopsis.Client
	SynopsisTimeout time.Duration
	Logger          *slog.Logger
}

// Service implements the catalog use cases on top of a Repository.
type Service struct {
	repo            *repository.Repository
	synopsis        synopsis.Client
	synopsisTimeout time.Duration
	logger          *slog.Logger
}

// New constructs a Service.
func New(repo *repository.Repository, opts Options) *Service {
	s := &Service{
		repo:            repo,
		synopsis:        opts.Synopsis,
		synopsisTimeout: opts.SynopsisTimeout,
		logger:          opts.Logger,
	}
	if s.synopsis == nil {
		s.synopsis = synopsis.Disabled{}
	}
	if s.synopsisTimeout <= 0 {
		s.synopsisTimeout = 3 * time.Second
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// CreateAnime stores a new title. When no description is given the synopsis
// provider is asked for one; provider failures never fail the request.
func (s *Service) CreateAnime(ctx context.Context, in NewAnime) (domain.Summary, error) {
	if err := domain.ValidateAnimeTitle(in.Title); err != nil {
		return domain.Summary{}, err
	}

	anime, err := s.repo.Anime.Create(ctx, repository.AnimeCreateParams{
		Title:       in.Title,
		Description: in.Description,
	})
	if err != nil {
		return domain.Summary{}, err
	}

	if anime.Description == nil {
		anime = s.enrichDescription(ctx, anime)
	}
	return domain.ComputeAggregate(anime, nil), nil
}

func (s *Service) enrichDescription(ctx context.Context, anime domain.Anime) domain.Anime {
	ctx, cancel := context.WithTimeout(ctx, s.synopsisTimeout)
	defer cancel()

	result, err := s.synopsis.Fetch(ctx, anime.Title)
	if err != nil {
		if !errors.Is(err, synopsis.ErrNotFound) {
			s.logger.WarnContext(ctx, "synopsis_fetch_failed",
				slog.Int64("anime_id", anime.ID),
				slog.String("title", anime.Title),
				slog.Any("error", err),
			)
		}
		return anime
	}

	updated, err := s.repo.Anime.SetDescription(ctx, anime.ID, result.Description)
	if err != nil {
		s.logger.WarnContext(ctx, "synopsis_store_failed", slog.Int64("anime_id", anime.ID), slog.Any("error", err))
		return anime
	}
	s.logger.InfoContext(ctx, "synopsis_applied", slog.Int64("anime_id", anime.ID), slog.String("source", result.Source))
	return updated
}

// GetAnime loads one title with its aggregate and reviews.
func (s *Service) GetAnime(ctx context.Context, id int64) (Detail, error) {
	var detail Detail
	err := s.repo.InSnapshot(ctx, func(tx *repository.Repository) error {
		anime, err := tx.Anime.GetByID(ctx, id)
		if err != nil {
			return err
		}
		reviews, err := tx.Reviews.ListByAnime(ctx, id)
		if err != nil {
			return err
		}
		detail = Detail{
			Summary: domain.ComputeAggregate(anime, reviews),
			Reviews: reviews,
		}
		return nil
	})
	if err != nil {
		return Detail{}, err
	}
	return detail, nil
}

// ListAnime returns every title with its aggregate, newest title first.
func (s *Service) ListAnime(ctx context.Context) ([]domain.Summary, error) {
	items, err := s.loadTitleReviews(ctx, repository.ReviewListFilters{})
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.Summary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, domain.ComputeAggregate(item.Anime, item.Reviews))
	}
	return summaries, nil
}

// DeleteAnime removes a title and, through the cascade, its reviews.
func (s *Service) DeleteAnime(ctx context.Context, id int64) error {
	return s.repo.Anime.Delete(ctx, id)
}

// CreateReview validates and stores a review.
func (s *Service) CreateReview(ctx context.Context, in domain.NewReview) (domain.Review, error) {
	if err := domain.ValidateNewReview(in); err != nil {
		return domain.Review{}, err
	}
	return s.repo.Reviews.Create(ctx, repository.ReviewCreateParams{
		AnimeID:    in.AnimeID,
		UserName:   in.UserName,
		Rating:     in.Rating,
		ReviewText: in.ReviewText,
		Status:     in.Status,
	})
}

// GetReview loads one review.
func (s *Service) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	return s.repo.Reviews.GetByID(ctx, id)
}

// UpdateReview applies a partial update. The stored row is locked while the
// merged view is validated, so a concurrent update cannot slip a rated
// planning review past the check.
func (s *Service) UpdateReview(ctx context.Context, id int64, patch domain.ReviewPatch) (domain.Review, error) {
	if err := domain.ValidatePatchFields(patch); err != nil {
		return domain.Review{}, err
	}

	var updated domain.Review
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Reviews.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.ValidatePatch(patch, existing); err != nil {
			return err
		}
		if patch.Empty() {
			updated = existing
			return nil
		}
		updated, err = tx.Reviews.Update(ctx, id, repository.ReviewUpdateParams{
			Rating:     patch.Rating,
			ReviewText: patch.ReviewText,
			Status:     patch.Status,
		})
		return err
	})
	if err != nil {
		return domain.Review{}, err
	}
	return updated, nil
}

// DeleteReview removes a single review.
func (s *Service) DeleteReview(ctx context.Context, id int64) error {
	return s.repo.Reviews.Delete(ctx, id)
}

// Ranking builds the leaderboard over watched reviews.
func (s *Service) Ranking(ctx context.Context) ([]domain.RankedEntry, error) {
	watched := domain.StatusWatched
	items, err := s.loadTitleReviews(ctx, repository.ReviewListFilters{Status: &watched})
	if err != nil {
		return nil, err
	}
	return domain.ComputeRanking(items), nil
}

// loadTitleReviews reads titles and reviews from one snapshot.
func (s *Service) loadTitleReviews(ctx context.Context, filters repository.ReviewListFilters) ([]domain.TitleReviews, error) {
	var items []domain.TitleReviews
	err := s.repo.InSnapshot(ctx, func(tx *repository.Repository) error {
		animeList, err := tx.Anime.List(ctx)
		if err != nil {
			return err
		}
		reviews, err := tx.Reviews.List(ctx, filters)
		if err != nil {
			return err
		}

		byAnime := make(map[int64][]domain.Review, len(animeList))
		for _, r := range reviews {
			byAnime[r.AnimeID] = append(byAnime[r.AnimeID], r)
		}
		items = make([]domain.TitleReviews, 0, len(animeList))
		for _, a := range animeList {
			items = append(items, domain.TitleReviews{Anime: a, Reviews: byAnime[a.ID]})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load titles with reviews: %w", err)
	}
	return items, nil
}
