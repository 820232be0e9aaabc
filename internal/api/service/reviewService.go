package service

import (
	"context"
	"errors"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"

	"gorm.io/gorm"
)

// canModerate reports whether the caller may edit or remove content they do
// not own.
func canModerate(claims *Claims) bool {
	return claims.IsAdmin() || claims.IsModerator()
}

func canModify(claims *Claims, authorID string) bool {
	return claims.UserID == authorID || canModerate(claims)
}

type ReviewService interface {
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, titleID int64, claims *Claims, d dto.CreateReviewDTO) (*models.Review, error)
	Update(ctx context.Context, titleID, reviewID int64, claims *Claims, d dto.UpdateReviewDTO) (*models.Review, error)
	Delete(ctx context.Context, titleID, reviewID int64, claims *Claims) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	rev, err := s.reviewRepo.GetByTitleAndID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rev, nil
}

// Create posts a review. One review per author per title: a repeat post is a
// 400, enforced both by a pre-check and by the unique index underneath.
func (s *reviewService) Create(ctx context.Context, titleID int64, claims *Claims, d dto.CreateReviewDTO) (*models.Review, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsByAuthorAndTitle(ctx, claims.UserID, titleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fieldError("review", "you have already reviewed this title")
	}

	rev := &models.Review{
		TitleID: titleID,
		Score:   d.Score,
		Authored: models.Authored{
			AuthorID: claims.UserID,
			Text:     d.Text,
		},
	}
	if err := s.reviewRepo.Create(ctx, rev); err != nil {
		// Concurrent double-post slips past the pre-check and lands here.
		if isUniqueViolation(err, "uniq_review_author_title") {
			return nil, fieldError("review", "you have already reviewed this title")
		}
		return nil, err
	}

	return s.Get(ctx, titleID, rev.ID)
}

func (s *reviewService) Update(ctx context.Context, titleID, reviewID int64, claims *Claims, d dto.UpdateReviewDTO) (*models.Review, error) {
	rev, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !canModify(claims, rev.AuthorID) {
		return nil, ErrPermissionDenied
	}

	if d.Text != nil {
		rev.Text = *d.Text
	}
	if d.Score != nil {
		rev.Score = *d.Score
	}
	if err := s.reviewRepo.Save(ctx, rev); err != nil {
		return nil, err
	}
	return s.Get(ctx, titleID, reviewID)
}

func (s *reviewService) Delete(ctx context.Context, titleID, reviewID int64, claims *Claims) error {
	rev, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if !canModify(claims, rev.AuthorID) {
		return ErrPermissionDenied
	}
	return s.reviewRepo.Delete(ctx, rev)
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
