package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	GetByTitleAndID(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	GetByID(ctx context.Context, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, rev *models.Review) error
	Save(ctx context.Context, rev *models.Review) error
	Delete(ctx context.Context, rev *models.Review) error
	ExistsByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (bool, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("title_id = ?", titleID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	var list []models.Review
	if err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Order("pub_date DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Preload("Author").
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get reviews: %w", err)
	}
	return list, total, nil
}

func (r *reviewRepository) GetByTitleAndID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var rev models.Review
	if err := r.db.WithContext(ctx).
		Preload("Author").
		First(&rev, "title_id = ? AND id = ?", titleID, reviewID).Error; err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, reviewID int64) (*models.Review, error) {
	var rev models.Review
	if err := r.db.WithContext(ctx).First(&rev, reviewID).Error; err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *reviewRepository) Create(ctx context.Context, rev *models.Review) error {
	return r.db.WithContext(ctx).Omit("Author", "Title").Create(rev).Error
}

func (r *reviewRepository) Save(ctx context.Context, rev *models.Review) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Title").Save(rev).Error; err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, rev *models.Review) error {
	if err := r.db.WithContext(ctx).Delete(rev).Error; err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

func (r *reviewRepository) ExistsByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("author_id = ? AND title_id = ?", authorID, titleID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check review existence: %w", err)
	}
	return count > 0, nil
}
