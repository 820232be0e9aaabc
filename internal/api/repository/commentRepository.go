package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
	GetByReviewAndID(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
	Save(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, c *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("review_id = ?", reviewID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	var list []models.Comment
	if err := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("pub_date DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Preload("Author").
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get comments: %w", err)
	}
	return list, total, nil
}

func (r *commentRepository) GetByReviewAndID(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		First(&c, "review_id = ? AND id = ?", reviewID, commentID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) Create(ctx context.Context, c *models.Comment) error {
	return r.db.WithContext(ctx).Omit("Author", "Review").Create(c).Error
}

func (r *commentRepository) Save(ctx context.Context, c *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Review").Save(c).Error; err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, c *models.Comment) error {
	if err := r.db.WithContext(ctx).Delete(c).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
