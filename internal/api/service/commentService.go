package service

import (
	"context"
	"errors"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"

	"gorm.io/gorm"
)

type CommentService interface {
	ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
	Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	Create(ctx context.Context, reviewID int64, claims *Claims, d dto.CreateCommentDTO) (*models.Comment, error)
	Update(ctx context.Context, reviewID, commentID int64, claims *Claims, d dto.UpdateCommentDTO) (*models.Comment, error)
	Delete(ctx context.Context, reviewID, commentID int64, claims *Claims) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

func (s *commentService) ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	if err := s.requireReview(ctx, reviewID); err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(ctx, reviewID, page, pageSize)
}

func (s *commentService) Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	c, err := s.commentRepo.GetByReviewAndID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *commentService) Create(ctx context.Context, reviewID int64, claims *Claims, d dto.CreateCommentDTO) (*models.Comment, error) {
	if err := s.requireReview(ctx, reviewID); err != nil {
		return nil, err
	}

	c := &models.Comment{
		ReviewID: reviewID,
		Authored: models.Authored{
			AuthorID: claims.UserID,
			Text:     d.Text,
		},
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.Get(ctx, reviewID, c.ID)
}

func (s *commentService) Update(ctx context.Context, reviewID, commentID int64, claims *Claims, d dto.UpdateCommentDTO) (*models.Comment, error) {
	c, err := s.Get(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !canModify(claims, c.AuthorID) {
		return nil, ErrPermissionDenied
	}

	if d.Text != nil {
		c.Text = *d.Text
	}
	if err := s.commentRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.Get(ctx, reviewID, commentID)
}

func (s *commentService) Delete(ctx context.Context, reviewID, commentID int64, claims *Claims) error {
	c, err := s.Get(ctx, reviewID, commentID)
	if err != nil {
		return err
	}
	if !canModify(claims, c.AuthorID) {
		return ErrPermissionDenied
	}
	return s.commentRepo.Delete(ctx, c)
}

// requireReview resolves the parent by review id alone; the title segment of
// the route is not cross-checked.
func (s *commentService) requireReview(ctx context.Context, reviewID int64) error {
	if _, err := s.reviewRepo.GetByID(ctx, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
