package repository

import (
	"context"
	"fmt"
	"strings"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

// ratingSelect exposes the review-score mean as a per-row computed column.
// The rating is never stored on titles.
const ratingSelect = "titles.*, (SELECT AVG(score) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

type TitleRepository interface {
	List(ctx context.Context, filters dto.TitleFilters) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, t *models.Title, genreIDs []int64) error
	Save(ctx context.Context, t *models.Title) error
	Delete(ctx context.Context, id int64) error
	ReplaceGenres(ctx context.Context, titleID int64, genreIDs []int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

// filtered applies the combinable list filters. Genre and category go
// through subqueries so a title never duplicates in the result set.
func (r *titleRepository) filtered(ctx context.Context, f dto.TitleFilters) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Title{})
	if f.Category != "" {
		q = q.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	if f.Genre != "" {
		q = q.Where(
			"EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id WHERE tg.title_id = titles.id AND g.slug = ?)",
			f.Genre,
		)
	}
	if f.Name != "" {
		q = q.Where("titles.name ILIKE ?", "%"+f.Name+"%")
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	return q
}

func (r *titleRepository) List(ctx context.Context, f dto.TitleFilters) ([]models.Title, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	var list []models.Title
	offset := (f.Page - 1) * f.PageSize
	if err := r.filtered(ctx, f).
		Select(ratingSelect).
		Order(orderClause(f.Ordering)).
		Limit(f.PageSize).
		Offset(offset).
		Preload("Category").
		Preload("Genres").
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get titles: %w", err)
	}
	return list, total, nil
}

// orderClause maps validated ordering fields onto SQL. Callers have already
// restricted fields to the declared set (rating, name), so the clause is
// safe to build by hand.
func orderClause(ordering []string) string {
	if len(ordering) == 0 {
		ordering = []string{"-rating", "name"}
	}
	parts := make([]string, 0, len(ordering))
	for _, field := range ordering {
		dir := "ASC"
		if strings.HasPrefix(field, "-") {
			dir = "DESC"
			field = field[1:]
		}
		parts = append(parts, field+" "+dir)
	}
	return strings.Join(parts, ", ")
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).
		Select(ratingSelect).
		Preload("Category").
		Preload("Genres").
		First(&t, "titles.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts the title and its genre join rows in one transaction, so a
// failed genre assignment leaves no title behind.
func (r *titleRepository) Create(ctx context.Context, t *models.Title, genreIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Omit the association writes; the join rows are built from
		// resolved ids below.
		if err := tx.Omit("Genres", "Category").Create(t).Error; err != nil {
			return fmt.Errorf("create title: %w", err)
		}
		if len(genreIDs) == 0 {
			return nil
		}
		rows := make([]models.TitleGenre, 0, len(genreIDs))
		for _, gid := range genreIDs {
			rows = append(rows, models.TitleGenre{TitleID: t.ID, GenreID: gid})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("assign title genres: %w", err)
		}
		return nil
	})
}

func (r *titleRepository) Save(ctx context.Context, t *models.Title) error {
	if err := r.db.WithContext(ctx).Omit("Genres", "Category").Save(t).Error; err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceGenres swaps the title's join rows for the given genre ids.
func (r *titleRepository) ReplaceGenres(ctx context.Context, titleID int64, genreIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("title_id = ?", titleID).Delete(&models.TitleGenre{}).Error; err != nil {
			return fmt.Errorf("clear title genres: %w", err)
		}
		if len(genreIDs) == 0 {
			return nil
		}
		rows := make([]models.TitleGenre, 0, len(genreIDs))
		for _, gid := range genreIDs {
			rows = append(rows, models.TitleGenre{TitleID: titleID, GenreID: gid})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("assign title genres: %w", err)
		}
		return nil
	})
}
