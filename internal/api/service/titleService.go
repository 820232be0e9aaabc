package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"

	"gorm.io/gorm"
)

// orderableTitleFields are the fields the list endpoint accepts in
// ?ordering=, with or without a leading "-".
var orderableTitleFields = map[string]bool{
	"rating": true,
	"name":   true,
}

type TitleService interface {
	List(ctx context.Context, filters dto.TitleFilters) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, d dto.CreateTitleDTO) (*models.Title, error)
	Update(ctx context.Context, id int64, d dto.UpdateTitleDTO) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

func (s *titleService) List(ctx context.Context, filters dto.TitleFilters) ([]models.Title, int64, error) {
	for _, field := range filters.Ordering {
		if !orderableTitleFields[strings.TrimPrefix(field, "-")] {
			return nil, 0, fieldError("ordering", fmt.Sprintf("cannot order by %q", field))
		}
	}
	return s.titleRepo.List(ctx, filters)
}

func (s *titleService) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	t, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *titleService) Create(ctx context.Context, d dto.CreateTitleDTO) (*models.Title, error) {
	if errs := validateYear(d.Year); errs != nil {
		return nil, errs
	}

	category, errs, err := s.resolveCategory(ctx, d.Category)
	if err != nil {
		return nil, err
	}
	if errs != nil {
		return nil, errs
	}

	genres, errs, err := s.resolveGenres(ctx, d.Genre)
	if err != nil {
		return nil, err
	}
	if errs != nil {
		return nil, errs
	}

	t := &models.Title{
		Name:        d.Name,
		Year:        d.Year,
		Description: d.Description,
		CategoryID:  &category.ID,
	}
	if err := s.titleRepo.Create(ctx, t, genreIDs(genres)); err != nil {
		return nil, err
	}

	return s.titleRepo.GetByID(ctx, t.ID)
}

func (s *titleService) Update(ctx context.Context, id int64, d dto.UpdateTitleDTO) (*models.Title, error) {
	t, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if d.Name != nil {
		t.Name = *d.Name
	}
	if d.Year != nil {
		if errs := validateYear(*d.Year); errs != nil {
			return nil, errs
		}
		t.Year = *d.Year
	}
	if d.Description != nil {
		t.Description = *d.Description
	}
	if d.Category != nil {
		category, errs, err := s.resolveCategory(ctx, *d.Category)
		if err != nil {
			return nil, err
		}
		if errs != nil {
			return nil, errs
		}
		t.CategoryID = &category.ID
	}

	var newGenres []models.Genre
	if d.Genre != nil {
		genres, errs, err := s.resolveGenres(ctx, *d.Genre)
		if err != nil {
			return nil, err
		}
		if errs != nil {
			return nil, errs
		}
		newGenres = genres
	}

	if err := s.titleRepo.Save(ctx, t); err != nil {
		return nil, err
	}
	if d.Genre != nil {
		if err := s.titleRepo.ReplaceGenres(ctx, t.ID, genreIDs(newGenres)); err != nil {
			return nil, err
		}
	}

	return s.titleRepo.GetByID(ctx, t.ID)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func validateYear(year int) FieldErrors {
	current := time.Now().Year()
	if year > current {
		return fieldError("year", fmt.Sprintf("year %d is after the current year %d", year, current))
	}
	return nil
}

// resolveCategory maps a category slug to its row. An unknown slug is a
// validation failure on the category field, not a 404.
func (s *titleService) resolveCategory(ctx context.Context, slug string) (*models.Category, FieldErrors, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldError("category", fmt.Sprintf("unknown category %q", slug)), nil
		}
		return nil, nil, err
	}
	return category, nil, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, FieldErrors, error) {
	genres, err := s.genreRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, nil, err
	}

	found := make(map[string]bool, len(genres))
	for _, g := range genres {
		found[g.Slug] = true
	}
	var missing []string
	for _, slug := range slugs {
		if !found[slug] {
			missing = append(missing, fmt.Sprintf("%q", slug))
		}
	}
	if len(missing) > 0 {
		return nil, fieldError("genre", "unknown genre "+strings.Join(missing, ", ")), nil
	}
	return genres, nil, nil
}

func genreIDs(genres []models.Genre) []int64 {
	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids
}
