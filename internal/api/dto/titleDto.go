package dto

import (
	"reviewhub/internal/api/models"
)

// CreateTitleDTO used for POST /v1/titles. Genre and category arrive as
// slugs; responses carry the nested objects instead.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" binding:"required"`
	Category    string   `json:"category" binding:"required"`
}

// UpdateTitleDTO used for PATCH /v1/titles/:title_id (partial updates allowed)
type UpdateTitleDTO struct {
	Name        *string   `json:"name,omitempty" binding:"omitempty,max=256"`
	Year        *int      `json:"year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Genre       *[]string `json:"genre,omitempty"`
	Category    *string   `json:"category,omitempty"`
}

// TitleResponse carries the read shape: nested category/genres plus the
// computed rating (null when the title has no reviews).
type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description string            `json:"description"`
	Genre       []GenreResponse   `json:"genre"`
	Category    *CategoryResponse `json:"category"`
}

func TitleFromModel(t models.Title) TitleResponse {
	genres := make([]GenreResponse, 0, len(t.Genres))
	for _, g := range t.Genres {
		genres = append(genres, GenreFromModel(g))
	}

	var category *CategoryResponse
	if t.Category != nil {
		c := CategoryFromModel(*t.Category)
		category = &c
	}

	return TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
		Category:    category,
	}
}

// TitleFilters collects the list-endpoint query parameters.
type TitleFilters struct {
	Category string   // category slug, exact
	Genre    string   // genre slug, exact
	Name     string   // partial, case-insensitive
	Year     *int     // exact
	Ordering []string // validated ordering fields, "-" prefix for descending
	Page     int
	PageSize int
}
