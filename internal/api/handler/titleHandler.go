package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	svc service.TitleService
}

func NewTitleHandler(svc service.TitleService) *TitleHandler {
	return &TitleHandler{svc: svc}
}

func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:title_id", h.Get)

	rg.POST("", authMW, middleware.RequireAdmin(), h.Create)
	rg.PATCH("/:title_id", authMW, middleware.RequireAdmin(), h.Update)
	rg.DELETE("/:title_id", authMW, middleware.RequireAdmin(), h.Delete)
}

// List handles GET /v1/titles with combinable filters:
// ?category= and ?genre= by slug, ?name= partial, ?year= exact, plus
// ?ordering= over rating and name ("-" prefix for descending).
func (h *TitleHandler) List(c *gin.Context) {
	var filters dto.TitleFilters
	filters.Category = strings.TrimSpace(c.Query("category"))
	filters.Genre = strings.TrimSpace(c.Query("genre"))
	filters.Name = strings.TrimSpace(c.Query("name"))

	if yearStr := strings.TrimSpace(c.Query("year")); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year parameter"})
			return
		}
		filters.Year = &year
	}

	if ordering := strings.TrimSpace(c.Query("ordering")); ordering != "" {
		for _, field := range strings.Split(ordering, ",") {
			if trimmed := strings.TrimSpace(field); trimmed != "" {
				filters.Ordering = append(filters.Ordering, trimmed)
			}
		}
	}

	filters.Page, filters.PageSize = parsePagination(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	list, total, err := h.svc.List(ctx, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.TitleResponse, 0, len(list))
	for _, t := range list {
		resp = append(resp, dto.TitleFromModel(t))
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(resp, filters.Page, filters.PageSize, total))
}

func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	t, err := h.svc.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TitleFromModel(*t))
}

func (h *TitleHandler) Create(c *gin.Context) {
	var in dto.CreateTitleDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	created, err := h.svc.Create(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TitleFromModel(*created))
}

func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}

	var in dto.UpdateTitleDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updated, err := h.svc.Update(ctx, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TitleFromModel(*updated))
}

func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
