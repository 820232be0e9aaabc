package handler

import (
	"context"
	"net/http"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	svc service.CommentService
}

func NewCommentHandler(svc service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/:title_id/reviews/:review_id/comments", h.List)
	rg.GET("/:title_id/reviews/:review_id/comments/:comment_id", h.Get)

	rg.POST("/:title_id/reviews/:review_id/comments", authMW, h.Create)
	rg.PATCH("/:title_id/reviews/:review_id/comments/:comment_id", authMW, h.Update)
	rg.DELETE("/:title_id/reviews/:review_id/comments/:comment_id", authMW, h.Delete)
}

func (h *CommentHandler) List(c *gin.Context) {
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, total, err := h.svc.ListByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]*dto.CommentResponse, 0, len(list))
	for i := range list {
		resp = append(resp, dto.CommentFromModel(&list[i]))
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(resp, page, pageSize, total))
}

func (h *CommentHandler) Get(c *gin.Context) {
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	comment, err := h.svc.Get(ctx, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentFromModel(comment))
}

func (h *CommentHandler) Create(c *gin.Context) {
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return
	}
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var in dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	created, err := h.svc.Create(ctx, reviewID, claims, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CommentFromModel(created))
}

func (h *CommentHandler) Update(c *gin.Context) {
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var in dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updated, err := h.svc.Update(ctx, reviewID, commentID, claims, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentFromModel(updated))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, reviewID, commentID, claims); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
