package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/handler"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, titleID int64, claims *service.Claims, d dto.CreateReviewDTO) (*models.Review, error) {
	args := m.Called(ctx, titleID, claims, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, titleID, reviewID int64, claims *service.Claims, d dto.UpdateReviewDTO) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID, claims, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, titleID, reviewID int64, claims *service.Claims) error {
	args := m.Called(ctx, titleID, reviewID, claims)
	return args.Error(0)
}

// fakeAuth injects claims the way AuthMiddleware would after validating a
// token.
func fakeAuth(claims *service.Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("claims", claims)
		c.Next()
	}
}

func setupReviewRouter(mockService *MockReviewService, claims *service.Claims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewReviewHandler(mockService)
	h.RegisterRoutes(r.Group("/v1/titles"), fakeAuth(claims))
	return r
}

func TestReviewList_Paginated(t *testing.T) {
	mockService := new(MockReviewService)
	r := setupReviewRouter(mockService, nil)

	reviews := []models.Review{
		{ID: 2, TitleID: 1, Score: 9, Authored: models.Authored{Text: "later", Author: models.User{Username: "alice"}}},
		{ID: 1, TitleID: 1, Score: 4, Authored: models.Authored{Text: "earlier", Author: models.User{Username: "bob"}}},
	}
	mockService.On("ListByTitle", mock.Anything, int64(1), 1, 20).Return(reviews, int64(2), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/titles/1/reviews", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PaginatedResponse[dto.ReviewResponse]
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, "alice", resp.Data[0].Author)
}

func TestReviewList_TitleMissing(t *testing.T) {
	mockService := new(MockReviewService)
	r := setupReviewRouter(mockService, nil)

	mockService.On("ListByTitle", mock.Anything, int64(99), 1, 20).
		Return(nil, int64(0), service.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/v1/titles/99/reviews", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewCreate_Created(t *testing.T) {
	mockService := new(MockReviewService)
	claims := &service.Claims{UserID: "author-id", Role: models.RoleUser}
	r := setupReviewRouter(mockService, claims)

	created := &models.Review{
		ID:      7,
		TitleID: 1,
		Score:   8,
		Authored: models.Authored{
			Text:   "great",
			Author: models.User{Username: "alice"},
		},
	}
	mockService.On("Create", mock.Anything, int64(1), claims, dto.CreateReviewDTO{Text: "great", Score: 8}).
		Return(created, nil)

	body, _ := json.Marshal(gin.H{"text": "great", "score": 8})
	req := httptest.NewRequest(http.MethodPost, "/v1/titles/1/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.ReviewResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "alice", resp.Author)
}

func TestReviewCreate_ScoreOutOfRange(t *testing.T) {
	mockService := new(MockReviewService)
	claims := &service.Claims{UserID: "author-id", Role: models.RoleUser}
	r := setupReviewRouter(mockService, claims)

	body, _ := json.Marshal(gin.H{"text": "great", "score": 11})
	req := httptest.NewRequest(http.MethodPost, "/v1/titles/1/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewCreate_Duplicate(t *testing.T) {
	mockService := new(MockReviewService)
	claims := &service.Claims{UserID: "author-id", Role: models.RoleUser}
	r := setupReviewRouter(mockService, claims)

	fe := service.FieldErrors{"review": {"you have already reviewed this title"}}
	mockService.On("Create", mock.Anything, int64(1), claims, mock.Anything).Return(nil, fe)

	body, _ := json.Marshal(gin.H{"text": "again", "score": 5})
	req := httptest.NewRequest(http.MethodPost, "/v1/titles/1/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string][]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "review")
}

func TestReviewDelete_Forbidden(t *testing.T) {
	mockService := new(MockReviewService)
	claims := &service.Claims{UserID: "stranger", Role: models.RoleUser}
	r := setupReviewRouter(mockService, claims)

	mockService.On("Delete", mock.Anything, int64(1), int64(7), claims).
		Return(service.ErrPermissionDenied)

	req := httptest.NewRequest(http.MethodDelete, "/v1/titles/1/reviews/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReviewDelete_NoContent(t *testing.T) {
	mockService := new(MockReviewService)
	claims := &service.Claims{UserID: "author-id", Role: models.RoleUser}
	r := setupReviewRouter(mockService, claims)

	mockService.On("Delete", mock.Anything, int64(1), int64(7), claims).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/v1/titles/1/reviews/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestReviewGet_InvalidID(t *testing.T) {
	mockService := new(MockReviewService)
	r := setupReviewRouter(mockService, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/titles/abc/reviews", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
