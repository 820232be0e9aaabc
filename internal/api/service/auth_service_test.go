package service

import (
	"context"
	"testing"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/config"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "test-secret",
		AccessTokenTTL:      24 * time.Hour,
		ConfirmationCodeTTL: 24 * time.Hour,
		ReservedUsernames:   []string{"me"},
	}
}

func newTestAuthService(userRepo *MockUserRepository) (AuthService, *CodeGenerator) {
	cfg := testAuthConfig()
	codes := NewCodeGenerator(cfg.JWTSecret, cfg.ConfirmationCodeTTL)
	mailer := &captureMailer{}
	return NewAuthService(userRepo, codes, mailer, nil, cfg), codes
}

// captureMailer records the last code instead of sending anything.
type captureMailer struct {
	email    string
	username string
	code     string
}

func (m *captureMailer) SendConfirmationCode(_ context.Context, email, username, code string) error {
	m.email = email
	m.username = username
	m.code = code
	return nil
}

func TestSignup_CreatesUser(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(mockUserRepo)

	mockUserRepo.On("FindByUsernameAndEmail", mock.Anything, "testuser", "test@example.com").
		Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Signup(context.Background(), dto.SignupRequest{
		Email:    "test@example.com",
		Username: "testuser",
	})

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_RepeatPairResendsCode(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	cfg := testAuthConfig()
	codes := NewCodeGenerator(cfg.JWTSecret, cfg.ConfirmationCodeTTL)
	mailer := &captureMailer{}
	svc := NewAuthService(mockUserRepo, codes, mailer, nil, cfg)

	existing := &models.User{
		ID:       "user-id",
		Username: "testuser",
		Email:    "test@example.com",
		Role:     models.RoleUser,
	}
	mockUserRepo.On("FindByUsernameAndEmail", mock.Anything, "testuser", "test@example.com").
		Return(existing, nil)

	user, err := svc.Signup(context.Background(), dto.SignupRequest{
		Email:    "test@example.com",
		Username: "testuser",
	})

	assert.NoError(t, err)
	assert.Equal(t, existing, user)
	assert.NotEmpty(t, mailer.code)
	assert.True(t, codes.Check(existing, mailer.code))
	// No Create call for a known pair.
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_ReservedUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(mockUserRepo)

	user, err := svc.Signup(context.Background(), dto.SignupRequest{
		Email:    "me@example.com",
		Username: "me",
	})

	assert.Nil(t, user)
	var fe FieldErrors
	assert.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "username")
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_InvalidUsernameCharacters(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(mockUserRepo)

	user, err := svc.Signup(context.Background(), dto.SignupRequest{
		Email:    "test@example.com",
		Username: "bad name!",
	})

	assert.Nil(t, user)
	var fe FieldErrors
	assert.ErrorAs(t, err, &fe)
	assert.Contains(t, fe["username"][0], `" "`)
	assert.Contains(t, fe["username"][0], `"!"`)
}

func TestSignup_UsernameTakenByOtherEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(mockUserRepo)

	mockUserRepo.On("FindByUsernameAndEmail", mock.Anything, "testuser", "other@example.com").
		Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Return(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"})

	user, err := svc.Signup(context.Background(), dto.SignupRequest{
		Email:    "other@example.com",
		Username: "testuser",
	})

	assert.Nil(t, user)
	var fe FieldErrors
	assert.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "username")
}

func TestSignup_EmailTakenByOtherUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(mockUserRepo)

	mockUserRepo.On("FindByUsernameAndEmail", mock.Anything, "otheruser", "test@example.com").
		Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Return(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})

	user, err := svc.Signup(context.Background(), dto.SignupRequest{
		Email:    "test@example.com",
		Username: "otheruser",
	})

	assert.Nil(t, user)
	var fe FieldErrors
	assert.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "email")
}

func TestGetToken_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc, codes := newTestAuthService(mockUserRepo)

	user := &models.User{
		ID:       "user-id",
		Username: "testuser",
		Email:    "test@example.com",
		Role:     models.RoleUser,
	}
	code := codes.Generate(user)

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	mockUserRepo.On("Save", mock.Anything, user).Return(nil)

	token, err := svc.GetToken(context.Background(), dto.TokenRequest{
		Username:         "testuser",
		ConfirmationCode: code,
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotNil(t, user.LastLogin)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-id", claims.UserID)
	assert.Equal(t, "testuser", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestGetToken_UnknownUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(mockUserRepo)

	mockUserRepo.On("FindByUsername", mock.Anything, "nonexistent").
		Return(nil, gorm.ErrRecordNotFound)

	token, err := svc.GetToken(context.Background(), dto.TokenRequest{
		Username:         "nonexistent",
		ConfirmationCode: "whatever",
	})

	assert.Empty(t, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetToken_WrongCode(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(mockUserRepo)

	user := &models.User{
		ID:       "user-id",
		Username: "testuser",
		Email:    "test@example.com",
		Role:     models.RoleUser,
	}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)

	token, err := svc.GetToken(context.Background(), dto.TokenRequest{
		Username:         "testuser",
		ConfirmationCode: "not-the-code",
	})

	assert.Empty(t, token)
	var fe FieldErrors
	assert.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "confirmation_code")
	mockUserRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGetToken_CodeSingleUse(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc, codes := newTestAuthService(mockUserRepo)

	user := &models.User{
		ID:       "user-id",
		Username: "testuser",
		Email:    "test@example.com",
		Role:     models.RoleUser,
	}
	code := codes.Generate(user)

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	mockUserRepo.On("Save", mock.Anything, user).Return(nil)

	_, err := svc.GetToken(context.Background(), dto.TokenRequest{
		Username:         "testuser",
		ConfirmationCode: code,
	})
	assert.NoError(t, err)

	// The first exchange moved last_login, so the same code is now dead.
	token, err := svc.GetToken(context.Background(), dto.TokenRequest{
		Username:         "testuser",
		ConfirmationCode: code,
	})
	assert.Empty(t, token)
	var fe FieldErrors
	assert.ErrorAs(t, err, &fe)
}

func TestValidateToken_Garbage(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(mockUserRepo)

	claims, err := svc.ValidateToken("invalid.token.here")

	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_IsAdmin(t *testing.T) {
	assert.True(t, (&Claims{Role: models.RoleAdmin}).IsAdmin())
	assert.True(t, (&Claims{Role: models.RoleUser, IsSuperuser: true}).IsAdmin())
	assert.True(t, (&Claims{Role: models.RoleUser, IsStaff: true}).IsAdmin())
	assert.False(t, (&Claims{Role: models.RoleModerator}).IsAdmin())
	assert.False(t, (&Claims{Role: models.RoleUser}).IsAdmin())
}
