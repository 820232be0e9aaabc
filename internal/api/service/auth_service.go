package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var ErrInvalidToken = errors.New("invalid token")

// usernamePattern is the set of characters a username may consist of.
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Claims is the payload of an access token.
type Claims struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
	IsStaff     bool   `json:"is_staff,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin mirrors models.User.IsAdmin so middleware can authorize from the
// token alone.
func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin || c.IsSuperuser || c.IsStaff
}

func (c *Claims) IsModerator() bool {
	return c.Role == models.RoleModerator
}

type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error)
	GetToken(ctx context.Context, req dto.TokenRequest) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo  repository.UserRepository
	codes     *CodeGenerator
	mailer    Mailer
	throttle  *ResendThrottle
	jwtSecret string
	tokenTTL  time.Duration
	reserved  []string
}

func NewAuthService(
	userRepo repository.UserRepository,
	codes *CodeGenerator,
	mailer Mailer,
	throttle *ResendThrottle,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		codes:     codes,
		mailer:    mailer,
		throttle:  throttle,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.AccessTokenTTL,
		reserved:  cfg.ReservedUsernames,
	}
}

// Signup registers a user (or recognizes an existing username+email pair) and
// e-mails a confirmation code. Repeating a signup for the same pair re-issues
// a code; reusing only the username or only the email is a conflict.
func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error) {
	if errs := validateUsername(req.Username, s.reserved); errs != nil {
		return nil, errs
	}

	user, err := s.userRepo.FindByUsernameAndEmail(ctx, req.Username, req.Email)
	switch {
	case err == nil:
		// Known pair, fall through to re-send.
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &models.User{
			Username: req.Username,
			Email:    req.Email,
			Role:     models.RoleUser,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if fe := signupConflict(err); fe != nil {
				return nil, fe
			}
			return nil, err
		}
	default:
		return nil, err
	}

	if !s.throttle.Allow(ctx, user.Username) {
		// Too soon after the previous code. The signup still succeeds and
		// the earlier code stays valid.
		return user, nil
	}
	code := s.codes.Generate(user)
	if err := s.mailer.SendConfirmationCode(ctx, user.Email, user.Username, code); err != nil {
		return nil, fmt.Errorf("send confirmation code: %w", err)
	}
	return user, nil
}

// GetToken exchanges a confirmation code for an access token. An unknown
// username is ErrNotFound (404); a wrong or expired code for a known user is
// a field error (400).
func (s *authService) GetToken(ctx context.Context, req dto.TokenRequest) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if !s.codes.Check(user, req.ConfirmationCode) {
		return "", fieldError("confirmation_code", "invalid or expired confirmation code")
	}

	// Moving last_login invalidates the code that was just used.
	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Save(ctx, user); err != nil {
		return "", err
	}

	return s.generateAccessToken(user)
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		IsSuperuser: user.IsSuperuser,
		IsStaff:     user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func validateUsername(username string, reserved []string) FieldErrors {
	for _, r := range reserved {
		if username == r {
			return fieldError("username", fmt.Sprintf("username %q is reserved", username))
		}
	}
	if !usernamePattern.MatchString(username) {
		return fieldError("username", fmt.Sprintf(
			"username may contain only letters, digits and @/./+/-/_ characters; invalid: %s",
			strings.Join(invalidUsernameChars(username), " ")))
	}
	return nil
}

func invalidUsernameChars(username string) []string {
	seen := make(map[rune]bool)
	var bad []string
	for _, r := range username {
		if seen[r] || usernamePattern.MatchString(string(r)) {
			continue
		}
		seen[r] = true
		bad = append(bad, fmt.Sprintf("%q", string(r)))
	}
	return bad
}

func signupConflict(err error) FieldErrors {
	switch {
	case isUniqueViolation(err, "username"):
		return fieldError("username", "a user with that username already exists")
	case isUniqueViolation(err, "email"):
		return fieldError("email", "a user with that email already exists")
	}
	return nil
}
