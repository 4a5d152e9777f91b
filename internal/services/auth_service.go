// file: internal/services/auth_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"doclib/internal/config"
	"doclib/internal/models"
	"doclib/internal/repositories"
	"doclib/internal/utils"
	"doclib/internal/validation"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Claims are the JWT claims issued to signed-in users
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

type authService struct {
	users  repositories.UserRepository
	cfg    config.AuthConfig
	google *oauth2.Config
	client *http.Client
	logger *zap.Logger
}

// NewAuthService creates the auth service. Google sign-in is available
// only when oauthCfg enables it.
func NewAuthService(users repositories.UserRepository, cfg config.AuthConfig, oauthCfg config.OAuthConfig, logger *zap.Logger) AuthService {
	s := &authService{
		users:  users,
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
	if oauthCfg.GoogleEnabled {
		s.google = &oauth2.Config{
			ClientID:     oauthCfg.GoogleClientID,
			ClientSecret: oauthCfg.GoogleClientSecret,
			RedirectURL:  oauthCfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return s
}

// ===============================
// PASSWORD ACCOUNTS
// ===============================

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	email := validation.NormalizeEmail(req.Email)
	hash, err := utils.HashPassword(req.Password, s.cfg.BCryptCost)
	if err != nil {
		return nil, internalError(s.logger, "failed to hash password", err)
	}

	user := &models.User{
		Name:         validation.SanitizeString(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         s.roleFor(email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("email is already registered", "EMAIL_TAKEN")
		}
		return nil, internalError(s.logger, "failed to create user", err)
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(req.Email))
	if err != nil {
		return nil, internalError(s.logger, "failed to load user", err)
	}
	if user == nil || user.PasswordHash == "" || utils.CheckPassword(user.PasswordHash, req.Password) != nil {
		return nil, NewUnauthorizedError("invalid email or password")
	}
	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, internalError(s.logger, "failed to load user", err, zap.Int64("user_id", userID))
	}
	if user == nil {
		return nil, EntityNotFoundError("user", userID)
	}
	return user, nil
}

func (s *authService) roleFor(email string) string {
	if slices.Contains(s.cfg.AdminEmails, email) {
		return models.RoleAdmin
	}
	return models.RoleUploader
}

// ===============================
// TOKENS
// ===============================

func (s *authService) issue(user *models.User) (*AuthResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWTExpiry)
	claims := &Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    s.cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, internalError(s.logger, "failed to sign token", err)
	}
	return &AuthResponse{Token: signed, ExpiresAt: expiresAt.Unix(), User: user}, nil
}

// ValidateToken verifies signature, issuer and expiry of an HS256 token
func (s *authService) ValidateToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.JWTIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, NewUnauthorizedError("invalid or expired token")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, NewUnauthorizedError("invalid token subject")
	}
	return claims, nil
}

// ===============================
// GOOGLE
// ===============================

type googleProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

func (s *authService) GoogleEnabled() bool {
	return s.google != nil
}

func (s *authService) GoogleAuthURL(state string) string {
	if s.google == nil {
		return ""
	}
	return s.google.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// GoogleCallback exchanges the code, then signs in the account with the
// verified Google email, creating it on first use.
func (s *authService) GoogleCallback(ctx context.Context, code string) (*AuthResponse, error) {
	if s.google == nil {
		return nil, NewNotFoundError("google sign-in is not enabled")
	}
	if code == "" {
		return nil, InvalidInputError("code", "is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("Google code exchange failed", zap.Error(err))
		return nil, NewUnauthorizedError("google sign-in failed")
	}

	profile, err := s.fetchGoogleProfile(ctx, token)
	if err != nil {
		return nil, internalError(s.logger, "failed to fetch google profile", err)
	}
	if !profile.EmailVerified || profile.Email == "" {
		return nil, NewUnauthorizedError("google account email is not verified")
	}

	email := validation.NormalizeEmail(profile.Email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, internalError(s.logger, "failed to load user", err)
	}
	if user == nil {
		user, err = s.createGoogleUser(ctx, email, profile.Name)
		if err != nil {
			return nil, err
		}
	}
	return s.issue(user)
}

func (s *authService) fetchGoogleProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	resp, err := s.google.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	return &profile, nil
}

// createGoogleUser stores an account with an unusable random password.
func (s *authService) createGoogleUser(ctx context.Context, email, name string) (*models.User, error) {
	secret, err := uuid.NewV4()
	if err != nil {
		return nil, internalError(s.logger, "failed to generate password", err)
	}
	hash, err := utils.HashPassword(secret.String(), s.cfg.BCryptCost)
	if err != nil {
		return nil, internalError(s.logger, "failed to hash password", err)
	}
	if name = validation.SanitizeString(name); len(name) < 2 {
		name = email
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: s.roleFor(email)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// Lost a race with a concurrent first sign-in.
			existing, getErr := s.users.GetByEmail(ctx, email)
			if getErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, internalError(s.logger, "failed to create user", err)
	}
	s.logger.Info("User registered via Google", zap.Int64("user_id", user.ID))
	return user, nil
}
