package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"coursehub/internal/domain/user/model"
	"coursehub/internal/domain/user/repository"
	"coursehub/internal/pkg/auth"
	"coursehub/pkg/apperr"
	"coursehub/pkg/database"
	"coursehub/pkg/utils"

	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

var (
	ErrUserNotFound       = apperr.NotFound("User not found")
	ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password")
	ErrEmailTaken         = apperr.Conflict("User with this email already exists")
	ErrInvalidRole        = apperr.BadRequest("Invalid role. Must be one of: admin, client")
)

// SignupInput is the local signup payload.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthResult is a signed session for a user.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	GoogleLogin(ctx context.Context, accessToken string) (*AuthResult, error)
	GoogleSignup(ctx context.Context, idToken, role string) (*AuthResult, error)
	SetPassword(ctx context.Context, userID, password, confirm string) (*model.User, error)
	ChangePassword(ctx context.Context, userID, current, next, confirm string) (*model.User, error)
}

// TokenConfig signs session tokens.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type authService struct {
	repo      repository.UserRepository
	google    auth.GoogleVerifier
	blacklist auth.TokenBlacklist
	tokens    TokenConfig
	users     UserCache
	log       *zap.Logger
}

func NewAuthService(repo repository.UserRepository, google auth.GoogleVerifier, blacklist auth.TokenBlacklist, tokens TokenConfig, users UserCache, log *zap.Logger) AuthService {
	if users == nil {
		users = nopUserCache{}
	}
	return &authService{repo: repo, google: google, blacklist: blacklist, tokens: tokens, users: users, log: log}
}

type nopUserCache struct{}

func (nopUserCache) Invalidate(context.Context, string) {}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, exp, err := utils.GenerateToken(s.tokens.Secret, user.ID, string(user.Role), s.tokens.TTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.BadRequest("Please provide all required fields (name, email, password)")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperr.BadRequest("Please enter a valid email")
	}
	if err := auth.CheckLength(in.Password); err != nil {
		return nil, apperr.BadRequest(err.Error())
	}
	role, ok := model.ParseRole(in.Role)
	if !ok {
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !database.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		Password:     hash,
		HasPassword:  true,
		Role:         role,
		AuthProvider: model.ProviderLocal,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.BadRequest("Please provide email and password")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.AuthProvider == model.ProviderGoogle && !user.HasPassword {
		return nil, apperr.Forbidden("You signed up with Google. Please login with Google or set a password first using the set-password endpoint.").
			With("requiresPasswordSetup", true)
	}
	if user.Password == "" {
		return nil, apperr.Forbidden("No password set for this account. Please use Google login or set a password first.").
			With("requiresPasswordSetup", true)
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Logout revokes token until its natural expiry. Unparseable tokens are ignored.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := utils.ParseToken(s.tokens.Secret, token)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		s.log.Warn("token revoke failed", zap.Error(err))
	}
	return nil
}

func (s *authService) GoogleLogin(ctx context.Context, accessToken string) (*AuthResult, error) {
	if accessToken == "" {
		return nil, apperr.BadRequest("Google access token is required")
	}

	profile, err := s.google.FetchUserInfo(ctx, accessToken)
	if err != nil {
		s.log.Warn("google userinfo failed", zap.Error(err))
		return nil, apperr.Unauthorized("Invalid Google access token")
	}

	user, err := s.repo.GetByEmailOrGoogleID(ctx, normalizeEmail(profile.Email), profile.GoogleID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("User not found. Please sign up first.")
		}
		return nil, err
	}

	if user.GoogleID == nil || *user.GoogleID == "" {
		googleID := profile.GoogleID
		user.GoogleID = &googleID
		user.AuthProvider = model.ProviderGoogle
		user.IsEmailVerified = true
		columns := []string{"google_id", "auth_provider", "is_email_verified"}
		if profile.Picture != "" && (user.ProfilePicture == nil || *user.ProfilePicture == "") {
			picture := profile.Picture
			user.ProfilePicture = &picture
			columns = append(columns, "profile_picture")
		}
		if err := s.repo.Update(ctx, user, columns...); err != nil {
			return nil, err
		}
		s.users.Invalidate(ctx, user.ID)
	}

	return s.issue(user)
}

func (s *authService) GoogleSignup(ctx context.Context, idToken, roleName string) (*AuthResult, error) {
	if idToken == "" {
		return nil, apperr.BadRequest("Google token is required")
	}
	if roleName == "" {
		return nil, apperr.BadRequest("Role is required for signup")
	}
	role, ok := model.ParseRole(roleName)
	if !ok {
		return nil, ErrInvalidRole
	}

	profile, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, auth.ErrGoogleNotConfigured) {
			return nil, apperr.Configuration("Google sign-in is not configured")
		}
		s.log.Warn("google id token rejected", zap.Error(err))
		return nil, apperr.Unauthorized("Invalid Google token")
	}

	email := normalizeEmail(profile.Email)
	if _, err := s.repo.GetByEmailOrGoogleID(ctx, email, profile.GoogleID); err == nil {
		return nil, apperr.Conflict("User already exists. Please login instead.")
	} else if !database.IsNotFound(err) {
		return nil, err
	}

	googleID := profile.GoogleID
	user := &model.User{
		Name:            profile.Name,
		Email:           email,
		GoogleID:        &googleID,
		Role:            role,
		AuthProvider:    model.ProviderGoogle,
		HasPassword:     false,
		IsEmailVerified: profile.EmailVerified,
	}
	if user.Name == "" {
		user.Name = email
	}
	if profile.Picture != "" {
		picture := profile.Picture
		user.ProfilePicture = &picture
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("User already exists. Please login instead.")
		}
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) SetPassword(ctx context.Context, userID, password, confirm string) (*model.User, error) {
	if password == "" || confirm == "" {
		return nil, apperr.BadRequest("Please provide both password and confirmPassword")
	}
	if password != confirm {
		return nil, apperr.BadRequest("Passwords do not match")
	}
	if err := auth.CheckStrength(password); err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasPassword && user.Password != "" {
		return nil, apperr.BadRequest("Password already set. Use change-password endpoint to update your password.")
	}

	if err := s.storePassword(ctx, user, password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, current, next, confirm string) (*model.User, error) {
	if current == "" || next == "" || confirm == "" {
		return nil, apperr.BadRequest("Please provide all required fields")
	}
	if next != confirm {
		return nil, apperr.BadRequest("New passwords do not match")
	}
	if err := auth.CheckStrength(next); err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Password == "" || !user.HasPassword {
		return nil, apperr.BadRequest("No password set. Please use set-password endpoint first.")
	}
	if !auth.CheckPassword(user.Password, current) {
		return nil, apperr.Unauthorized("Current password is incorrect")
	}
	if auth.CheckPassword(user.Password, next) {
		return nil, apperr.BadRequest("New password must be different from current password")
	}

	if err := s.storePassword(ctx, user, next); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) storePassword(ctx context.Context, user *model.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperr.Internal(err)
	}
	user.Password = hash
	user.HasPassword = true
	if err := s.repo.Update(ctx, user, "password", "has_password"); err != nil {
		return err
	}
	s.users.Invalidate(ctx, user.ID)
	return nil
}

func (s *authService) getUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
