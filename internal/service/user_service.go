package service

import (
	"context"
	"errors"
	"time"

	"chirp/internal/auth"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo  repository.UserRepository
	tokens    *auth.TokenManager
	blacklist *auth.Blacklist
}

func NewUserService(userRepo repository.UserRepository, tokens *auth.TokenManager, blacklist *auth.Blacklist) *UserService {
	return &UserService{
		userRepo:  userRepo,
		tokens:    tokens,
		blacklist: blacklist,
	}
}

type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// TokenPair is the issued access/refresh token set.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *UserService) issueTokens(userID uint) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(auth.AccessTokenTTL.Seconds()),
	}, nil
}

// Register validates and creates a new account. Duplicate usernames and
// emails are conflicts, not validation errors.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.DisplayName != "" {
		if err := validation.ValidateProfileField("display_name", in.DisplayName); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, models.NewConflictError("Username is already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}
	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, models.NewConflictError("Email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:    in.Username,
		Email:       in.Email,
		Password:    string(hash),
		DisplayName: in.DisplayName,
		IsActive:    true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can still lose the race to the unique
		// index after the existence checks above.
		return nil, models.NewConflictError("Username or email is already taken")
	}
	return user, nil
}

// Login authenticates by username or email. The error is deliberately the
// same for unknown accounts and wrong passwords.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*models.User, *TokenPair, error) {
	if identifier == "" || password == "" {
		return nil, nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, nil, models.NewInternalError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if !user.IsActive {
		return nil, nil, models.NewUnauthorizedError("This account has been deactivated")
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, nil, models.NewInternalError(err)
	}

	pair, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now()
	user.LastLogin = &now
	return user, pair, nil
}

// Refresh rotates a refresh token: the old token is blacklisted and a fresh
// pair is issued.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid or expired refresh token")
	}

	if revoked, err := s.blacklist.IsRevoked(ctx, claims.ID); err == nil && revoked {
		return nil, models.NewUnauthorizedError("Refresh token has been revoked")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid refresh token")
	}
	if _, err := activeUser(ctx, s.userRepo, userID); err != nil {
		return nil, models.NewUnauthorizedError("This account is no longer active")
	}

	// Best effort: an unreachable blacklist must not lock users out.
	_ = s.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)

	return s.issueTokens(userID)
}

// Logout revokes the presented access token until its natural expiry.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return models.NewUnauthorizedError("No token to revoke")
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return activeUser(ctx, s.userRepo, id)
}

type UpdateProfileInput struct {
	DisplayName     *string `json:"display_name"`
	Bio             *string `json:"bio"`
	Location        *string `json:"location"`
	Website         *string `json:"website"`
	ProfileImageURL *string `json:"profile_image_url"`
	BannerImageURL  *string `json:"banner_image_url"`
	IsPrivate       *bool   `json:"is_private"`
}

// UpdateProfile applies the provided fields, validating length bounds.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	user, err := activeUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}

	bounded := map[string]*string{
		"display_name": in.DisplayName,
		"bio":          in.Bio,
		"location":     in.Location,
		"website":      in.Website,
	}
	for field, value := range bounded {
		if value == nil {
			continue
		}
		if err := validation.ValidateProfileField(field, *value); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	if in.DisplayName != nil {
		user.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Location != nil {
		user.Location = *in.Location
	}
	if in.Website != nil {
		user.Website = *in.Website
	}
	if in.ProfileImageURL != nil {
		user.ProfileImageURL = *in.ProfileImageURL
	}
	if in.BannerImageURL != nil {
		user.BannerImageURL = *in.BannerImageURL
	}
	if in.IsPrivate != nil {
		user.IsPrivate = *in.IsPrivate
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, updated string) error {
	user, err := activeUser(ctx, s.userRepo, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if err := validation.ValidatePassword(updated); err != nil {
		return models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(updated), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Deactivate disables the account after a password confirmation. Tweets and
// follows are retained; listings hide inactive accounts.
func (s *UserService) Deactivate(ctx context.Context, userID uint, password string) error {
	user, err := activeUser(ctx, s.userRepo, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return models.NewUnauthorizedError("Password is incorrect")
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Search pages active users matching the query by username or display name.
func (s *UserService) Search(ctx context.Context, query string, req models.PageRequest) ([]*models.User, int64, error) {
	return s.userRepo.Search(ctx, query, req)
}
