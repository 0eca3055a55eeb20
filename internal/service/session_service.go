package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/repository"
	"github.com/vidstream/vidstream-api/internal/utils"
)

// sessionService implements SessionService.
type sessionService struct {
	userRepo     repository.UserRepository
	tokenManager *utils.TokenManager
	uploader     AssetUploader
	bcryptCost   int
}

// NewSessionService creates the session service. The store handle arrives via
// the repository; there is no package-level connection state.
func NewSessionService(
	userRepo repository.UserRepository,
	tokenManager *utils.TokenManager,
	uploader AssetUploader,
	bcryptCost int,
) SessionService {
	return &sessionService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		uploader:     uploader,
		bcryptCost:   bcryptCost,
	}
}

// Register creates a new identity. The avatar is required and is uploaded to
// the asset host before the record is written; the cover upload is
// best-effort and a failure leaves the field empty.
func (s *sessionService) Register(ctx context.Context, input RegisterInput) (*domain.PublicUser, error) {
	for _, field := range []string{input.FullName, input.Email, input.Username, input.Password} {
		if utils.IsBlank(field) {
			return nil, fmt.Errorf("all fields are required: %w", domain.ErrValidation)
		}
	}

	username := utils.Normalize(input.Username)
	email := utils.Normalize(input.Email)

	if !utils.ValidateEmail(email) {
		return nil, fmt.Errorf("invalid email format: %w", domain.ErrValidation)
	}
	if !utils.ValidateUsername(username) {
		return nil, fmt.Errorf("username must be 3-30 lowercase letters, digits, '_' or '.': %w", domain.ErrValidation)
	}
	if input.Avatar == nil {
		return nil, fmt.Errorf("avatar file is required: %w", domain.ErrValidation)
	}

	_, err := s.userRepo.GetByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return nil, fmt.Errorf("username or email already taken: %w", domain.ErrConflict)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	avatarURL, err := s.uploadImage(ctx, "avatars", input.Avatar)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	// Cover is optional; a failed upload is tolerated and the URL stays empty.
	var coverURL string
	if input.Cover != nil {
		coverURL, _ = s.uploadImage(ctx, "covers", input.Cover)
	}

	passwordHash, err := utils.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		FullName:     input.FullName,
		PasswordHash: passwordHash,
		AvatarURL:    avatarURL,
		CoverURL:     coverURL,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			// Lost the race with a concurrent registration; clean up the
			// orphaned assets best-effort.
			_ = s.uploader.Remove(ctx, avatarURL)
			if coverURL != "" {
				_ = s.uploader.Remove(ctx, coverURL)
			}
			return nil, fmt.Errorf("username or email already taken: %w", domain.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	public := user.Public()
	return &public, nil
}

// Login verifies credentials and opens a session. Persisting the new refresh
// token overwrites the single slot, silently ending any previous session for
// this user.
func (s *sessionService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	username := utils.Normalize(input.Username)
	email := utils.Normalize(input.Email)

	if username == "" && email == "" {
		return nil, fmt.Errorf("username or email is required: %w", domain.ErrValidation)
	}
	if input.Password == "" {
		return nil, fmt.Errorf("password is required: %w", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, fmt.Errorf("wrong password: %w", domain.ErrInvalidCredentials)
	}

	return s.openSession(ctx, user)
}

// Refresh rotates the token pair. The incoming token must both verify against
// the refresh secret and match the persisted slot; a token rotated away by a
// newer login or refresh is rejected even though its signature is still valid.
func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token missing: %w", domain.ErrUnauthorized)
	}

	userID, err := s.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("unknown user: %w", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	incoming := hashToken(refreshToken)
	if user.RefreshTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(incoming), []byte(user.RefreshTokenHash)) != 1 {
		return nil, fmt.Errorf("refresh token superseded or revoked: %w", domain.ErrUnauthorized)
	}

	return s.openSession(ctx, user)
}

// Logout revokes the session by clearing the refresh-token slot. The access
// token stays cryptographically valid until it expires; request
// authentication upstream has already vouched for the caller.
func (s *sessionService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.UpdateRefreshTokenHash(ctx, userID, ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("unknown user: %w", domain.ErrUnauthorized)
		}
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return nil
}

// ChangePassword re-hashes the password and clears the refresh-token slot, so
// a stolen refresh token stops working as soon as the password changes.
func (s *sessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("unknown user: %w", domain.ErrUnauthorized)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return fmt.Errorf("wrong password: %w", domain.ErrUnauthorized)
	}

	if utils.IsBlank(newPassword) {
		return fmt.Errorf("new password is required: %w", domain.ErrValidation)
	}

	passwordHash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.userRepo.UpdateRefreshTokenHash(ctx, userID, ""); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	return nil
}

// ValidateAccessToken verifies an access token for request authentication.
func (s *sessionService) ValidateAccessToken(ctx context.Context, token string) (*domain.AccessClaims, error) {
	claims, err := s.tokenManager.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, fmt.Errorf("access token expired: %w", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("invalid access token: %w", domain.ErrUnauthorized)
	}

	return claims, nil
}

// openSession mints a fresh pair and persists the refresh token's hash in the
// single slot.
func (s *sessionService) openSession(ctx context.Context, user *domain.User) (*Session, error) {
	accessToken, err := s.tokenManager.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.tokenManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.userRepo.UpdateRefreshTokenHash(ctx, user.ID, hashToken(refreshToken)); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &Session{
		User: user.Public(),
		Tokens: domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}

func (s *sessionService) uploadImage(ctx context.Context, prefix string, fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return s.uploader.Upload(ctx, prefix, fh.Filename, contentType, file, fh.Size)
}

// hashToken hashes a token with SHA-256 for storage; only the hash is
// persisted, and equality of hashes stands in for byte-for-byte equality of
// the tokens.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
