package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/dto"
	"github.com/vidstream/vidstream-api/internal/repository"
	"github.com/vidstream/vidstream-api/internal/utils"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// profileService implements ProfileService.
type profileService struct {
	userRepo    repository.UserRepository
	historyRepo repository.HistoryRepository
	uploader    AssetUploader
}

// NewProfileService creates the profile service.
func NewProfileService(
	userRepo repository.UserRepository,
	historyRepo repository.HistoryRepository,
	uploader AssetUploader,
) ProfileService {
	return &profileService{
		userRepo:    userRepo,
		historyRepo: historyRepo,
		uploader:    uploader,
	}
}

// GetUser returns the sanitized record for the given user.
func (s *profileService) GetUser(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	public := user.Public()
	return &public, nil
}

// UpdateProfile applies a partial update to full name and/or email. The
// password column is untouched here, so no re-hash happens on profile-only
// updates.
func (s *profileService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*domain.PublicUser, error) {
	if req.FullName == nil && req.Email == nil {
		return nil, fmt.Errorf("nothing to update: %w", domain.ErrValidation)
	}

	if req.FullName != nil && utils.IsBlank(*req.FullName) {
		return nil, fmt.Errorf("full name must not be blank: %w", domain.ErrValidation)
	}

	if req.Email != nil {
		normalized := utils.Normalize(*req.Email)
		if !utils.ValidateEmail(normalized) {
			return nil, fmt.Errorf("invalid email format: %w", domain.ErrValidation)
		}
		req.Email = &normalized
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, req.FullName, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUser):
			return nil, fmt.Errorf("email already taken: %w", domain.ErrConflict)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	public := user.Public()
	return &public, nil
}

// UpdateAvatar uploads a new avatar and swaps the reference; the superseded
// asset is removed best-effort.
func (s *profileService) UpdateAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (*domain.PublicUser, error) {
	return s.updateImage(ctx, userID, "avatars", file,
		func(u *domain.User) string { return u.AvatarURL },
		s.userRepo.UpdateAvatarURL,
	)
}

// UpdateCover uploads a new cover image and swaps the reference.
func (s *profileService) UpdateCover(ctx context.Context, userID string, file *multipart.FileHeader) (*domain.PublicUser, error) {
	return s.updateImage(ctx, userID, "covers", file,
		func(u *domain.User) string { return u.CoverURL },
		s.userRepo.UpdateCoverURL,
	)
}

// WatchHistory returns the user's history, most recent first.
func (s *profileService) WatchHistory(ctx context.Context, userID string, limit, offset int) ([]domain.WatchEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.historyRepo.ListHistory(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch history: %w", err)
	}

	return entries, nil
}

// RecordWatch appends a video to the user's history. The id is parsed before
// it reaches the store, so a malformed one reads as caller error rather than
// a database failure.
func (s *profileService) RecordWatch(ctx context.Context, userID, videoID string) error {
	if _, err := uuid.Parse(videoID); err != nil {
		return fmt.Errorf("malformed video id: %w", domain.ErrValidation)
	}
	if _, err := s.historyRepo.GetVideo(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("video not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to get video: %w", err)
	}

	if err := s.historyRepo.RecordWatch(ctx, userID, videoID); err != nil {
		return fmt.Errorf("failed to record watch: %w", err)
	}

	return nil
}

func (s *profileService) updateImage(
	ctx context.Context,
	userID, prefix string,
	file *multipart.FileHeader,
	current func(*domain.User) string,
	persist func(context.Context, string, string) error,
) (*domain.PublicUser, error) {
	if file == nil {
		return nil, fmt.Errorf("image file is required: %w", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.uploader.Upload(ctx, prefix, file.Filename, contentType, src, file.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	if err := persist(ctx, userID, url); err != nil {
		_ = s.uploader.Remove(ctx, url)
		return nil, fmt.Errorf("failed to persist image url: %w", err)
	}

	// Old asset cleanup is best-effort; a dangling object is not worth
	// failing the request.
	if old := current(user); old != "" {
		_ = s.uploader.Remove(ctx, old)
	}

	updated, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	public := updated.Public()
	return &public, nil
}
