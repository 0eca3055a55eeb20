package service

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/dto"
)

// RegisterInput carries registration fields plus the uploaded image parts.
type RegisterInput struct {
	FullName string
	Email    string
	Username string
	Password string
	Avatar   *multipart.FileHeader
	Cover    *multipart.FileHeader
}

// LoginInput identifies a user by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Session is the result of a successful login or refresh.
type Session struct {
	User   domain.PublicUser
	Tokens domain.TokenPair
}

// SessionService drives the session lifecycle: anonymous -> authenticated ->
// refreshed (loop) -> logged out.
type SessionService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.PublicUser, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ValidateAccessToken(ctx context.Context, token string) (*domain.AccessClaims, error)
}

// ProfileService covers the authenticated user's own record: profile reads
// and updates, avatar/cover replacement, watch history.
type ProfileService interface {
	GetUser(ctx context.Context, userID string) (*domain.PublicUser, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*domain.PublicUser, error)
	UpdateAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (*domain.PublicUser, error)
	UpdateCover(ctx context.Context, userID string, file *multipart.FileHeader) (*domain.PublicUser, error)
	WatchHistory(ctx context.Context, userID string, limit, offset int) ([]domain.WatchEntry, error)
	RecordWatch(ctx context.Context, userID, videoID string) error
}

// ChannelService covers the public channel view and subscriptions. viewerID
// is empty for anonymous callers.
type ChannelService interface {
	GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
	Subscribe(ctx context.Context, subscriberID, channelID string) error
	Unsubscribe(ctx context.Context, subscriberID, channelID string) error
}

// AssetUploader is the asset-host boundary; objectstore.Client implements it.
// Uploaded assets are referenced everywhere else as plain URL strings.
type AssetUploader interface {
	Upload(ctx context.Context, prefix, filename, contentType string, reader io.Reader, size int64) (string, error)
	Remove(ctx context.Context, assetURL string) error
}
