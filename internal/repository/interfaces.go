package repository

import (
	"context"

	"github.com/vidstream/vidstream-api/internal/domain"
)

// UserRepository defines persistence operations on identity records. All
// partial updates touch only the named column, so an unrelated update never
// re-writes the password hash or the refresh-token slot.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByUsernameOrEmail matches either field (logical OR).
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, fullName, email *string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	// UpdateRefreshTokenHash overwrites the single refresh-token slot; an
	// empty hash clears it (stored as NULL).
	UpdateRefreshTokenHash(ctx context.Context, id, tokenHash string) error
	UpdateAvatarURL(ctx context.Context, id, url string) error
	UpdateCoverURL(ctx context.Context, id, url string) error
}

// SubscriptionRepository defines operations on channel subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID string) error
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error)
}

// HistoryRepository defines operations on videos and watch history.
type HistoryRepository interface {
	GetVideo(ctx context.Context, videoID string) (*domain.Video, error)
	// RecordWatch inserts or refreshes the (user, video) entry so re-watching
	// moves it to the front of the history.
	RecordWatch(ctx context.Context, userID, videoID string) error
	ListHistory(ctx context.Context, userID string, limit, offset int) ([]domain.WatchEntry, error)
}
