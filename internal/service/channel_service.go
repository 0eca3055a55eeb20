package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/repository"
	"github.com/vidstream/vidstream-api/internal/utils"
)

// channelService implements ChannelService.
type channelService struct {
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
	stats    *ChannelStatsCache
}

// NewChannelService creates the channel service. stats may be nil, in which
// case counts always hit Postgres.
func NewChannelService(
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	stats *ChannelStatsCache,
) ChannelService {
	return &channelService{
		userRepo: userRepo,
		subRepo:  subRepo,
		stats:    stats,
	}
}

// GetChannelProfile returns the public channel view with subscriber counts.
// IsSubscribed is only meaningful when viewerID is non-empty.
func (s *channelService) GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	username = utils.Normalize(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("channel not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	subscribers, subscribedTo, err := s.counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &domain.ChannelProfile{
		PublicUser:        user.Public(),
		SubscriberCount:   subscribers,
		SubscribedToCount: subscribedTo,
	}

	if viewerID != "" && viewerID != user.ID {
		isSubscribed, err := s.subRepo.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check subscription: %w", err)
		}
		profile.IsSubscribed = isSubscribed
	}

	return profile, nil
}

// Subscribe adds the caller as a subscriber of the channel.
func (s *channelService) Subscribe(ctx context.Context, subscriberID, channelID string) error {
	if _, err := uuid.Parse(channelID); err != nil {
		return fmt.Errorf("malformed channel id: %w", domain.ErrValidation)
	}
	if subscriberID == channelID {
		return fmt.Errorf("cannot subscribe to yourself: %w", domain.ErrValidation)
	}

	if _, err := s.userRepo.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("channel not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to get channel: %w", err)
	}

	err := s.subRepo.Create(ctx, &domain.Subscription{
		SubscriberID: subscriberID,
		ChannelID:    channelID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSubscription) {
			return fmt.Errorf("already subscribed: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	s.invalidate(ctx, subscriberID, channelID)
	return nil
}

// Unsubscribe removes the caller's subscription to the channel.
func (s *channelService) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	if _, err := uuid.Parse(channelID); err != nil {
		return fmt.Errorf("malformed channel id: %w", domain.ErrValidation)
	}
	if err := s.subRepo.Delete(ctx, subscriberID, channelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("subscription not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	s.invalidate(ctx, subscriberID, channelID)
	return nil
}

func (s *channelService) counts(ctx context.Context, channelID string) (int64, int64, error) {
	if s.stats != nil {
		if subs, to, ok := s.stats.Get(ctx, channelID); ok {
			return subs, to, nil
		}
	}

	subscribers, err := s.subRepo.CountSubscribers(ctx, channelID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count subscribers: %w", err)
	}

	subscribedTo, err := s.subRepo.CountSubscribedTo(ctx, channelID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	if s.stats != nil {
		s.stats.Set(ctx, channelID, subscribers, subscribedTo)
	}

	return subscribers, subscribedTo, nil
}

func (s *channelService) invalidate(ctx context.Context, subscriberID, channelID string) {
	if s.stats == nil {
		return
	}
	s.stats.Invalidate(ctx, channelID)
	s.stats.Invalidate(ctx, subscriberID)
}
