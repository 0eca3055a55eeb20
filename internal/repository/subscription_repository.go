package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/pkg/database"
)

// subscriptionRepository implements SubscriptionRepository on Postgres.
type subscriptionRepository struct {
	db *database.Postgres
}

// NewSubscriptionRepository creates a new subscription repository.
func NewSubscriptionRepository(db *database.Postgres) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create inserts a subscription; the (subscriber, channel) pair is unique.
func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query, sub.ID, sub.SubscriberID, sub.ChannelID, sub.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("subscriber %s already follows %s: %w", sub.SubscriberID, sub.ChannelID, ErrDuplicateSubscription)
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// Delete removes a subscription.
func (r *subscriptionRepository) Delete(ctx context.Context, subscriberID, channelID string) error {
	query := `DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`

	result, err := r.db.DB.ExecContext(ctx, query, subscriberID, channelID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("subscription not found: %w", ErrNotFound)
	}

	return nil
}

// Exists reports whether the subscriber follows the channel.
func (r *subscriptionRepository) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`

	var exists bool
	if err := r.db.DB.QueryRowContext(ctx, query, subscriberID, channelID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}

	return exists, nil
}

// CountSubscribers counts users following the channel.
func (r *subscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

// CountSubscribedTo counts channels the user follows.
func (r *subscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}

func (r *subscriptionRepository) count(ctx context.Context, query, id string) (int64, error) {
	var n int64
	if err := r.db.DB.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return n, nil
}
