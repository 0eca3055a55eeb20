package domain

import "time"

// User is a registered identity plus its authentication-relevant fields.
// PasswordHash and RefreshTokenHash never leave the service layer; responses
// carry the Public view instead.
type User struct {
	ID           string `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	FullName     string `json:"full_name" db:"full_name"`
	PasswordHash string `json:"-" db:"password_hash"`
	AvatarURL    string `json:"avatar_url" db:"avatar_url"`
	CoverURL     string `json:"cover_url" db:"cover_image_url"`
	// RefreshTokenHash is a single slot: it holds the SHA-256 of the most
	// recently issued refresh token, so exactly one refresh token is live per
	// user. A login or refresh overwrites it and silently ends any previous
	// session.
	RefreshTokenHash string    `json:"-" db:"refresh_token_hash"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// PublicUser is the sanitized view of a user returned by the API.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	CoverURL  string    `json:"cover_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public strips credential fields from a user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ChannelProfile is the aggregated public view of a user's channel.
type ChannelProfile struct {
	PublicUser
	SubscriberCount   int64 `json:"subscriber_count"`
	SubscribedToCount int64 `json:"subscribed_to_count"`
	IsSubscribed      bool  `json:"is_subscribed"`
}

// Subscription links a subscriber to a channel (both users).
type Subscription struct {
	ID           string    `json:"id" db:"id"`
	SubscriberID string    `json:"subscriber_id" db:"subscriber_id"`
	ChannelID    string    `json:"channel_id" db:"channel_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
