package domain

import "time"

// Video is the minimal video record watch history refers to.
type Video struct {
	ID           string    `json:"id" db:"id"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	Title        string    `json:"title" db:"title"`
	URL          string    `json:"url" db:"url"`
	ThumbnailURL string    `json:"thumbnail_url" db:"thumbnail_url"`
	Duration     int64     `json:"duration_seconds" db:"duration_seconds"`
	Views        int64     `json:"views" db:"views"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// WatchEntry is one watch-history item joined with its video and the video
// owner's public summary.
type WatchEntry struct {
	Video     Video      `json:"video"`
	Owner     PublicUser `json:"owner"`
	WatchedAt time.Time  `json:"watched_at"`
}
