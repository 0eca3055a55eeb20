package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/repository"
)

// memoryUserRepo is an in-memory UserRepository for service tests. Writes
// counts every mutating call so tests can assert "no store mutation".
type memoryUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	writes int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateUser
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	r.users[user.ID] = &clone
	r.writes++
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepo) UpdateProfile(ctx context.Context, id string, fullName, email *string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *email {
				return nil, repository.ErrDuplicateUser
			}
		}
		u.Email = *email
	}
	if fullName != nil {
		u.FullName = *fullName
	}
	u.UpdatedAt = time.Now()
	r.writes++

	clone := *u
	return &clone, nil
}

func (r *memoryUserRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	return r.setField(id, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (r *memoryUserRepo) UpdateRefreshTokenHash(ctx context.Context, id, tokenHash string) error {
	return r.setField(id, func(u *domain.User) { u.RefreshTokenHash = tokenHash })
}

func (r *memoryUserRepo) UpdateAvatarURL(ctx context.Context, id, url string) error {
	return r.setField(id, func(u *domain.User) { u.AvatarURL = url })
}

func (r *memoryUserRepo) UpdateCoverURL(ctx context.Context, id, url string) error {
	return r.setField(id, func(u *domain.User) { u.CoverURL = url })
}

func (r *memoryUserRepo) setField(id string, apply func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	apply(u)
	u.UpdatedAt = time.Now()
	r.writes++
	return nil
}

func (r *memoryUserRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *memoryUserRepo) stored(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	clone := *u
	return &clone
}

// fakeUploader records uploads and hands out deterministic URLs.
type fakeUploader struct {
	mu       sync.Mutex
	uploads  []string
	removed  []string
	failNext bool
}

func (f *fakeUploader) Upload(ctx context.Context, prefix, filename, contentType string, reader io.Reader, size int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext {
		f.failNext = false
		return "", fmt.Errorf("upload failed")
	}

	url := fmt.Sprintf("https://assets.test/%s/%d-%s", prefix, len(f.uploads), filename)
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeUploader) Remove(ctx context.Context, assetURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, assetURL)
	return nil
}

// memorySubscriptionRepo is an in-memory SubscriptionRepository.
type memorySubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]map[string]bool // subscriber -> channel set
}

func newMemorySubscriptionRepo() *memorySubscriptionRepo {
	return &memorySubscriptionRepo{subs: make(map[string]map[string]bool)}
}

func (r *memorySubscriptionRepo) Create(ctx context.Context, sub *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subs[sub.SubscriberID][sub.ChannelID] {
		return repository.ErrDuplicateSubscription
	}
	if r.subs[sub.SubscriberID] == nil {
		r.subs[sub.SubscriberID] = make(map[string]bool)
	}
	r.subs[sub.SubscriberID][sub.ChannelID] = true
	return nil
}

func (r *memorySubscriptionRepo) Delete(ctx context.Context, subscriberID, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.subs[subscriberID][channelID] {
		return repository.ErrNotFound
	}
	delete(r.subs[subscriberID], channelID)
	return nil
}

func (r *memorySubscriptionRepo) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subs[subscriberID][channelID], nil
}

func (r *memorySubscriptionRepo) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, channels := range r.subs {
		if channels[channelID] {
			n++
		}
	}
	return n, nil
}

func (r *memorySubscriptionRepo) CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.subs[subscriberID])), nil
}

// memoryHistoryRepo is an in-memory HistoryRepository.
type memoryHistoryRepo struct {
	mu      sync.Mutex
	videos  map[string]*domain.Video
	watches map[string][]domain.WatchEntry // user -> entries, newest first
}

func newMemoryHistoryRepo() *memoryHistoryRepo {
	return &memoryHistoryRepo{
		videos:  make(map[string]*domain.Video),
		watches: make(map[string][]domain.WatchEntry),
	}
}

func (r *memoryHistoryRepo) addVideo(v *domain.Video) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	r.videos[v.ID] = v
}

func (r *memoryHistoryRepo) GetVideo(ctx context.Context, videoID string) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[videoID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *memoryHistoryRepo) RecordWatch(ctx context.Context, userID, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[videoID]
	if !ok {
		return repository.ErrNotFound
	}

	entries := r.watches[userID]
	filtered := entries[:0]
	for _, e := range entries {
		if e.Video.ID != videoID {
			filtered = append(filtered, e)
		}
	}

	entry := domain.WatchEntry{Video: *v, WatchedAt: time.Now()}
	r.watches[userID] = append([]domain.WatchEntry{entry}, filtered...)
	return nil
}

func (r *memoryHistoryRepo) ListHistory(ctx context.Context, userID string, limit, offset int) ([]domain.WatchEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.watches[userID]
	if offset >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]domain.WatchEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// imagePart builds a multipart.FileHeader the way gin would hand it to the
// service.
func imagePart(t interface{ Fatalf(string, ...any) }, field, filename string) *multipart.FileHeader {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	hdr.Set("Content-Type", "image/png")

	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("fake image bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}

	files := form.File[field]
	if len(files) == 0 {
		t.Fatalf("no file for field %s", field)
	}
	return files[0]
}
