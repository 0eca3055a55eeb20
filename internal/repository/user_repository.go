package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/pkg/database"
)

const userColumns = `id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token_hash, created_at, updated_at`

// userRepository implements UserRepository on Postgres.
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. Username and email uniqueness is enforced by the
// database; a violation surfaces as ErrDuplicateUser.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.AvatarURL,
		nullableString(user.CoverURL),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s/%s: %w", user.Username, user.Email, ErrDuplicateUser)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by id.
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, id), "id", id)
}

// GetByUsername retrieves a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, username), "username", username)
}

// GetByUsernameOrEmail retrieves a user matching either identifier.
func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 OR email = $2`, userColumns)
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, username, email), "identifier", username+"/"+email)
}

// UpdateProfile updates full name and/or email, leaving nil fields untouched,
// and returns the updated record.
func (r *userRepository) UpdateProfile(ctx context.Context, id string, fullName, email *string) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET full_name = COALESCE($2, full_name),
		    email = COALESCE($3, email),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, userColumns)

	user, err := r.scanOne(r.db.DB.QueryRowContext(ctx, query, id, fullName, email), "id", id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email taken: %w", ErrDuplicateUser)
		}
		return nil, err
	}

	return user, nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *userRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	return r.updateColumn(ctx, id, "password_hash", passwordHash)
}

// UpdateRefreshTokenHash overwrites the refresh-token slot. The overwrite is
// last-write-wins: a concurrent login and refresh for the same user race, and
// whichever commit lands second defines the one live session.
func (r *userRepository) UpdateRefreshTokenHash(ctx context.Context, id, tokenHash string) error {
	query := `
		UPDATE users
		SET refresh_token_hash = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, id, nullableString(tokenHash))
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}

	return requireRow(result, id)
}

// UpdateAvatarURL replaces the avatar asset reference.
func (r *userRepository) UpdateAvatarURL(ctx context.Context, id, url string) error {
	return r.updateColumn(ctx, id, "avatar_url", url)
}

// UpdateCoverURL replaces the cover image asset reference.
func (r *userRepository) UpdateCoverURL(ctx context.Context, id, url string) error {
	return r.updateColumn(ctx, id, "cover_image_url", url)
}

func (r *userRepository) updateColumn(ctx context.Context, id, column, value string) error {
	query := fmt.Sprintf(`UPDATE users SET %s = $2, updated_at = NOW() WHERE id = $1`, column)

	result, err := r.db.DB.ExecContext(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}

	return requireRow(result, id)
}

func (r *userRepository) scanOne(row *sql.Row, field, value string) (*domain.User, error) {
	user := &domain.User{}
	var coverURL, refreshTokenHash sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.AvatarURL,
		&coverURL,
		&refreshTokenHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with %s %s not found: %w", field, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", field, err)
	}

	user.CoverURL = coverURL.String
	user.RefreshTokenHash = refreshTokenHash.String

	return user, nil
}

func requireRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
