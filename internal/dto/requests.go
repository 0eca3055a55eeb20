package dto

import "github.com/vidstream/vidstream-api/internal/domain"

// RegisterForm carries the multipart registration fields; avatar and cover
// files arrive separately as file parts.
type RegisterForm struct {
	FullName string `form:"fullName" binding:"required"`
	Email    string `form:"email" binding:"required"`
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// LoginRequest identifies the user by username or email; either is enough.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the JSON fallback for clients that do not send the
// refresh cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest carries a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfileRequest carries a partial profile update. Nil fields are left
// untouched; the password is never updated through this request, so no
// re-hash happens here.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

// SessionData is the login/refresh response payload.
type SessionData struct {
	User         domain.PublicUser `json:"user"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
}
