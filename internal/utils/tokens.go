package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/domain"
)

// Token verification failure kinds. Expired is distinguishable from any other
// invalidity so callers can word their responses accordingly.
var (
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// TokenManager issues and verifies the access/refresh token pair. The two
// token kinds are signed with distinct secrets and distinct expiries; both are
// self-contained HS256 JWTs. Refresh tokens additionally carry a jti so two
// rotations in the same second still produce different strings.
type TokenManager struct {
	accessSecret       []byte
	refreshSecret      []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewTokenManager creates a token manager.
func NewTokenManager(accessSecret, refreshSecret string, accessTokenExpiry, refreshTokenExpiry time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:       []byte(accessSecret),
		refreshSecret:      []byte(refreshSecret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

// GenerateAccessToken mints a short-lived token carrying the user's identity
// claims.
func (m *TokenManager) GenerateAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       user.ID,
		"email":     user.Email,
		"username":  user.Username,
		"full_name": user.FullName,
		"iat":       now.Unix(),
		"exp":       now.Add(m.accessTokenExpiry).Unix(),
	})

	tokenString, err := token.SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken mints a long-lived token carrying only the user id.
func (m *TokenManager) GenerateRefreshToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        userID,
		"token_type": "refresh",
		"jti":        uuid.New().String(),
		"iat":        now.Unix(),
		"exp":        now.Add(m.refreshTokenExpiry).Unix(),
	})

	tokenString, err := token.SignedString(m.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken verifies signature and expiry against the access secret
// and returns the identity claims.
func (m *TokenManager) ValidateAccessToken(tokenString string) (*domain.AccessClaims, error) {
	claims, err := m.parse(tokenString, m.accessSecret)
	if err != nil {
		return nil, err
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("missing sub claim: %w", ErrTokenInvalid)
	}
	email, _ := claims["email"].(string)
	username, _ := claims["username"].(string)
	fullName, _ := claims["full_name"].(string)
	exp, _ := claims["exp"].(float64)
	iat, _ := claims["iat"].(float64)

	return &domain.AccessClaims{
		UserID:   sub,
		Email:    email,
		Username: username,
		FullName: fullName,
		Exp:      int64(exp),
		Iat:      int64(iat),
	}, nil
}

// ValidateRefreshToken verifies signature and expiry against the refresh
// secret and returns the user id. Signature validity alone does not make the
// token usable; the caller still compares it against the persisted slot.
func (m *TokenManager) ValidateRefreshToken(tokenString string) (string, error) {
	claims, err := m.parse(tokenString, m.refreshSecret)
	if err != nil {
		return "", err
	}

	if claims["token_type"] != "refresh" {
		return "", fmt.Errorf("wrong token type: %w", ErrTokenInvalid)
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("missing sub claim: %w", ErrTokenInvalid)
	}

	return sub, nil
}

// AccessTokenExpirySeconds returns the access token lifetime in seconds, for
// cookie Max-Age.
func (m *TokenManager) AccessTokenExpirySeconds() int {
	return int(m.accessTokenExpiry.Seconds())
}

// RefreshTokenExpirySeconds returns the refresh token lifetime in seconds.
func (m *TokenManager) RefreshTokenExpirySeconds() int {
	return int(m.refreshTokenExpiry.Seconds())
}

func (m *TokenManager) parse(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
