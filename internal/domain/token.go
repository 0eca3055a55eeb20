package domain

// AccessClaims are the identity claims embedded in an access token. Expiry is
// enforced during verification, so by the time claims reach a handler they are
// known to be current.
type AccessClaims struct {
	UserID   string `json:"sub"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Exp      int64  `json:"exp"`
	Iat      int64  `json:"iat"`
}

// TokenPair is an access/refresh token pair issued on login and on each
// rotation. Access tokens are stateless; the refresh token's hash is the only
// session state persisted on the user record.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
