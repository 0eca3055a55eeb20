package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/vidstream/vidstream-api/internal/domain"
)

// Cookie names are identical on set and clear. The original system cleared
// different names than it set; one convention is used throughout here.
const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

// SessionCookies issues both token cookies, httpOnly and secure.
type SessionCookies struct {
	accessMaxAge  int
	refreshMaxAge int
}

func NewSessionCookies(accessMaxAge, refreshMaxAge int) *SessionCookies {
	return &SessionCookies{
		accessMaxAge:  accessMaxAge,
		refreshMaxAge: refreshMaxAge,
	}
}

func (sc *SessionCookies) set(c *gin.Context, tokens domain.TokenPair) {
	c.SetCookie(accessTokenCookie, tokens.AccessToken, sc.accessMaxAge, "/", "", true, true)
	c.SetCookie(refreshTokenCookie, tokens.RefreshToken, sc.refreshMaxAge, "/", "", true, true)
}

func (sc *SessionCookies) clear(c *gin.Context) {
	c.SetCookie(accessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", true, true)
}
