package acceptance

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strings"
)

func (s *Suite) TestRegister_Success() {
	userID := s.registerUser("alice", "alice@example.com", "Password123")
	s.NotEmpty(userID)
}

func (s *Suite) TestRegister_DuplicateUsername() {
	s.registerUser("alice", "alice@example.com", "Password123")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	s.Require().NoError(w.WriteField("fullName", "Other Alice"))
	s.Require().NoError(w.WriteField("email", "other@example.com"))
	s.Require().NoError(w.WriteField("username", "alice"))
	s.Require().NoError(w.WriteField("password", "Password123"))
	part, err := w.CreateFormFile("avatar", "avatar.png")
	s.Require().NoError(err)
	_, _ = part.Write([]byte("fake image bytes"))
	s.Require().NoError(w.Close())

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/register", w.FormDataContentType(), &body)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)
	envelope := s.decodeEnvelope(resp.Body, nil)
	s.False(envelope.Success)
}

func (s *Suite) TestRegister_MissingAvatar() {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	s.Require().NoError(w.WriteField("fullName", "Alice"))
	s.Require().NoError(w.WriteField("email", "alice@example.com"))
	s.Require().NoError(w.WriteField("username", "alice"))
	s.Require().NoError(w.WriteField("password", "Password123"))
	s.Require().NoError(w.Close())

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/register", w.FormDataContentType(), &body)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.registerUser("alice", "alice@example.com", "Password123")

	session, cookies := s.login("alice", "Password123")

	s.NotEmpty(session.AccessToken)
	s.NotEmpty(session.RefreshToken)
	s.Equal("alice", session.User.Username)
	s.NotEmpty(session.User.AvatarURL)

	names := make(map[string]bool)
	for _, c := range cookies {
		names[c.Name] = true
	}
	s.True(names["access_token"], "access token cookie should be set")
	s.True(names["refresh_token"], "refresh token cookie should be set")
}

func (s *Suite) TestLogin_WrongPassword() {
	s.registerUser("alice", "alice@example.com", "Password123")

	body := strings.NewReader(`{"username":"alice","password":"WrongPassword1"}`)
	resp, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", body)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogin_UnknownUser() {
	body := strings.NewReader(`{"username":"ghost","password":"Password123"}`)
	resp, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", body)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestRefresh_RotationAndReplay() {
	s.registerUser("alice", "alice@example.com", "Password123")
	session, _ := s.login("alice", "Password123")

	resp := s.refreshWith(session.RefreshToken)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var rotated sessionPayload
	s.decodeEnvelope(resp.Body, &rotated)
	s.NotEqual(session.RefreshToken, rotated.RefreshToken)

	// The superseded token must be rejected.
	replay := s.refreshWith(session.RefreshToken)
	defer replay.Body.Close()
	s.Equal(http.StatusUnauthorized, replay.StatusCode)

	// The rotated token keeps working.
	again := s.refreshWith(rotated.RefreshToken)
	defer again.Body.Close()
	s.Equal(http.StatusOK, again.StatusCode)
}

func (s *Suite) TestRefresh_FromCookie() {
	s.registerUser("alice", "alice@example.com", "Password123")
	_, cookies := s.login("alice", "Password123")

	req, err := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	s.Require().NoError(err)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestRefresh_NoToken() {
	resp, err := http.Post(s.BaseURL+"/api/v1/auth/refresh", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogout() {
	s.registerUser("alice", "alice@example.com", "Password123")
	session, _ := s.login("alice", "Password123")

	resp := s.authedRequest("POST", "/api/v1/auth/logout", session.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// The persisted refresh token is gone.
	refresh := s.refreshWith(session.RefreshToken)
	defer refresh.Body.Close()
	s.Equal(http.StatusUnauthorized, refresh.StatusCode)
}

func (s *Suite) TestLogout_NoToken() {
	resp, err := http.Post(s.BaseURL+"/api/v1/auth/logout", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestChangePassword() {
	s.registerUser("alice", "alice@example.com", "Password123")
	session, _ := s.login("alice", "Password123")

	body := strings.NewReader(`{"old_password":"Password123","new_password":"NewPassword123"}`)
	resp := s.authedRequest("POST", "/api/v1/users/password", session.AccessToken, body)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// Old credentials and old refresh token are both dead.
	loginBody := strings.NewReader(`{"username":"alice","password":"Password123"}`)
	oldLogin, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", loginBody)
	s.Require().NoError(err)
	defer oldLogin.Body.Close()
	s.Equal(http.StatusUnauthorized, oldLogin.StatusCode)

	refresh := s.refreshWith(session.RefreshToken)
	defer refresh.Body.Close()
	s.Equal(http.StatusUnauthorized, refresh.StatusCode)

	s.login("alice", "NewPassword123")
}

func (s *Suite) TestGetMe() {
	s.registerUser("alice", "alice@example.com", "Password123")
	session, _ := s.login("alice", "Password123")

	resp := s.authedRequest("GET", "/api/v1/users/me", session.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var user struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	s.decodeEnvelope(resp.Body, &user)
	s.Equal("alice", user.Username)
	s.Equal("alice@example.com", user.Email)
}

func (s *Suite) TestGetMe_NoToken() {
	resp, err := http.Get(s.BaseURL + "/api/v1/users/me")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestUpdateProfile() {
	s.registerUser("alice", "alice@example.com", "Password123")
	session, _ := s.login("alice", "Password123")

	body := strings.NewReader(`{"full_name":"Alice Renamed"}`)
	resp := s.authedRequest("PATCH", "/api/v1/users/me", session.AccessToken, body)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var user struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
	s.decodeEnvelope(resp.Body, &user)
	s.Equal("Alice Renamed", user.FullName)
	s.Equal("alice@example.com", user.Email)
}
