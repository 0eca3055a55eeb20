package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/vidstream/vidstream-api/internal/dto"
)

type sessionPayload struct {
	User struct {
		ID        string `json:"id"`
		FullName  string `json:"full_name"`
		Email     string `json:"email"`
		Username  string `json:"username"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Suite) decodeEnvelope(body io.Reader, data any) dto.Response {
	var resp dto.Response
	s.Require().NoError(json.NewDecoder(body).Decode(&resp))

	if data != nil {
		raw, err := json.Marshal(resp.Data)
		s.Require().NoError(err)
		s.Require().NoError(json.Unmarshal(raw, data))
	}

	return resp
}

// registerUser creates a user through the real multipart endpoint, avatar
// included, and returns the created user's id.
func (s *Suite) registerUser(username, email, password string) string {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	s.Require().NoError(w.WriteField("fullName", "Test "+username))
	s.Require().NoError(w.WriteField("email", email))
	s.Require().NoError(w.WriteField("username", username))
	s.Require().NoError(w.WriteField("password", password))

	part, err := w.CreateFormFile("avatar", "avatar.png")
	s.Require().NoError(err)
	_, err = part.Write([]byte("fake image bytes"))
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/register", w.FormDataContentType(), &body)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "registration should succeed")

	var user struct {
		ID string `json:"id"`
	}
	s.decodeEnvelope(resp.Body, &user)
	return user.ID
}

// login opens a session and returns the token payload plus the raw response
// cookies.
func (s *Suite) login(username, password string) (sessionPayload, []*http.Cookie) {
	body := strings.NewReader(`{"username":"` + username + `","password":"` + password + `"}`)

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", body)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode, "login should succeed")

	var session sessionPayload
	s.decodeEnvelope(resp.Body, &session)
	return session, resp.Cookies()
}

func (s *Suite) authedRequest(method, path, accessToken string, body io.Reader) *http.Response {
	req, err := http.NewRequest(method, s.BaseURL+path, body)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) refreshWith(token string) *http.Response {
	body := strings.NewReader(`{"refresh_token":"` + token + `"}`)
	resp, err := http.Post(s.BaseURL+"/api/v1/auth/refresh", "application/json", body)
	s.Require().NoError(err)
	return resp
}
