package acceptance

import (
	"net/http"

	"github.com/google/uuid"
)

func (s *Suite) TestChannelProfile() {
	channelID := s.registerUser("channel", "channel@example.com", "Password123")
	s.registerUser("viewer", "viewer@example.com", "Password123")
	viewerSession, _ := s.login("viewer", "Password123")

	resp := s.authedRequest("POST", "/api/v1/subscriptions/"+channelID, viewerSession.AccessToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	// Authenticated view personalizes is_subscribed.
	resp = s.authedRequest("GET", "/api/v1/users/c/channel", viewerSession.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var profile struct {
		Username          string `json:"username"`
		SubscriberCount   int64  `json:"subscriber_count"`
		SubscribedToCount int64  `json:"subscribed_to_count"`
		IsSubscribed      bool   `json:"is_subscribed"`
	}
	s.decodeEnvelope(resp.Body, &profile)
	s.Equal("channel", profile.Username)
	s.Equal(int64(1), profile.SubscriberCount)
	s.True(profile.IsSubscribed)

	// Anonymous view still works.
	anonResp, err := http.Get(s.BaseURL + "/api/v1/users/c/channel")
	s.Require().NoError(err)
	defer anonResp.Body.Close()
	s.Equal(http.StatusOK, anonResp.StatusCode)

	var anonProfile struct {
		IsSubscribed bool `json:"is_subscribed"`
	}
	s.decodeEnvelope(anonResp.Body, &anonProfile)
	s.False(anonProfile.IsSubscribed)
}

func (s *Suite) TestChannelProfile_NotFound() {
	resp, err := http.Get(s.BaseURL + "/api/v1/users/c/ghost")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestSubscribe_Duplicate() {
	channelID := s.registerUser("channel", "channel@example.com", "Password123")
	s.registerUser("viewer", "viewer@example.com", "Password123")
	session, _ := s.login("viewer", "Password123")

	resp := s.authedRequest("POST", "/api/v1/subscriptions/"+channelID, session.AccessToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp = s.authedRequest("POST", "/api/v1/subscriptions/"+channelID, session.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *Suite) TestSubscribe_Self() {
	channelID := s.registerUser("channel", "channel@example.com", "Password123")
	session, _ := s.login("channel", "Password123")

	resp := s.authedRequest("POST", "/api/v1/subscriptions/"+channelID, session.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestSubscribe_MalformedID() {
	s.registerUser("viewer", "viewer@example.com", "Password123")
	session, _ := s.login("viewer", "Password123")

	resp := s.authedRequest("POST", "/api/v1/subscriptions/abc", session.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestUnsubscribe() {
	channelID := s.registerUser("channel", "channel@example.com", "Password123")
	s.registerUser("viewer", "viewer@example.com", "Password123")
	session, _ := s.login("viewer", "Password123")

	resp := s.authedRequest("DELETE", "/api/v1/subscriptions/"+channelID, session.AccessToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode, "not subscribed yet")

	resp = s.authedRequest("POST", "/api/v1/subscriptions/"+channelID, session.AccessToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp = s.authedRequest("DELETE", "/api/v1/subscriptions/"+channelID, session.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) seedVideo(ownerID, title string) string {
	videoID := uuid.New().String()
	_, err := s.Postgres.DB.Exec(
		"INSERT INTO videos (id, owner_id, title, url) VALUES ($1, $2, $3, $4)",
		videoID, ownerID, title, "https://videos.example.com/"+videoID,
	)
	s.Require().NoError(err)
	return videoID
}

func (s *Suite) TestWatchHistory() {
	ownerID := s.registerUser("channel", "channel@example.com", "Password123")
	s.registerUser("viewer", "viewer@example.com", "Password123")
	session, _ := s.login("viewer", "Password123")

	first := s.seedVideo(ownerID, "first video")
	second := s.seedVideo(ownerID, "second video")

	resp := s.authedRequest("POST", "/api/v1/users/history/"+first, session.AccessToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.authedRequest("POST", "/api/v1/users/history/"+second, session.AccessToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.authedRequest("GET", "/api/v1/users/history", session.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var entries []struct {
		Video struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"video"`
		Owner struct {
			Username string `json:"username"`
		} `json:"owner"`
	}
	s.decodeEnvelope(resp.Body, &entries)
	s.Require().Len(entries, 2)
	s.Equal("second video", entries[0].Video.Title, "most recent first")
	s.Equal("channel", entries[0].Owner.Username)
}

func (s *Suite) TestWatchHistory_RewatchDedupes() {
	ownerID := s.registerUser("channel", "channel@example.com", "Password123")
	s.registerUser("viewer", "viewer@example.com", "Password123")
	session, _ := s.login("viewer", "Password123")

	videoID := s.seedVideo(ownerID, "rewatched")

	for i := 0; i < 3; i++ {
		resp := s.authedRequest("POST", "/api/v1/users/history/"+videoID, session.AccessToken, nil)
		resp.Body.Close()
		s.Equal(http.StatusOK, resp.StatusCode)
	}

	resp := s.authedRequest("GET", "/api/v1/users/history", session.AccessToken, nil)
	defer resp.Body.Close()

	var entries []struct {
		Video struct {
			ID string `json:"id"`
		} `json:"video"`
	}
	s.decodeEnvelope(resp.Body, &entries)
	s.Len(entries, 1)
}

func (s *Suite) TestRecordWatch_UnknownVideo() {
	s.registerUser("viewer", "viewer@example.com", "Password123")
	session, _ := s.login("viewer", "Password123")

	resp := s.authedRequest("POST", "/api/v1/users/history/"+uuid.New().String(), session.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}
