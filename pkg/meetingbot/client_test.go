package meetingbot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBot(t *testing.T) {
	var gotKey string
	var gotReq CreateBotRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bots", r.URL.Path)
		gotKey = r.Header.Get("x-meeting-baas-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"bot_id": "bot-123"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key")
	res, err := c.CreateBot(context.Background(),
		"https://meet.example.com/abc",
		"Weekly sync",
		"https://app.test/api/bot/webhook/aabbccddeeff00",
	)

	require.NoError(t, err)
	assert.Equal(t, "bot-123", res.BotId)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "https://meet.example.com/abc", gotReq.MeetingURL)
	assert.Equal(t, "https://app.test/api/bot/webhook/aabbccddeeff00", gotReq.WebhookURL)
	assert.Contains(t, gotReq.EntryMessage, "Weekly sync")
}

func TestCreateBotErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-key")
	_, err := c.CreateBot(context.Background(), "https://meet.example.com/abc", "Sync", "https://app.test/hook")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCreateBotRejectsEmptyBotId(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	_, err := c.CreateBot(context.Background(), "https://meet.example.com/abc", "Sync", "https://app.test/hook")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no bot id")
}
