package meetingbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the meeting-bot vendor API (MeetingBaas-compatible).
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

type CreateBotRequest struct {
	MeetingURL    string              `json:"meeting_url"`
	WebhookURL    string              `json:"webhook_url"`
	BotName       string              `json:"bot_name"`
	Reserved      bool                `json:"reserved"`
	RecordingMode string              `json:"recording_mode"`
	EntryMessage  string              `json:"entry_message"`
	SpeechToText  SpeechToTextConfig  `json:"speech_to_text"`
	AutoLeave     AutomaticLeaveRules `json:"automatic_leave"`
}

type SpeechToTextConfig struct {
	Provider string `json:"provider"`
}

type AutomaticLeaveRules struct {
	WaitingRoomTimeout int `json:"waiting_room_timeout"`
}

type CreateBotResponse struct {
	BotId string `json:"bot_id"`
}

// CreateBot asks the vendor to join a meeting and report back on webhookURL.
func (c *Client) CreateBot(ctx context.Context, meetingURL, meetingName, webhookURL string) (*CreateBotResponse, error) {
	payload := CreateBotRequest{
		MeetingURL:    meetingURL,
		WebhookURL:    webhookURL,
		BotName:       "UserLens Notetaker",
		Reserved:      false,
		RecordingMode: "speaker_view",
		EntryMessage:  "Hi, I'm here to take notes for " + meetingName,
		SpeechToText:  SpeechToTextConfig{Provider: "Default"},
		AutoLeave:     AutomaticLeaveRules{WaitingRoomTimeout: 600},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bots", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-meeting-baas-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meeting bot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("meeting bot API returned status %d", resp.StatusCode)
	}

	var out CreateBotResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode meeting bot response: %w", err)
	}
	if out.BotId == "" {
		return nil, fmt.Errorf("meeting bot API returned no bot id")
	}
	return &out, nil
}
