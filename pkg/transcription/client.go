package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client wraps the external processing service: file transcription,
// bot recording transcription, question generation and chat answers.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		// Transcription jobs run for minutes on long recordings.
		httpc: &http.Client{Timeout: 15 * time.Minute},
	}
}

type ProcessFileRequest struct {
	URL              string `json:"url"`
	TranscribeMethod string `json:"transcribe_method"`
	TranscribeLang   string `json:"transcribe_lang"`
}

type ProcessFileResponse struct {
	Transcript string `json:"transcript"`
}

// ProcessFile sends a stored file for text extraction / transcription.
func (c *Client) ProcessFile(ctx context.Context, req ProcessFileRequest) (*ProcessFileResponse, error) {
	var out ProcessFileResponse
	if err := c.post(ctx, "/process-file/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ProcessBotFileRequest struct {
	BotURL                  string `json:"bot_url"`
	S3FilePath              string `json:"s3_file_path"`
	TranscribeMethod        string `json:"transcribe_method"`
	TranscribeLang          string `json:"transcribe_lang"`
	TranscribeSpeakerNumber int    `json:"transcribe_speaker_number"`
}

type ProcessBotFileResponse struct {
	Transcript string   `json:"transcript"`
	Questions  []string `json:"questions"`
}

// ProcessBotFile transcribes a bot recording already mirrored into storage.
func (c *Client) ProcessBotFile(ctx context.Context, req ProcessBotFileRequest) (*ProcessBotFileResponse, error) {
	var out ProcessBotFileResponse
	if err := c.post(ctx, "/process-bot-file/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type GenerateQuestionsRequest struct {
	Transcript string `json:"transcript"`
}

type GenerateQuestionsResponse struct {
	Questions []string `json:"questions"`
}

func (c *Client) GenerateQuestions(ctx context.Context, transcript string) ([]string, error) {
	var out GenerateQuestionsResponse
	err := c.post(ctx, "/generate-questions/", GenerateQuestionsRequest{Transcript: transcript}, &out)
	if err != nil {
		return nil, err
	}
	return out.Questions, nil
}

type AnswerQuestionsRequest struct {
	Transcript string   `json:"transcript"`
	Questions  []string `json:"questions"`
}

type AnswerQuestionsResponse struct {
	Answers map[string]string `json:"answers"`
}

// AnswerQuestions returns a question -> answer map grounded on the transcript.
func (c *Client) AnswerQuestions(ctx context.Context, transcript string, questions []string) (map[string]string, error) {
	var out AnswerQuestionsResponse
	err := c.post(ctx, "/answer-questions/", AnswerQuestionsRequest{Transcript: transcript, Questions: questions}, &out)
	if err != nil {
		return nil, err
	}
	return out.Answers, nil
}

type ChatRequest struct {
	SessionId string `json:"session_id"`
	Context   string `json:"context"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.post(ctx, "/chat/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("processing service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Relay the service's own error detail when present.
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var detail struct {
			Detail string `json:"detail"`
			Error  string `json:"error"`
		}
		_ = json.Unmarshal(data, &detail)
		msg := detail.Detail
		if msg == "" {
			msg = detail.Error
		}
		if msg == "" {
			msg = "unknown processing error"
		}
		return fmt.Errorf("processing service %s returned status %d: %s", path, resp.StatusCode, msg)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
