package livesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mcdev12/partytrivia/internal/events"
)

// Client is the HTTP side of the sync loop: it polls read endpoints and
// pushes the participant's writes.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

// NewClient creates a client for the given server and session token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// SubmitOutcome is the server's answer to a vote submission.
type SubmitOutcome struct {
	Success   bool `json:"success"`
	Correct   bool `json:"correct"`
	Debounced bool `json:"debounced,omitempty"`
}

// FetchCurrentQuestion polls the shared play endpoint.
func (c *Client) FetchCurrentQuestion(ctx context.Context) (*events.CurrentQuestionResponse, error) {
	var resp events.CurrentQuestionResponse
	if err := c.do(ctx, http.MethodGet, "/api/play/question", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchTally polls the vote distribution for a question.
func (c *Client) FetchTally(ctx context.Context, questionID string) (*events.TallyResponse, error) {
	var resp events.TallyResponse
	if err := c.do(ctx, http.MethodGet, "/api/questions/"+questionID+"/votes", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitAnswer pushes a vote for the given option text.
func (c *Client) SubmitAnswer(ctx context.Context, questionID, optionText string) (*SubmitOutcome, error) {
	body := map[string]string{"option_text": optionText}
	var resp SubmitOutcome
	if err := c.do(ctx, http.MethodPost, "/api/questions/"+questionID+"/answer", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddCustomAnswer contributes a new option; the server also records the
// contributor's vote for it.
func (c *Client) AddCustomAnswer(ctx context.Context, questionID, text string) (*SubmitOutcome, error) {
	body := map[string]string{"text": text}
	var resp SubmitOutcome
	if err := c.do(ctx, http.MethodPost, "/api/questions/"+questionID+"/custom-answer", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Session-Token", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
