// Package observe generates the short technical observation attached to a
// diagnosis by asking an OpenAI-compatible chat completions endpoint.
package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	sharedErrors "github.com/leadscope/sitediag/internal/shared/errors"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
	defaultTimeout = 20 * time.Second
)

// Input carries the diagnosis fields the observation is written from.
type Input struct {
	Tech       string
	ErrorCount int
	LoadTime   string
}

// Observer produces a short written assessment of a diagnosed site.
type Observer interface {
	Observe(ctx context.Context, in Input) (string, error)
}

// Config holds the chat completions client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type chatObserver struct {
	cfg    Config
	client *http.Client
}

// New returns an Observer backed by a chat completions API. An empty API key
// yields a disabled observer whose Observe always fails with
// ErrObserverDisabled.
func New(cfg Config) Observer {
	if cfg.APIKey == "" {
		return disabledObserver{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &chatObserver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type disabledObserver struct{}

func (disabledObserver) Observe(context.Context, Input) (string, error) {
	return "", sharedErrors.ErrObserverDisabled
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (o *chatObserver) Observe(ctx context.Context, in Input) (string, error) {
	prompt := fmt.Sprintf(
		"You are a Senior Technical Architect. Based on this website data, "+
			"write a 2-sentence clinical observation about technical risk.\n"+
			"Technology: %s\nConsole errors: %d\nLoad time: %s",
		in.Tech, in.ErrorCount, in.LoadTime,
	)

	body, err := json.Marshal(chatRequest{
		Model:       o.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode observation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build observation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("observation request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read observation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("observation API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse observation response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("observation API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("observation API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
