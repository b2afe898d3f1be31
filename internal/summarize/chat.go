package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/loorthu/dna/internal/config"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	requestTimeout = 2 * time.Minute
)

// chatClient is an OpenAI-compatible chat-completions client. It covers
// OpenAI itself and self-hosted endpoints (Ollama and friends) via base_url.
type chatClient struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	prompt  string
	client  *http.Client
}

func newChatClient(name string, p config.Provider, prompt string) *chatClient {
	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &chatClient{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  p.APIKey,
		model:   p.Model,
		prompt:  prompt,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (c *chatClient) Name() string { return c.name }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Summarize sends the conversation to the chat completions endpoint and
// returns the model's reply.
func (c *chatClient) Summarize(ctx context.Context, conversation string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: c.prompt + "\n\n" + conversation},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%s returned status %d: %s", c.name, resp.StatusCode, truncate(string(body), 200))
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%s API error: %s", c.name, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned status %d: %s", c.name, resp.StatusCode, truncate(string(body), 200))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.name)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
