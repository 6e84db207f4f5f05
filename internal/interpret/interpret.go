// Package interpret asks an OpenAI-compatible chat endpoint to reduce a
// free-text action into the four labeled lines the normalizer reads.
package interpret

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/neurorouter"
)

// Config holds parameters for the interpretation oracle.
type Config struct {
	APIURL    string        `mapstructure:"api_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ErrNotConfigured is returned when no API URL is set.
var ErrNotConfigured = errors.New("interpretation oracle not configured")

const promptTemplate = `Analyze the following action and provide a structured response:
Action: %s

You must respond using EXACTLY this format, replacing the text in brackets with your analysis:
Agent Type: [type of agent that would perform this action]
Capability: [main capability required for this action]
Tool: [specific tool or software used for this action]
Risk Level: [Low, Medium, or High]

Consider carefully the ethical and legal implications of the action when assigning the Risk Level.

Do not include any other text or explanation in your response. Only provide the four lines above with your analysis.

Your response:`

// Prompt renders the interpretation prompt for one action.
func Prompt(action string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(action))
}

// Oracle turns raw action text into interpretation text.
type Oracle interface {
	Interpret(ctx context.Context, action string) (string, error)
}

// Client is the HTTP Oracle.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a Client. Zero MaxTokens and Timeout take defaults.
func New(cfg Config) *Client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 150
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Interpret sends the prompt and returns the model's reply text.
// HTTP 429 is reported as neurorouter.ErrRateLimited.
func (c *Client) Interpret(ctx context.Context, action string) (string, error) {
	if c.cfg.APIURL == "" {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(action) == "" {
		return "", fmt.Errorf("empty action text")
	}

	body, _ := json.Marshal(map[string]interface{}{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": Prompt(action)},
		},
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": 0,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("interpret request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: %s", neurorouter.ErrRateLimited, truncate(strings.TrimSpace(string(respBody)), 200))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("interpret HTTP %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(respBody)), 200))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || len(result.Choices) == 0 {
		return "", fmt.Errorf("empty interpret response")
	}

	return stripFences(result.Choices[0].Message.Content), nil
}

// stripFences drops markdown fences some models wrap around the reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
