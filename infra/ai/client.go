// Package ai ranks hospital candidates through a chat-completion endpoint.
// The model receives the serialized candidate list plus the medical context
// and returns a structured array of hospitals with refined capacity
// estimates and suitability scores.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/swiftresponder/swiftresponder/infra/logger"
)

// Config holds the completion API settings.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	APIKey   string        `json:"api_key" yaml:"api_key"`
	Model    string        `json:"model" yaml:"model"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// SetDefaults fills zero values with sane defaults.
func (c *Config) SetDefaults() {
	if c.Model == "" {
		c.Model = "gemini-2.0-flash"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Suggestion is one ranked hospital returned by the model.
type Suggestion struct {
	Name                     string  `json:"name"`
	Address                  string  `json:"address"`
	AvailableBeds            int     `json:"availableBeds"`
	AvailableICUs            int     `json:"availableICUs"`
	AvailableNICUs           int     `json:"availableNICUs"`
	AvailableOxygenCylinders int     `json:"availableOxygenCylinders"`
	AvailableVentilators     int     `json:"availableVentilators"`
	AvailableDoctors         int     `json:"availableDoctors"`
	SuitabilityScore         float64 `json:"suitabilityScore"`
	Reason                   string  `json:"reason"`
}

// Client talks to a chat-completion API.
type Client struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
}

// NewClient creates a completion client. The endpoint and API key must be
// set for Complete to succeed.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.New("ai-client"),
	}
}

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
	} `json:"error"`
}

// Complete sends a single-user-message prompt and returns the raw model
// output.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Endpoint == "" || c.cfg.APIKey == "" {
		return "", fmt.Errorf("ai: endpoint or api key not configured")
	}
	body, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai: unexpected status %d", resp.StatusCode)
	}
	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("ai: decode response: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("ai: completion error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("ai: empty completion")
	}
	return cr.Choices[0].Message.Content, nil
}

// ParseSuggestions extracts the structured hospital array from a model
// reply, tolerating markdown code fences around the JSON.
func ParseSuggestions(raw string) ([]Suggestion, error) {
	trimmed := strings.TrimSpace(raw)
	if start := strings.Index(trimmed, "["); start >= 0 {
		if end := strings.LastIndex(trimmed, "]"); end > start {
			trimmed = trimmed[start : end+1]
		}
	}
	var out []Suggestion
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, fmt.Errorf("ai: parse suggestions: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("ai: model returned no hospitals")
	}
	return out, nil
}
