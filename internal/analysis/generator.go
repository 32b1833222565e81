// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/litreview/pkg/types"
)

// Message is one turn of a generator conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator abstracts the text-generation capability so tests can supply
// a mock. When structured is true the caller expects a JSON object back
// and will validate that it parses into the expected schema; parse
// failure is a recoverable per-call error, not a crash.
type Generator interface {
	Complete(ctx context.Context, messages []Message, structured bool) (string, error)
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeGenerator calls the Claude Messages API.
type ClaudeGenerator struct {
	Model  string
	APIKey string
	Client *http.Client
}

// NewClaudeGenerator builds a generator from AI config.
func NewClaudeGenerator(cfg types.AIConfig, client *http.Client) *ClaudeGenerator {
	return &ClaudeGenerator{Model: cfg.Model, APIKey: cfg.APIKey, Client: client}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends the conversation to the Claude API and returns the text
// of the first text content block. The structured flag only affects
// max_tokens; schema validation is the caller's concern.
func (g *ClaudeGenerator) Complete(ctx context.Context, messages []Message, structured bool) (string, error) {
	maxTokens := 2000
	if structured {
		maxTokens = 1500
	}

	reqBody := claudeRequest{
		Model:     g.Model,
		MaxTokens: maxTokens,
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, claudeMessage{Role: m.Role, Content: m.Content})
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}
