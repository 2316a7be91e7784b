package aigen

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

	"eduonline/internal/metrics"
)

// DefaultModels is the fallback chain, best model first. Every request
// gets exactly one attempt per model, three attempts total.
var DefaultModels = []string{"gemini-2.0-flash-exp", "gemini-1.5-flash", "gemini-pro"}

var (
	// ErrUnauthorized aborts the chain immediately: retrying other models
	// with a bad key only burns quota.
	ErrUnauthorized = errors.New("aigen: API key rejected; check AI_API_KEY")

	// ErrAllModelsFailed is returned after the full chain is exhausted.
	ErrAllModelsFailed = errors.New("aigen: all models failed; switch model or check API key and quota")
)

// Client calls a Gemini-style generateContent REST API.
type Client struct {
	BaseURL string
	APIKey  string
	Models  []string
	HTTP    *http.Client
}

// New creates a client with the default fallback chain.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Models:  DefaultModels,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateContent runs the prompt through the fallback chain: rate limits
// and transport failures advance to the next model, auth failures abort.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", ErrUnauthorized
	}
	var lastErr error
	for _, model := range c.Models {
		text, err := c.generateOnce(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, ErrUnauthorized) || ctx.Err() != nil {
			return "", err
		}
		metrics.AIFallbacks.WithLabelValues(model).Inc()
		lastErr = err
	}
	return "", fmt.Errorf("%w (last: %v)", ErrAllModelsFailed, lastErr)
}

func (c *Client) generateOnce(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("aigen: %s returned %d: %s", model, resp.StatusCode, snippet)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("aigen: decode %s response: %w", model, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("aigen: %s returned no candidates", model)
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// EditCSV asks the model to apply an instruction to CSV data and strips
// any markdown fencing from the reply.
func (c *Client) EditCSV(ctx context.Context, csvData, instruction string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert CSV editor.
Here is a user list CSV:
%s

Apply this specific instruction to modify the CSV data: %q

Requirements:
1. Output ONLY the valid CSV data.
2. Do NOT add any markdown formatting.
3. Do NOT add explanations.
4. Maintain the same header structure.`, csvData, instruction)

	text, err := c.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}
	return StripFences(text), nil
}

// StripFences removes ```csv / ``` markers models sometimes add anyway.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```csv", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
