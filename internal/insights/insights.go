// Package insights builds a health-pattern analysis of the record
// history via the Gemini generateContent REST API. The output is
// informational only and never a diagnosis; the prompt enforces that.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiRequest is the generateContent request body.
type GeminiRequest struct {
	Contents []Content `json:"contents"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

// GeminiResponse is the subset of the generateContent response we read.
type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client calls the Gemini API for insight generation.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

// NewClient returns a client for the given key and model. An empty key
// is allowed here; Generate reports it as an unconfigured error so
// callers surface a consistent code.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Generate builds the analysis prompt from the snapshot and returns the
// model's markdown response.
func (c *Client) Generate(ctx context.Context, snap *record.Snapshot) (string, error) {
	if c.apiKey == "" {
		return "", errors.NewUnconfigured("insights require a Gemini API key: set GEMINI_API_KEY or gemini_api_key in config.json")
	}

	body, err := json.Marshal(GeminiRequest{
		Contents: []Content{{Parts: []Part{{Text: BuildPrompt(snap)}}}},
	})
	if err != nil {
		return "", errors.NewInternal(err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("gemini request failed: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to read gemini response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.NewInternal(fmt.Errorf("gemini returned status %d", resp.StatusCode))
	}

	var parsed GeminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to parse gemini response: %w", err))
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.NewInternal(fmt.Errorf("gemini returned no candidates"))
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
