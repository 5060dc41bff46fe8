// Package inference talks to the external model inference service that
// hosts the embedding, sentiment, NER and token-analysis models. The models
// are expensive singletons living in that service; this client is cheap,
// reusable and safe for concurrent use.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the model inference service over HTTP.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient creates a reusable HTTP client with a bounded request timeout.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// SentimentResponse is the raw classifier output: one label with the
// model's confidence in [0,1].
type SentimentResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// EntityMention is one raw NER hit before category mapping.
type EntityMention struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Token is a lemmatized token with its part-of-speech tag.
type Token struct {
	Lemma string `json:"lemma"`
	POS   string `json:"pos"`
}

// Embed returns one embedding vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var resp struct {
		Vectors [][]float64 `json:"vectors"`
	}
	if err := c.post(ctx, "/embed", map[string]any{"texts": texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Vectors) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d texts", len(resp.Vectors), len(texts))
	}
	return resp.Vectors, nil
}

// Sentiment classifies the polarity of one document.
func (c *Client) Sentiment(ctx context.Context, text string) (SentimentResponse, error) {
	var resp SentimentResponse
	if err := c.post(ctx, "/sentiment", map[string]any{"text": text}, &resp); err != nil {
		return SentimentResponse{}, err
	}
	return resp, nil
}

// Entities runs named-entity recognition over one document.
func (c *Client) Entities(ctx context.Context, text string) ([]EntityMention, error) {
	var resp struct {
		Entities []EntityMention `json:"entities"`
	}
	if err := c.post(ctx, "/entities", map[string]any{"text": text}, &resp); err != nil {
		return nil, err
	}
	return resp.Entities, nil
}

// Tokens returns lemma and part-of-speech per token for one document.
func (c *Client) Tokens(ctx context.Context, text string) ([]Token, error) {
	var resp struct {
		Tokens []Token `json:"tokens"`
	}
	if err := c.post(ctx, "/tokens", map[string]any{"text": text}, &resp); err != nil {
		return nil, err
	}
	return resp.Tokens, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
