package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the hosted headline API.
const DefaultBaseURL = "https://newsapi.org/v2"

// APIArticle is one article as the headline API delivers it.
type APIArticle struct {
	Source      SourceRef `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
}

// SourceRef is the publisher block inside an API article.
type SourceRef struct {
	Name string `json:"name"`
}

type headlinesResponse struct {
	Status   string       `json:"status"`
	Message  string       `json:"message"`
	Articles []APIArticle `json:"articles"`
}

// Client fetches English top headlines from the news API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// TopHeadlines fetches up to pageSize current English headlines.
func (c *Client) TopHeadlines(ctx context.Context, pageSize int) ([]APIArticle, error) {
	params := url.Values{}
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET",
		c.baseURL+"/top-headlines?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch headlines: %w", err)
	}
	defer resp.Body.Close()

	var body headlinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode headline response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return nil, fmt.Errorf("headline API error (HTTP %d): %s", resp.StatusCode, body.Message)
	}
	return body.Articles, nil
}
