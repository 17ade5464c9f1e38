// Package confluence is a thin REST client for publishing generated
// documents as wiki pages. It does no document processing of its own.
package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var titlePattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// Page identifies one remote wiki page.
type Page struct {
	ID    string
	Title string
}

// Client talks to the Confluence Cloud REST API. A client without
// credentials is still constructible; its calls fail with a
// descriptive error instead of panicking.
type Client struct {
	baseURL    string
	user       string
	token      string
	space      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Confluence client. baseURL may omit the /wiki suffix.
func New(baseURL, user, token, space string, logger *slog.Logger) *Client {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/wiki") {
		baseURL = strings.TrimSuffix(baseURL, "/") + "/wiki"
	}
	return &Client{
		baseURL:    baseURL,
		user:       user,
		token:      token,
		space:      space,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Configured reports whether publishing credentials are present.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.user != "" && c.token != ""
}

// ListPages returns up to 20 pages of the configured space, newest
// first, for use as parent-page candidates.
func (c *Client) ListPages(ctx context.Context) ([]Page, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("confluence credentials not configured")
	}

	params := url.Values{}
	params.Set("spaceKey", c.space)
	params.Set("type", "page")
	params.Set("limit", "20")
	params.Set("orderby", "history.createdDate desc")

	apiURL := fmt.Sprintf("%s/rest/api/content?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.user, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: %s - %s", resp.Status, truncate(string(body), 200))
	}

	var listResp struct {
		Results []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	pages := make([]Page, len(listResp.Results))
	for i, r := range listResp.Results {
		pages[i] = Page{ID: r.ID, Title: r.Title}
	}
	return pages, nil
}

// CreatePage publishes a page under the configured space, optionally
// below a parent page, and returns its web link.
func (c *Client) CreatePage(ctx context.Context, title, body, parentID string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("confluence credentials not configured")
	}

	payload := map[string]interface{}{
		"title": title,
		"type":  "page",
		"space": map[string]string{"key": c.space},
		"body": map[string]interface{}{
			"storage": map[string]string{
				"value":          body,
				"representation": "storage",
			},
		},
	}
	if parentID != "" {
		payload["ancestors"] = []map[string]string{{"id": parentID}}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/rest/api/content", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.user, c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if strings.Contains(strings.ToLower(string(respBody)), "title already exists") {
			return "", fmt.Errorf("a page titled %q already exists, change the document title", title)
		}
		return "", fmt.Errorf("API error: %s - %s", resp.Status, truncate(string(respBody), 200))
	}

	var createResp struct {
		Links struct {
			WebUI string `json:"webui"`
		} `json:"_links"`
	}
	if err := json.Unmarshal(respBody, &createResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	link := c.baseURL + createResp.Links.WebUI
	c.logger.Info("published page", "title", title, "link", link)
	return link, nil
}

// PageTitle derives a wiki page title from a document's first
// top-level heading, falling back when there is none.
func PageTitle(document, fallback string) string {
	if m := titlePattern.FindStringSubmatch(document); m != nil {
		return strings.TrimSpace(m[1])
	}
	return fallback
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
