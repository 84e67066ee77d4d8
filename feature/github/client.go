package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"repo-reconciler/core/tabular"

	"golang.org/x/time/rate"
)

var (
	// ErrUnauthorized is returned for 401 responses.
	ErrUnauthorized = errors.New("github: unauthorized (token expired or missing repo scope)")
	// ErrOrgNotFound is returned when the organization does not exist or is not visible.
	ErrOrgNotFound = errors.New("github: organization not found")
)

// Columns maps GitHub repository attributes onto snapshot fields.
var Columns = []tabular.Column{
	{Field: "name"},
	{Field: "name_with_owner", Source: "full_name"},
	{Field: "archived"},
	{Field: "visibility"},
	{Field: "url", Source: "html_url"},
	{Field: "pushed_at"},
}

// Header is the snapshot header for GitHub inventories.
var Header = tabular.Header(Columns)

// Client talks to the GitHub REST API.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client. A nil httpClient uses a client with a 30s timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.PerPage <= 0 || cfg.PerPage > 100 {
		cfg.PerPage = 100
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// ListRepos returns every repository of the configured organization as raw JSON objects.
func (c *Client) ListRepos(ctx context.Context) ([]map[string]any, error) {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	next := fmt.Sprintf("%s/orgs/%s/repos?type=all&per_page=%d&page=1", base, url.PathEscape(c.cfg.Org), c.cfg.PerPage)

	var repos []map[string]any
	for next != "" {
		var page []map[string]any
		resp, err := c.get(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		repos = append(repos, page...)
		next = nextLink(resp.Header.Get("Link"))
	}
	return repos, nil
}

// Harvest lists repositories and flattens them into records.
func (c *Client) Harvest(ctx context.Context) (tabular.Table, error) {
	repos, err := c.ListRepos(ctx)
	if err != nil {
		return tabular.Table{}, err
	}
	records := make([]tabular.Record, len(repos))
	for i, r := range repos {
		records[i] = tabular.Project(r, Columns)
	}
	return tabular.Table{Header: Header, Records: records}, nil
}

func (c *Client) get(ctx context.Context, target string, out any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrOrgNotFound, c.cfg.Org)
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("github returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode github response: %w", err)
	}
	return resp, nil
}

// nextLink extracts the rel="next" URL from a Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		for _, attr := range segments[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}
