package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"repo-reconciler/core/tabular"
	"repo-reconciler/core/utils"

	"golang.org/x/time/rate"
)

var (
	// ErrUnauthorized is returned for 401 responses.
	ErrUnauthorized = errors.New("gitlab: unauthorized (401); the token likely expired or lacks the read_api scope")
	// ErrGroupNotFound is returned when the group path does not resolve.
	ErrGroupNotFound = errors.New("gitlab: group path not found (404)")
	// ErrNoCommits is returned when a project's repository has no commits.
	ErrNoCommits = errors.New("gitlab: repository has no commits")
)

// Field names specific to GitLab snapshots.
const (
	FieldID                = "id"
	FieldPath              = "path_with_namespace"
	FieldLastActivity      = "last_activity_at"
	FieldEmptyRepo         = "empty_repo"
	FieldRepositoryUpdated = "last_repository_updated_at"
)

// Columns maps GitLab project attributes onto snapshot fields.
var Columns = []tabular.Column{
	{Field: "name"},
	{Field: FieldID},
	{Field: FieldPath},
	{Field: "archived"},
	{Field: FieldLastActivity},
	{Field: "web_url"},
	{Field: FieldEmptyRepo},
	{Field: "visibility"},
	{Field: FieldRepositoryUpdated},
}

// Header is the snapshot header for GitLab inventories.
var Header = tabular.Header(Columns)

// Client talks to the GitLab REST API.
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

func (c *Client) api(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/api/v4" + path
}

// GroupID resolves the configured group path to its numeric ID.
func (c *Client) GroupID(ctx context.Context) (string, error) {
	var group map[string]any
	_, err := c.get(ctx, c.api("/groups/"+url.PathEscape(c.cfg.Group)), &group)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return "", fmt.Errorf("%w: check group %q and ensure the token can access it", ErrGroupNotFound, c.cfg.Group)
		}
		return "", err
	}
	id := utils.ToString(group["id"])
	if id == "" {
		return "", fmt.Errorf("gitlab: group %q response has no id", c.cfg.Group)
	}
	return id, nil
}

// ListProjects returns every project of the group, including subgroups, ordered by path.
func (c *Client) ListProjects(ctx context.Context, groupID string) ([]map[string]any, error) {
	var projects []map[string]any
	page := 1
	for {
		q := url.Values{}
		q.Set("include_subgroups", "true")
		q.Set("per_page", strconv.Itoa(c.cfg.PerPage))
		q.Set("page", strconv.Itoa(page))
		q.Set("order_by", "path")

		var batch []map[string]any
		resp, err := c.get(ctx, c.api("/groups/"+url.PathEscape(groupID)+"/projects?"+q.Encode()), &batch)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		projects = append(projects, batch...)

		next := strings.TrimSpace(resp.Header.Get("X-Next-Page"))
		if next == "" {
			break
		}
		page, err = strconv.Atoi(next)
		if err != nil {
			return nil, fmt.Errorf("gitlab: invalid X-Next-Page %q: %w", next, err)
		}
	}
	return projects, nil
}

// Harvest resolves the group and flattens all of its projects into records.
func (c *Client) Harvest(ctx context.Context) (tabular.Table, error) {
	groupID, err := c.GroupID(ctx)
	if err != nil {
		return tabular.Table{}, err
	}
	projects, err := c.ListProjects(ctx, groupID)
	if err != nil {
		return tabular.Table{}, err
	}
	records := make([]tabular.Record, len(projects))
	for i, p := range projects {
		records[i] = tabular.Project(p, Columns)
	}
	return tabular.Table{Header: Header, Records: records}, nil
}

// LastRepositoryUpdate returns the committed_date of the newest commit on the
// project's default branch. It is the enrichment fetch for last_repository_updated_at.
func (c *Client) LastRepositoryUpdate(ctx context.Context, rec tabular.Record) (string, error) {
	id := strings.TrimSpace(rec.Get(FieldID))
	if id == "" {
		id = strings.TrimSpace(rec.Get(FieldPath))
	}
	if id == "" {
		return "", fmt.Errorf("gitlab: project %q has neither id nor path", rec.Name())
	}

	var commits []map[string]any
	if _, err := c.get(ctx, c.api("/projects/"+url.PathEscape(id)+"/repository/commits?per_page=1"), &commits); err != nil {
		return "", err
	}
	if len(commits) == 0 {
		return "", ErrNoCommits
	}
	date := utils.ToString(commits[0]["committed_date"])
	if date == "" {
		return "", fmt.Errorf("gitlab: newest commit of %q has no committed_date", id)
	}
	return date, nil
}

// NeedsRepositoryUpdate reports whether a project record still lacks
// last_repository_updated_at and can be looked up. Empty repositories are skipped.
func NeedsRepositoryUpdate(rec tabular.Record) bool {
	if rec.Has(FieldRepositoryUpdated) {
		return false
	}
	if utils.ToBool(rec.Get(FieldEmptyRepo)) {
		return false
	}
	return rec.Has(FieldID) || rec.Has(FieldPath)
}

var errNotFound = errors.New("gitlab: not found")

func (c *Client) get(ctx context.Context, target string, out any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if c.cfg.Token != "" {
		req.Header.Set("PRIVATE-TOKEN", c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gitlab request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gitlab returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode gitlab response: %w", err)
	}
	return resp, nil
}
