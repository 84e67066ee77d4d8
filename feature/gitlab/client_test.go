package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"repo-reconciler/core/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{BaseURL: srv.URL, Token: "glpat-test", Group: "acme/work", PerPage: 2}, srv.Client())
	return srv, client
}

func TestHarvest(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "glpat-test", r.Header.Get("PRIVATE-TOKEN"))

		switch r.URL.EscapedPath() {
		case "/api/v4/groups/acme%2Fwork":
			fmt.Fprint(w, `{"id": 4242, "full_path": "acme/work"}`)
		case "/api/v4/groups/4242/projects":
			assert.Equal(t, "true", r.URL.Query().Get("include_subgroups"))
			assert.Equal(t, "path", r.URL.Query().Get("order_by"))
			switch r.URL.Query().Get("page") {
			case "1":
				w.Header().Set("X-Next-Page", "2")
				fmt.Fprint(w, `[
					{"id": 1001, "name": "API", "path_with_namespace": "acme/work/api", "archived": false, "last_activity_at": "2024-03-01T00:00:00Z", "web_url": "https://gitlab.com/acme/work/api", "empty_repo": false, "visibility": "private"},
					{"id": 1002, "name": "old", "path_with_namespace": "acme/work/old", "archived": true, "last_activity_at": null, "web_url": "https://gitlab.com/acme/work/old", "empty_repo": true, "visibility": "internal"}
				]`)
			case "2":
				w.Header().Set("X-Next-Page", "")
				fmt.Fprint(w, `[{"id": 1003, "name": "docs", "path_with_namespace": "acme/work/docs", "archived": false}]`)
			default:
				t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
			}
		default:
			t.Errorf("unexpected path %q", r.URL.EscapedPath())
			w.WriteHeader(http.StatusTeapot)
		}
	})

	table, err := client.Harvest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Header, table.Header)
	require.Len(t, table.Records, 3)

	api := table.Records[0]
	assert.Equal(t, "API", api.Name())
	assert.Equal(t, "1001", api.Get(FieldID))
	assert.Equal(t, "false", api.Get("archived"))
	assert.Equal(t, "", api.Get(FieldRepositoryUpdated))

	old := table.Records[1]
	assert.True(t, old.Archived())
	assert.Equal(t, "true", old.Get(FieldEmptyRepo))
	assert.Equal(t, "", old.Get(FieldLastActivity))
}

func TestHarvest_Unauthorized(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Harvest(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestHarvest_GroupNotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Harvest(context.Background())
	assert.ErrorIs(t, err, ErrGroupNotFound)
	assert.ErrorContains(t, err, "acme/work")
}

func TestListProjects_StopsOnEmptyPage(t *testing.T) {
	calls := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("X-Next-Page", "99")
		fmt.Fprint(w, `[]`)
	})

	projects, err := client.ListProjects(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, projects)
	assert.Equal(t, 1, calls)
}

func TestLastRepositoryUpdate(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/api/v4/projects/1001/repository/commits":
			assert.Equal(t, "1", r.URL.Query().Get("per_page"))
			fmt.Fprint(w, `[{"id": "abc", "committed_date": "2024-06-01T12:30:00.000+02:00"}]`)
		case "/api/v4/projects/1002/repository/commits":
			fmt.Fprint(w, `[]`)
		case "/api/v4/projects/acme%2Fwork%2Fdocs/repository/commits":
			fmt.Fprint(w, `[{"committed_date": "2023-01-01T00:00:00Z"}]`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	ctx := context.Background()

	date, err := client.LastRepositoryUpdate(ctx, tabular.Record{"name": "api", FieldID: "1001"})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T12:30:00.000+02:00", date)

	_, err = client.LastRepositoryUpdate(ctx, tabular.Record{"name": "empty", FieldID: "1002"})
	assert.ErrorIs(t, err, ErrNoCommits)

	date, err = client.LastRepositoryUpdate(ctx, tabular.Record{"name": "docs", FieldPath: "acme/work/docs"})
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01T00:00:00Z", date)

	_, err = client.LastRepositoryUpdate(ctx, tabular.Record{"name": "broken", FieldID: "7"})
	assert.ErrorContains(t, err, "gitlab returned 500")

	_, err = client.LastRepositoryUpdate(ctx, tabular.Record{"name": "anonymous"})
	assert.Error(t, err)
}

func TestNeedsRepositoryUpdate(t *testing.T) {
	assert.True(t, NeedsRepositoryUpdate(tabular.Record{FieldID: "1"}))
	assert.True(t, NeedsRepositoryUpdate(tabular.Record{FieldPath: "a/b", FieldRepositoryUpdated: " "}))
	assert.False(t, NeedsRepositoryUpdate(tabular.Record{FieldID: "1", FieldRepositoryUpdated: "2024-01-01T00:00:00Z"}))
	assert.False(t, NeedsRepositoryUpdate(tabular.Record{FieldID: "1", FieldEmptyRepo: "True"}))
	assert.False(t, NeedsRepositoryUpdate(tabular.Record{"name": "no id"}))
}
