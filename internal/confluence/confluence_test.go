package confluence_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawitjan/Forte-hackathon/internal/confluence"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		name     string
		document string
		expected string
	}{
		{"top level heading", "# BRD: Loan Calculator\nbody", "BRD: Loan Calculator"},
		{"heading not on first line", "preamble\n# Real Title\nbody", "Real Title"},
		{"no heading uses fallback", "plain prose", "BRD - New Project"},
		{"second level heading is ignored", "## Not a title\ntext", "BRD - New Project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, confluence.PageTitle(tt.document, "BRD - New Project"))
		})
	}
}

func TestUnconfiguredClientFailsDescriptively(t *testing.T) {
	c := confluence.New("", "", "", "DS", testLogger())
	assert.False(t, c.Configured())

	_, err := c.ListPages(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")

	_, err = c.CreatePage(context.Background(), "T", "body", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestListPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/wiki/rest/api/content", r.URL.Path)
		assert.Equal(t, "DS", r.URL.Query().Get("spaceKey"))
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "analyst@forte.kz", user)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]string{
				{"id": "101", "title": "Projects"},
				{"id": "102", "title": "Archive"},
			},
		})
	}))
	defer srv.Close()

	c := confluence.New(srv.URL, "analyst@forte.kz", "token", "DS", testLogger())
	pages, err := c.ListPages(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, confluence.Page{ID: "101", Title: "Projects"}, pages[0])
}

func TestCreatePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "BRD: Transfers", payload["title"])
		assert.Contains(t, payload, "ancestors")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"_links": map[string]string{"webui": "/spaces/DS/pages/555"},
		})
	}))
	defer srv.Close()

	c := confluence.New(srv.URL, "analyst@forte.kz", "token", "DS", testLogger())
	link, err := c.CreatePage(context.Background(), "BRD: Transfers", "# BRD: Transfers\nbody", "101")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/wiki/spaces/DS/pages/555", link)
}

func TestCreatePageDuplicateTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message": "A page with this title already exists"}`)
	}))
	defer srv.Close()

	c := confluence.New(srv.URL, "analyst@forte.kz", "token", "DS", testLogger())
	_, err := c.CreatePage(context.Background(), "Dup", "body", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
