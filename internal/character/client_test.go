// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package character

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/rmctl/internal/metrics"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

// newAPI serves page1.json for the first page and page2.json for page=2,
// rewriting the placeholder links to point back at the test server.
func newAPI(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	page1 := readFixture(t, "page1.json")
	page2 := readFixture(t, "page2.json")

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		if r.URL.Path != "/api/character" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"There is nothing here"}`))
			return
		}
		if r.URL.Query().Get("name") == "nobody" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"There is nothing here"}`))
			return
		}
		body := page1
		if r.URL.Query().Get("page") == "2" {
			body = page2
		}
		body = strings.ReplaceAll(body, `"NEXT_URL"`, fmt.Sprintf("%q", srv.URL+"/api/character?page=2"))
		body = strings.ReplaceAll(body, `"PREV_URL"`, fmt.Sprintf("%q", srv.URL+"/api/character?page=1"))
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func TestClient_List(t *testing.T) {
	srv, _ := newAPI(t)
	c := New(WithBaseURL(srv.URL + "/api/"))

	page, err := c.List(context.Background(), Query{})
	require.NoError(t, err)

	assert.Equal(t, 3, page.Info.Count)
	assert.Equal(t, 2, page.Info.Pages)
	assert.Equal(t, srv.URL+"/api/character?page=2", page.Info.Next)
	require.Len(t, page.Results, 2)

	rick := page.Results[0]
	assert.Equal(t, 1, rick.ID)
	assert.Equal(t, "Rick Sanchez", rick.Name)
	assert.Equal(t, StatusAlive, rick.Status)
	assert.Equal(t, "Citadel of Ricks", rick.Location.Name)
	assert.Equal(t, "https://rickandmortyapi.com/api/character/avatar/1.jpeg", rick.Image)
	assert.Len(t, rick.Episode, 2)

	assert.Equal(t, "Morty Smith", gjson.GetBytes(page.Raw, "1.name").String())
}

func TestClient_ListAll(t *testing.T) {
	srv, _ := newAPI(t)
	m := metrics.New()
	c := New(WithBaseURL(srv.URL+"/api"), WithMetrics(m))

	chars, raw, err := c.ListAll(context.Background(), Query{}, 0)
	require.NoError(t, err)
	require.Len(t, chars, 3)
	assert.Equal(t, StatusDead, chars[2].Status)

	parsed := gjson.Parse(raw.String())
	require.True(t, parsed.IsArray())
	assert.Len(t, parsed.Array(), 3)
	assert.Equal(t, "Adjudicator Rick", parsed.Get("2.name").String())

	var requests float64
	for _, s := range m.Snapshot() {
		if s.Name == "rmctl_character_requests_total" && s.Labels == "status=200" {
			requests = s.Value
		}
	}
	assert.Equal(t, 2.0, requests)
}

func TestClient_ListAllMaxPages(t *testing.T) {
	srv, queries := newAPI(t)
	c := New(WithBaseURL(srv.URL + "/api"))

	chars, raw, err := c.ListAll(context.Background(), Query{}, 1)
	require.NoError(t, err)
	assert.Len(t, chars, 2)
	assert.Len(t, gjson.Parse(raw.String()).Array(), 2)
	assert.Len(t, *queries, 1)
}

func TestClient_QueryParams(t *testing.T) {
	srv, queries := newAPI(t)
	c := New(WithBaseURL(srv.URL + "/api"))

	_, err := c.List(context.Background(), Query{Name: "rick", Status: StatusAlive, Page: 1})
	require.NoError(t, err)
	require.Len(t, *queries, 1)
	assert.Equal(t, "name=rick&page=1&status=Alive", (*queries)[0])
}

func TestClient_APIError(t *testing.T) {
	srv, _ := newAPI(t)

	_, err := New(WithBaseURL(srv.URL+"/api")).List(context.Background(), Query{Name: "nobody"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "There is nothing here", apiErr.Message)
}

func TestClient_ListAllNotFound(t *testing.T) {
	srv, _ := newAPI(t)

	tests := []struct {
		name    string
		baseURL string
		query   Query
		wantErr bool
	}{
		{"filtered without matches", srv.URL + "/api", Query{Name: "nobody"}, false},
		{"filtered with page", srv.URL + "/api", Query{Name: "nobody", Page: 2}, false},
		{"unfiltered", srv.URL + "/wrong", Query{}, true},
		{"page only", srv.URL + "/wrong", Query{Page: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chars, raw, err := New(WithBaseURL(tt.baseURL)).ListAll(context.Background(), tt.query, 0)
			if tt.wantErr {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, chars)
			assert.Equal(t, "[]", raw.String())
		})
	}
}

func TestQuery_Filtered(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"zero", Query{}, false},
		{"page only", Query{Page: 2}, false},
		{"name", Query{Name: "rick"}, true},
		{"type", Query{Type: "Parasite"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Filtered())
		})
	}
}

func TestClient_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(srv.Close)

	_, err := New(WithBaseURL(srv.URL)).List(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestClient_InvalidBaseURL(t *testing.T) {
	_, err := New(WithBaseURL("not a url")).List(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestClient_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"info":{"count":0,"pages":0,"next":null,"prev":null},"results":[]}`))
	}))
	t.Cleanup(srv.Close)

	chars, raw, err := New(WithBaseURL(srv.URL)).ListAll(context.Background(), Query{}, 0)
	require.NoError(t, err)
	assert.Empty(t, chars)
	assert.Equal(t, "[]", raw.String())
}

func TestPaginate(t *testing.T) {
	pages := map[string][]int{"": {1, 2}, "p2": {3}, "p3": {4, 5}}
	links := map[string]string{"": "p2", "p2": "p3", "p3": ""}
	fetch := func(_ context.Context, next string) ([]int, string, error) {
		return pages[next], links[next], nil
	}

	all, err := Paginate(context.Background(), 0, fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, all)

	two, err := Paginate(context.Background(), 2, fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, two)
}

func TestPaginate_Loop(t *testing.T) {
	_, err := Paginate(context.Background(), 0, func(_ context.Context, next string) ([]int, string, error) {
		return []int{1}, "same", nil
	})
	assert.ErrorContains(t, err, "pagination loop")
}

func TestPaginate_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := Paginate(context.Background(), 0, func(_ context.Context, _ string) ([]int, string, error) {
		return nil, "", boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPaginate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Paginate(ctx, 0, func(_ context.Context, _ string) ([]int, string, error) {
		return []int{1}, "", nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
