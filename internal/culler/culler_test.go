package culler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/nikbrunner/bmr/internal/model"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckURLs(t *testing.T) {
	srv := newServer(t)
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	nodes := []model.Node{
		{ID: "10", Title: "OK", URL: srv.URL + "/ok"},
		{ID: "11", Title: "Missing", URL: srv.URL + "/missing"},
		{ID: "12", Title: "Gone", URL: srv.URL + "/gone"},
		{ID: "13", Title: "Broken", URL: srv.URL + "/broken"},
		{ID: "14", Title: "Redirect", URL: srv.URL + "/redirect"},
		{ID: "15", Title: "Down", URL: closedURL + "/ok"},
	}

	var calls atomic.Int32
	results := CheckURLs(context.Background(), nodes, Options{
		Concurrency: 3,
		OnProgress:  func(completed, total int) { calls.Add(1) },
	})

	want := []Status{Healthy, Dead, Dead, Unreachable, Healthy, Unreachable}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, r := range results {
		if r.Node.ID != nodes[i].ID {
			t.Errorf("result %d: expected node %s, got %s", i, nodes[i].ID, r.Node.ID)
		}
		if r.Status != want[i] {
			t.Errorf("%s: expected %s, got %s (%s)", r.Node.Title, want[i], r.Status, r.Error)
		}
	}
	if results[3].Error != "Internal Server Error" {
		t.Errorf("expected status text for 500, got %q", results[3].Error)
	}
	if int(calls.Load()) != len(nodes) {
		t.Errorf("expected %d progress calls, got %d", len(nodes), calls.Load())
	}
}

func TestCheckURLs_ExcludedDomain(t *testing.T) {
	srv := newServer(t)
	nodes := []model.Node{{ID: "10", Title: "Private", URL: srv.URL + "/missing"}}

	results := CheckURLs(context.Background(), nodes, Options{ExcludeDomains: []string{"127.0.0.1"}})

	if results[0].Status != Unreachable {
		t.Errorf("expected excluded 404 to be unreachable, got %s", results[0].Status)
	}
}

func TestCheckURLs_Empty(t *testing.T) {
	if results := CheckURLs(context.Background(), nil, Options{}); results != nil {
		t.Errorf("expected nil, got %v", results)
	}
}

func TestIsExcludedDomain(t *testing.T) {
	exclude := map[string]bool{"github.com": true}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://github.com/me/private", true},
		{"https://api.github.com/x", true},
		{"https://notgithub.com", false},
		{"https://gitlab.com", false},
		{"::not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := isExcludedDomain(tt.url, exclude); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dial tcp: lookup nope.invalid: no such host", "DNS failure"},
		{"Get \"x\": context deadline exceeded", "Timeout"},
		{"dial tcp 127.0.0.1:1: connect: connection refused", "Connection refused"},
		{"x509: certificate signed by unknown authority", "TLS/certificate error"},
		{"something else", "something else"},
	}

	for _, tt := range tests {
		if got := normalizeError(tt.in); got != tt.want {
			t.Errorf("normalizeError(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBookmarks(t *testing.T) {
	roots := []model.Node{{
		ID: "0",
		Children: []model.Node{{
			ID: "1", Title: "Bookmarks Bar",
			Children: []model.Node{
				{ID: "10", Title: "Dev", Children: []model.Node{{ID: "11", Title: "Go", URL: "https://go.dev"}}},
				{ID: "12", Title: "News", URL: "https://news.ycombinator.com"},
			},
		}},
	}}

	got := Bookmarks(roots)
	if len(got) != 2 || got[0].ID != "11" || got[1].ID != "12" {
		t.Errorf("expected bookmarks 11 and 12, got %+v", got)
	}
}

func TestDeadOutline(t *testing.T) {
	results := []Result{
		{Node: model.Node{Title: "Go", URL: "https://go.dev"}, Status: Healthy},
		{Node: model.Node{Title: "Old", URL: "https://old.example.com"}, Status: Dead},
		{Node: model.Node{Title: "Flaky", URL: "https://flaky.example.com"}, Status: Unreachable},
		{Node: model.Node{Title: "Gone", URL: "https://gone.example.com"}, Status: Dead},
	}

	want := "Dead links/\n  Old https://old.example.com\n  Gone https://gone.example.com\n"
	if got := DeadOutline(results, "Dead links"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := DeadOutline(results[:1], "Dead links"); got != "" {
		t.Errorf("expected empty outline, got %q", got)
	}
}
