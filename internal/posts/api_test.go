package posts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chaladshare/client-go/internal/rest"
	"github.com/chaladshare/client-go/pkg/config"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := rest.New(&config.APIConfig{
		BaseURL:    ts.URL,
		Timeout:    5 * time.Second,
		CookieName: "access_token",
	})
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	return NewAPI(client)
}

func TestCollectionsTolerateBothEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrapped", `{"data": [{"post_id": 1, "post_title": "a"}, {"post_id": 2, "post_title": "b"}]}`},
		{"bare array", `[{"post_id": 1, "post_title": "a"}, {"post_id": 2, "post_title": "b"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			})

			got, err := api.All(context.Background())
			if err != nil {
				t.Fatalf("All failed: %v", err)
			}
			if len(got) != 2 || got[0].PostID != 1 || got[1].Title != "b" {
				t.Errorf("posts = %+v, want two decoded posts", got)
			}
		})
	}
}

func TestSearchDecodesNestedEnvelope(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/posts/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("search"); got != "golang" {
			t.Errorf("search param = %q, want golang (hash stripped)", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"items": [{"post_id": 5}], "total": 42}}`))
	})

	hits, total, err := api.Search(context.Background(), "#golang", 1, 20)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 42 || len(hits) != 1 || hits[0].PostID != 5 {
		t.Errorf("hits = %+v total %d, want one hit and total 42", hits, total)
	}
}

func TestToggleLikeDecodesDataObject(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/posts/9/like" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"is_liked": true, "like_count": 7}}`))
	})

	res, err := api.ToggleLike(context.Background(), 9)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if !res.IsLiked || res.LikeCount != 7 {
		t.Errorf("result = %+v, want liked=true count=7", res)
	}
}

func TestMineSendsFlag(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("mine"); got != "1" {
			t.Errorf("mine param = %q, want 1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": []}`))
	})

	if _, err := api.Mine(context.Background()); err != nil {
		t.Fatalf("Mine failed: %v", err)
	}
}
