package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPostJSONSendsPayloadAndHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-API-KEY"); got != "secret" {
			t.Errorf("expected api key header, got %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["q"] != "site:example.net" {
			t.Errorf("unexpected query %v", body["q"])
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"organic": []any{}}) //nolint:errcheck
	}))
	defer srv.Close()

	c, err := NewJSONClient("test-agent", 2*time.Second)
	if err != nil {
		t.Fatalf("NewJSONClient() error = %v", err)
	}

	body, status, err := c.PostJSON(
		context.Background(),
		srv.URL,
		map[string]any{"q": "site:example.net", "num": 10, "start": 0},
		map[string]string{"X-API-KEY": "secret"},
	)
	if err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(body) == 0 {
		t.Fatal("expected non-empty body")
	}
}

func TestPostJSONPersistsCookies(t *testing.T) {
	t.Parallel()

	var second string
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		} else {
			if c, err := r.Cookie("session"); err == nil {
				second = c.Value
			}
		}
		w.Write([]byte("{}")) //nolint:errcheck
	}))
	defer srv.Close()

	c, err := NewJSONClient("", 2*time.Second)
	if err != nil {
		t.Fatalf("NewJSONClient() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, _, err := c.PostJSON(context.Background(), srv.URL, map[string]int{"i": i}, nil); err != nil {
			t.Fatalf("PostJSON() call %d error = %v", i, err)
		}
	}
	if second != "abc" {
		t.Fatalf("expected cookie to persist across calls, got %q", second)
	}
}
