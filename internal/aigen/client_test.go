package aigen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func candidateBody(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func newTestClient(srv *httptest.Server) *Client {
	c := New(srv.URL, "test-key")
	c.HTTP = srv.Client()
	return c
}

func TestFallbackChainAdvancesOnRateLimit(t *testing.T) {
	t.Parallel()

	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Path shape: /models/{model}:generateContent
		model := strings.TrimPrefix(r.URL.Path, "/models/")
		model = strings.TrimSuffix(model, ":generateContent")
		models = append(models, model)
		if len(models) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, candidateBody("ok from third"))
	}))
	defer srv.Close()

	text, err := newTestClient(srv).GenerateContent(context.Background(), "hi")
	if err != nil {
		t.Fatalf("GenerateContent() error: %v", err)
	}
	if text != "ok from third" {
		t.Errorf("text = %q", text)
	}
	want := []string{"gemini-2.0-flash-exp", "gemini-1.5-flash", "gemini-pro"}
	if len(models) != 3 {
		t.Fatalf("attempted %d models, want 3", len(models))
	}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("attempt %d hit %q, want %q", i, models[i], want[i])
		}
	}
}

func TestExactlyThreeAttemptsThenRemediation(t *testing.T) {
	t.Parallel()

	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateContent(context.Background(), "hi")
	if !errors.Is(err, ErrAllModelsFailed) {
		t.Fatalf("error = %v, want ErrAllModelsFailed", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want exactly 3", attempts)
	}
}

func TestAuthFailureAbortsChain(t *testing.T) {
	t.Parallel()

	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateContent(context.Background(), "hi")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no fallback on auth failure)", attempts)
	}
}

func TestMissingKeyFailsFast(t *testing.T) {
	t.Parallel()

	c := New("http://localhost:0", "")
	if _, err := c.GenerateContent(context.Background(), "hi"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestEditCSVStripsFences(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, candidateBody("```csv\nname,email\na,b\n```"))
	}))
	defer srv.Close()

	out, err := newTestClient(srv).EditCSV(context.Background(), "name,email\na,b", "uppercase names")
	if err != nil {
		t.Fatalf("EditCSV() error: %v", err)
	}
	if out != "name,email\na,b" {
		t.Errorf("EditCSV() = %q, fences not stripped", out)
	}
}
