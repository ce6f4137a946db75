package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/everstacklabs/relay/internal/catalog"
	"github.com/everstacklabs/relay/internal/httpclient"
	"github.com/everstacklabs/relay/internal/provider"
)

func TestGenerateText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "hello there"}}],
			"usage": {"total_tokens": 42}
		}`))
	}))
	defer ts.Close()

	o := &OpenAI{}
	o.Configure("test-key", ts.URL, httpclient.New())

	resp, err := o.Generate(context.Background(), provider.Request{
		ProviderID: "gpt-4",
		Capability: catalog.CapabilityText,
		Prompt:     "hi",
		MaxUnits:   100,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "hello there" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Units != 42 {
		t.Errorf("expected 42 units, got %g", resp.Units)
	}
}

func TestGenerateImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"data": [{"url": "https://img.example/1.png"}]}`))
	}))
	defer ts.Close()

	o := &OpenAI{}
	o.Configure("test-key", ts.URL, httpclient.New())

	resp, err := o.Generate(context.Background(), provider.Request{
		ProviderID: "dall-e-3",
		Capability: catalog.CapabilityImage,
		Prompt:     "a sunset",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Units != 1 {
		t.Errorf("images bill one unit, got %g", resp.Units)
	}
}

func TestUpstreamRateLimitMapped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limit exceeded"}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	o := &OpenAI{}
	o.Configure("test-key", ts.URL, httpclient.New())

	_, err := o.Generate(context.Background(), provider.Request{
		ProviderID: "gpt-4",
		Capability: catalog.CapabilityText,
		Prompt:     "hi",
	})
	if !errors.Is(err, provider.ErrUpstreamRateLimited) {
		t.Fatalf("expected ErrUpstreamRateLimited, got %v", err)
	}
}
