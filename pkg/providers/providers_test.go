package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vyaaparik/bizagent/pkg/config"
)

func TestSupportedProviders(t *testing.T) {
	names := SupportedProviders()
	want := map[string]bool{ProviderGemini: false, ProviderOpenAI: false}
	for _, name := range names {
		if _, known := want[name]; known {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("expected %q in supported providers, got %v", name, names)
		}
	}
}

func TestCreateProvider_Unsupported(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Agent.Provider = "llama-at-home"

	if _, err := CreateProvider(cfg); err == nil {
		t.Fatalf("expected error for unsupported provider")
	} else if !strings.Contains(err.Error(), "unsupported provider") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateProviderConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := ValidateProviderConfig(cfg); err == nil {
		t.Fatalf("expected error for missing gemini key")
	}
	cfg.Providers.Gemini.APIKey = "key"
	if err := ValidateProviderConfig(cfg); err != nil {
		t.Fatalf("unexpected error with key set: %v", err)
	}

	cfg.Agent.Provider = "openai"
	if err := ValidateProviderConfig(cfg); err == nil {
		t.Fatalf("expected error for missing openai key")
	}
	cfg.Providers.OpenAI.APIKey = "sk-test"
	if err := ValidateProviderConfig(cfg); err != nil {
		t.Fatalf("unexpected error with key set: %v", err)
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider("", "", "", 0); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := NewGeminiProvider("   ", "", "", 0); err == nil {
		t.Fatalf("expected error for blank key")
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider("", ""); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestGeminiProvider_Generate(t *testing.T) {
	var captured struct {
		path  string
		query string
		body  map[string]interface{}
	}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.query = r.URL.RawQuery
		_ = json.NewDecoder(r.Body).Decode(&captured.body)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]string{{"text": "hello "}, {"text": "world"}},
				}},
			},
		})
	}))
	defer backend.Close()

	provider, err := NewGeminiProvider("secret", backend.URL, "gemini-1.5-flash", 5*time.Second)
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	got, err := provider.Generate(context.Background(), "say hi", GenerateOptions{MaxTokens: 64, Temperature: 0.2, JSONMode: true})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("expected concatenated parts, got %q", got)
	}
	if !strings.HasSuffix(captured.path, "/gemini-1.5-flash:generateContent") {
		t.Fatalf("unexpected request path %q", captured.path)
	}
	if !strings.Contains(captured.query, "key=secret") {
		t.Fatalf("API key missing from query: %q", captured.query)
	}
	gen, _ := captured.body["generationConfig"].(map[string]interface{})
	if gen["responseMimeType"] != "application/json" {
		t.Fatalf("JSON mode not requested: %+v", gen)
	}
}

func TestGeminiProvider_APIError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"},
		})
	}))
	defer backend.Close()

	provider, err := NewGeminiProvider("bad", backend.URL, "", 5*time.Second)
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	_, err = provider.Generate(context.Background(), "hi", GenerateOptions{})
	if err == nil || !strings.Contains(err.Error(), "INVALID_ARGUMENT") {
		t.Fatalf("expected API error surfaced, got %v", err)
	}
}

func TestGeminiProvider_DefaultModel(t *testing.T) {
	provider, err := NewGeminiProvider("key", "", "", time.Second)
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	if got := provider.GetDefaultModel(); got != "gemini-1.5-flash" {
		t.Fatalf("unexpected default model %q", got)
	}

	provider, err = NewGeminiProvider("key", "", "gemini-2.0-flash", time.Second)
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	if got := provider.GetDefaultModel(); got != "gemini-2.0-flash" {
		t.Fatalf("configured model not used: %q", got)
	}
}
