package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chatServer answers every chat/completions request with content and records
// the user prompts it received.
func chatServer(t *testing.T, content string, prompts *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if prompts != nil && len(req.Messages) == 2 {
			*prompts = append(*prompts, req.Messages[1].Content)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testService(url string) *AIService {
	prov := DefaultProviders()[ProviderOpenAI]
	prov.BaseURL = url
	prov.APIKey = "secret"
	prov.Timeout = 5 * time.Second
	s := NewAIService(prov, "en")
	s.MaxRetries = 0
	return s
}

// ---------------------------------------------------------------------------
// AIService.Translate
// ---------------------------------------------------------------------------

func TestAIService_Translate(t *testing.T) {
	var prompts []string
	srv := chatServer(t, "```json\n{\"status\":\"success\",\"translation\":\"Bonjour\"}\n```", &prompts)

	got, err := testService(srv.URL).Translate(context.Background(), "Hello", "fr", "Greeting on launch")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Bonjour" {
		t.Errorf("got %q, want Bonjour", got)
	}
	if len(prompts) != 1 {
		t.Fatalf("requests = %d", len(prompts))
	}
	p := prompts[0]
	for _, want := range []string{"French", "language code: fr", "``````Hello``````", "Greeting on launch", "Source (English)"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "{{") {
		t.Errorf("unreplaced placeholder in prompt:\n%s", p)
	}
}

func TestAIService_TranslateFailureStatus(t *testing.T) {
	srv := chatServer(t, `{"status":"failure","translation":""}`, nil)
	_, err := testService(srv.URL).Translate(context.Background(), "Hello", "fr", "")
	if err != ErrTranslationFailed {
		t.Errorf("err = %v, want ErrTranslationFailed", err)
	}
}

func TestAIService_TranslateWithoutLetters(t *testing.T) {
	s := testService("http://127.0.0.1:1")
	for _, text := range []string{"", "%lld", "42 / 7", " "} {
		got, err := s.Translate(context.Background(), text, "fr", "")
		if err != nil || got != text {
			t.Errorf("Translate(%q) = %q, %v", text, got, err)
		}
	}
}

// ---------------------------------------------------------------------------
// AIService.EvaluateQuality
// ---------------------------------------------------------------------------

func TestAIService_EvaluateQuality(t *testing.T) {
	srv := chatServer(t, `Sure! {"quality":"Poor","explanation":"wrong tone"}`, nil)
	got, err := testService(srv.URL).EvaluateQuality(context.Background(), "Hello", "Salut", "fr", "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Quality != QualityPoor || got.Explanation != "wrong tone" {
		t.Errorf("got %+v", got)
	}
}

func TestAIService_EvaluateQualityShortcuts(t *testing.T) {
	s := testService("http://127.0.0.1:1")
	tests := []struct {
		text, translation string
		want              Quality
	}{
		{"Hello", "", QualityBad},
		{"", "x", QualityBad},
		{"%lld", "%lld", QualityGood},
		{"%lld", "%d", QualityBad},
	}
	for _, tt := range tests {
		got, err := s.EvaluateQuality(context.Background(), tt.text, tt.translation, "fr", "")
		if err != nil || got.Quality != tt.want {
			t.Errorf("EvaluateQuality(%q, %q) = %v, %v; want %s", tt.text, tt.translation, got.Quality, err, tt.want)
		}
	}
}

func TestAIService_EvaluateQualityUnknown(t *testing.T) {
	srv := chatServer(t, `{"quality":"excellent"}`, nil)
	if _, err := testService(srv.URL).EvaluateQuality(context.Background(), "a", "b", "fr", ""); err == nil {
		t.Error("expected error for unknown quality")
	}
}

// ---------------------------------------------------------------------------
// Provider HTTP layer
// ---------------------------------------------------------------------------

func TestCallProvider_RetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	prov := Provider{ID: ProviderCustomOpenAI, Name: "test", BaseURL: srv.URL, Timeout: 5 * time.Second}
	got, err := callProvider(context.Background(), prov, "sys", "user", 1, false)
	if err != nil || got != "ok" {
		t.Errorf("callProvider = %q, %v", got, err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestCallProvider_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"bad key"}}`)
	}))
	defer srv.Close()

	prov := Provider{ID: ProviderGroq, BaseURL: srv.URL, Timeout: 5 * time.Second}
	_, err := callProvider(context.Background(), prov, "sys", "user", 3, false)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("err = %v, want status 401", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBuildHTTPRequest(t *testing.T) {
	tests := []struct {
		prov       Provider
		wantURL    string
		wantHeader string
	}{
		{Provider{ID: ProviderGoogle, BaseURL: "https://g.example/", Model: "gemini-x", APIKey: "k"},
			"https://g.example/v1beta/models/gemini-x:generateContent", "x-goog-api-key"},
		{Provider{ID: ProviderAnthropic, BaseURL: "https://a.example/v1", APIKey: "k"},
			"https://a.example/v1/messages", "x-api-key"},
		{Provider{ID: ProviderOpenAI, BaseURL: "https://o.example/v1/chat/completions", APIKey: "k"},
			"https://o.example/v1/chat/completions", "Authorization"},
	}
	for _, tt := range tests {
		url, headers, body, err := buildHTTPRequest(tt.prov, "sys", "user", formatFor(tt.prov))
		if err != nil {
			t.Fatalf("%s: %v", tt.prov.ID, err)
		}
		if url != tt.wantURL {
			t.Errorf("%s: url = %s, want %s", tt.prov.ID, url, tt.wantURL)
		}
		if headers[tt.wantHeader] == "" {
			t.Errorf("%s: missing header %s", tt.prov.ID, tt.wantHeader)
		}
		if !json.Valid(body) {
			t.Errorf("%s: invalid body", tt.prov.ID)
		}
	}
}

func TestExtractResponseText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"openai", `{"choices":[{"message":{"content":"a"}}]}`, "a"},
		{"gemini", `{"candidates":[{"content":{"parts":[{"text":"b"}]}}]}`, "b"},
		{"anthropic", `{"content":[{"type":"text","text":"c"}]}`, "c"},
	}
	for _, tt := range tests {
		got, err := extractResponseText([]byte(tt.body))
		if err != nil || got != tt.want {
			t.Errorf("%s: got %q, %v", tt.name, got, err)
		}
	}
	if _, err := extractResponseText([]byte(`{"error":{"message":"quota"}}`)); err == nil || !strings.Contains(err.Error(), "quota") {
		t.Errorf("error response: %v", err)
	}
}

func TestParseRetryDelay(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "7")
	if got := parseRetryDelay(h, nil); got != 7*time.Second {
		t.Errorf("Retry-After: got %v", got)
	}
	body := []byte(`{"error":{"details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"30s"}]}}`)
	if got := parseRetryDelay(http.Header{}, body); got != 35*time.Second {
		t.Errorf("RetryInfo: got %v", got)
	}
	if got := parseRetryDelay(http.Header{}, []byte("nope")); got != 65*time.Second {
		t.Errorf("default: got %v", got)
	}
}

// ---------------------------------------------------------------------------
// Prompts
// ---------------------------------------------------------------------------

func TestLoadPromptsFromDefaultLocations(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	defer func() { globalPrompts = nil }()

	path, err := LoadPromptsFromDefaultLocations()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "prompts.json" {
		t.Errorf("path = %s", path)
	}
	if getPrompt(PromptTranslate) != TranslatePrompt {
		t.Error("default translate prompt not loaded")
	}

	globalPrompts = &PromptsConfig{Prompts: map[string]string{PromptEvaluate: "custom"}}
	if getPrompt(PromptEvaluate) != "custom" {
		t.Error("override not used")
	}
	if getPrompt(PromptTranslate) != TranslatePrompt {
		t.Error("missing override should fall back to default")
	}
}
