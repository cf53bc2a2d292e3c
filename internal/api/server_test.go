package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zflorman/Hillpulse-v3/internal/dedupe"
	"github.com/zflorman/Hillpulse-v3/internal/ingest"
	"github.com/zflorman/Hillpulse-v3/internal/llm"
	llmmock "github.com/zflorman/Hillpulse-v3/internal/llm/mock"
	"github.com/zflorman/Hillpulse-v3/internal/summarizer"
	tweetmock "github.com/zflorman/Hillpulse-v3/internal/tweet/mock"
)

type serverOptions struct {
	apiKey    string
	secret    string
	responses []llm.ChatResponse
}

func newTestServer(t *testing.T, opts serverOptions) (*Server, *llmmock.Client) {
	t.Helper()
	client := &llmmock.Client{Responses: opts.responses}
	s, err := summarizer.New(client, opts.apiKey, "gemini-2.0-flash", nil, summarizer.DefaultPromptConfig(), nil)
	if err != nil {
		t.Fatalf("failed to build summarizer: %v", err)
	}
	s.SetRetryDelays(time.Millisecond, 4*time.Millisecond)

	pipeline := ingest.New(&tweetmock.Fetcher{}, dedupe.NewMemoryStore(0), s, nil, nil, nil)
	return NewServer(pipeline, opts.secret, nil), client
}

func doIngest(t *testing.T, server *Server, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return rec, decoded
}

func TestLiveness(t *testing.T) {
	server, _ := newTestServer(t, serverOptions{apiKey: "key"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "HillPulse") {
		t.Fatalf("unexpected liveness body %q", rec.Body.String())
	}
}

func TestIngestFirstCallThenDuplicate(t *testing.T) {
	server, client := newTestServer(t, serverOptions{
		apiKey:    "key",
		responses: []llm.ChatResponse{{Content: "@repuser: CR vote scheduled for Fri\nLink: https://x.com/u/status/123"}},
	})
	body := `{"data":{"tweet_id":"123","url":"https://x.com/u/status/123","author":"repuser","text":"We must pass the CR."}}`

	rec, resp := doIngest(t, server, body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp["ok"] != true || resp["duplicate"] != false {
		t.Fatalf("unexpected response %v", resp)
	}
	summary, _ := resp["summary"].(string)
	if !strings.HasPrefix(summary, "@repuser:") {
		t.Fatalf("expected @repuser: prefix, got %q", summary)
	}

	rec, resp = doIngest(t, server, body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", rec.Code)
	}
	if resp["ok"] != true || resp["duplicate"] != true {
		t.Fatalf("expected duplicate response, got %v", resp)
	}
	if _, present := resp["summary"]; present {
		t.Fatalf("duplicate response must not carry a summary: %v", resp)
	}
	if len(client.Calls) != 1 {
		t.Fatalf("expected 1 llm call, got %d", len(client.Calls))
	}
}

func TestIngestLegacyTweetField(t *testing.T) {
	server, _ := newTestServer(t, serverOptions{
		apiKey:    "key",
		responses: []llm.ChatResponse{{Content: "@repuser: s\nLink: u"}},
	})
	body := `{"tweet":{"id":"9","author":"repuser","text":"We must pass the CR."}}`

	rec, resp := doIngest(t, server, body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp["ok"] != true {
		t.Fatalf("unexpected response %v", resp)
	}
}

func TestIngestRejectsUnresolvableText(t *testing.T) {
	server, _ := newTestServer(t, serverOptions{apiKey: "key"})
	body := `{"data":{"tweet_id":"123"}}`

	rec, resp := doIngest(t, server, body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp["ok"] != false {
		t.Fatalf("expected ok=false, got %v", resp)
	}
	if errMsg, _ := resp["error"].(string); errMsg == "" {
		t.Fatalf("expected error message, got %v", resp)
	}
}

func TestIngestMissingBody(t *testing.T) {
	server, _ := newTestServer(t, serverOptions{apiKey: "key"})
	rec, resp := doIngest(t, server, `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp["ok"] != false {
		t.Fatalf("expected ok=false, got %v", resp)
	}
}

func TestIngestMissingAPIKey(t *testing.T) {
	server, _ := newTestServer(t, serverOptions{apiKey: ""})
	body := `{"data":{"tweet_id":"123","author":"repuser","text":"We must pass the CR."}}`

	rec, resp := doIngest(t, server, body, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if resp["ok"] != false || resp["error"] != "Missing GEMINI_API_KEY" {
		t.Fatalf("unexpected response %v", resp)
	}
}

func TestIngestRequiresSecret(t *testing.T) {
	server, client := newTestServer(t, serverOptions{apiKey: "key", secret: "hunter2"})
	body := `{"data":{"tweet_id":"123","author":"repuser","text":"We must pass the CR."}}`

	rec, resp := doIngest(t, server, body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp["ok"] != false || resp["error"] != "Unauthorized" {
		t.Fatalf("unexpected response %v", resp)
	}
	if len(client.Calls) != 0 {
		t.Fatal("unauthorized request must not reach the summarizer")
	}

	rec, _ = doIngest(t, server, body, map[string]string{"X-HillPulse-Key": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong key, got %d", rec.Code)
	}
}

func TestIngestAcceptsEitherAuthHeader(t *testing.T) {
	server, _ := newTestServer(t, serverOptions{
		apiKey:    "key",
		secret:    "hunter2",
		responses: []llm.ChatResponse{{Content: "s"}, {Content: "s"}},
	})

	rec, _ := doIngest(t, server,
		`{"data":{"tweet_id":"1","author":"a","text":"t"}}`,
		map[string]string{"X-HillPulse-Key": "hunter2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with header key, got %d", rec.Code)
	}

	rec, _ = doIngest(t, server,
		`{"data":{"tweet_id":"2","author":"a","text":"t"}}`,
		map[string]string{"Authorization": "Bearer hunter2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer token, got %d", rec.Code)
	}
}

func TestIngestUpstreamExhaustionIs500(t *testing.T) {
	overloaded := &llm.APIError{StatusCode: 503, Message: "model overloaded"}
	server, client := newTestServer(t, serverOptions{apiKey: "key"})
	client.Errs = []error{overloaded, overloaded, overloaded, overloaded}

	rec, resp := doIngest(t, server, `{"data":{"tweet_id":"1","author":"a","text":"t"}}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if resp["ok"] != false {
		t.Fatalf("expected ok=false, got %v", resp)
	}
	if len(client.Calls) != 4 {
		t.Fatalf("expected 4 attempts, got %d", len(client.Calls))
	}
}
