package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zflorman/Hillpulse-v3/internal/llm"
	"github.com/zflorman/Hillpulse-v3/internal/llm/mock"
)

func newTestSummarizer(t *testing.T, client llm.Client, apiKey string) *Summarizer {
	t.Helper()
	s, err := New(client, apiKey, "gemini-2.0-flash", nil, DefaultPromptConfig(), nil)
	if err != nil {
		t.Fatalf("failed to build summarizer: %v", err)
	}
	s.SetRetryDelays(time.Millisecond, 4*time.Millisecond)
	return s
}

func TestSummarizeReturnsTrimmedContent(t *testing.T) {
	client := &mock.Client{
		Responses: []llm.ChatResponse{{Content: "  @repuser: CR vote scheduled for Fri, Speaker backs stopgap\nLink: https://x.com/u/status/123\n"}},
	}
	s := newTestSummarizer(t, client, "test-key")

	summary, err := s.Summarize(context.Background(), "We must pass the CR.", "repuser", "https://x.com/u/status/123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(summary, "@repuser:") {
		t.Fatalf("expected @repuser: prefix, got %q", summary)
	}
	if !strings.Contains(summary, "Link: https://x.com/u/status/123") {
		t.Fatalf("expected link line, got %q", summary)
	}
	if len(client.Calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(client.Calls))
	}
}

func TestSummarizeRequiresAPIKey(t *testing.T) {
	client := &mock.Client{}
	s := newTestSummarizer(t, client, "")

	_, err := s.Summarize(context.Background(), "text", "repuser", "https://x.com/u/status/1")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if err.Error() != "Missing GEMINI_API_KEY" {
		t.Fatalf("expected verbatim message, got %q", err.Error())
	}
	if len(client.Calls) != 0 {
		t.Fatalf("expected no upstream calls, got %d", len(client.Calls))
	}
}

func TestSummarizeRetriesOverloadThenSucceeds(t *testing.T) {
	overloaded := &llm.APIError{StatusCode: 503, Message: "model overloaded"}
	client := &mock.Client{
		Errs:      []error{overloaded, overloaded, nil},
		Responses: []llm.ChatResponse{{}, {}, {Content: "@repuser: summary\nLink: u"}},
	}
	s := newTestSummarizer(t, client, "test-key")

	summary, err := s.Summarize(context.Background(), "text", "repuser", "u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary == "" {
		t.Fatal("expected non-empty summary")
	}
	if len(client.Calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(client.Calls))
	}
}

func TestSummarizeExhaustsRetryBudget(t *testing.T) {
	overloaded := &llm.APIError{StatusCode: 503, Message: "model overloaded"}
	client := &mock.Client{
		Errs: []error{overloaded, overloaded, overloaded, overloaded, overloaded},
	}
	s := newTestSummarizer(t, client, "test-key")

	_, err := s.Summarize(context.Background(), "text", "repuser", "u")
	if err == nil {
		t.Fatal("expected error after retry exhaustion")
	}
	var apiErr *llm.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 503 {
		t.Fatalf("expected wrapped 503, got %v", err)
	}
	if len(client.Calls) != 4 {
		t.Fatalf("expected 4 attempts total, got %d", len(client.Calls))
	}
}

func TestSummarizeRetriesTransportErrors(t *testing.T) {
	client := &mock.Client{
		Errs: []error{errors.New("connection reset"), errors.New("connection reset"), errors.New("connection reset"), errors.New("connection reset")},
	}
	s := newTestSummarizer(t, client, "test-key")

	_, err := s.Summarize(context.Background(), "text", "repuser", "u")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(client.Calls) != 4 {
		t.Fatalf("expected 4 attempts, got %d", len(client.Calls))
	}
}

func TestSummarizeFailsFastOnClientError(t *testing.T) {
	client := &mock.Client{
		Errs: []error{&llm.APIError{StatusCode: 400, Message: "bad request"}},
	}
	s := newTestSummarizer(t, client, "test-key")

	_, err := s.Summarize(context.Background(), "text", "repuser", "u")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(client.Calls) != 1 {
		t.Fatalf("expected a single attempt for a 4xx, got %d", len(client.Calls))
	}
}

func TestSummarizeEmptyResponseIsNotAnError(t *testing.T) {
	client := &mock.Client{}
	s := newTestSummarizer(t, client, "test-key")

	summary, err := s.Summarize(context.Background(), "text", "repuser", "u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "" {
		t.Fatalf("expected empty summary, got %q", summary)
	}
}

func TestPromptsIncludeTweetFields(t *testing.T) {
	client := &mock.Client{Responses: []llm.ChatResponse{{Content: "ok"}}}
	s := newTestSummarizer(t, client, "test-key")

	_, err := s.Summarize(context.Background(), "We must pass the CR.", "repuser", "https://x.com/u/status/123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := client.Calls[0]
	if len(req.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(req.Messages))
	}
	if !strings.Contains(req.Messages[0].Content, "https://x.com/u/status/123") {
		t.Fatalf("system prompt missing URL: %q", req.Messages[0].Content)
	}
	if !strings.Contains(req.Messages[1].Content, "We must pass the CR.") {
		t.Fatalf("user prompt missing tweet text: %q", req.Messages[1].Content)
	}
}
