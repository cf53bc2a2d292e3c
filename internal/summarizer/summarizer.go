package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/zflorman/Hillpulse-v3/internal/llm"
	"github.com/zflorman/Hillpulse-v3/internal/retry"
)

// ErrMissingAPIKey is returned when summarization is attempted without a
// configured Gemini credential. The message is surfaced verbatim to callers.
var ErrMissingAPIKey = errors.New("Missing GEMINI_API_KEY")

type Summarizer struct {
	client      llm.Client
	apiKey      string
	model       string
	temperature *float64
	systemTmpl  *template.Template
	promptTmpl  *template.Template
	retryCfg    retry.Config
	logger      *slog.Logger
}

type promptData struct {
	Author string
	Text   string
	URL    string
}

func New(client llm.Client, apiKey, model string, temperature *float64, prompts PromptConfig, logger *slog.Logger) (*Summarizer, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	systemTmpl, promptTmpl, err := parseTemplates(prompts)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		client:      client,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		systemTmpl:  systemTmpl,
		promptTmpl:  promptTmpl,
		retryCfg: retry.Config{
			Attempts:  4,
			BaseDelay: time.Second,
			MaxDelay:  4 * time.Second,
			Retryable: retryable,
		},
		logger: logger,
	}, nil
}

// SetRetryDelays overrides the backoff timings. Tests use this to keep the
// retry loop fast; the attempt budget is unchanged.
func (s *Summarizer) SetRetryDelays(base, max time.Duration) {
	s.retryCfg.BaseDelay = base
	s.retryCfg.MaxDelay = max
}

// Summarize produces the "@author: ..." push summary for a tweet. Transient
// upstream failures are retried with exponential backoff before the last
// error is returned.
func (s *Summarizer) Summarize(ctx context.Context, text, author, url string) (string, error) {
	if s.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	data := promptData{Author: author, Text: text, URL: url}
	systemPrompt, err := executeTemplate(s.systemTmpl, data)
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	userPrompt, err := executeTemplate(s.promptTmpl, data)
	if err != nil {
		return "", fmt.Errorf("render user prompt: %w", err)
	}

	var response llm.ChatResponse
	err = retry.Do(ctx, s.retryCfg, func() error {
		resp, err := s.client.ChatCompletion(ctx, llm.ChatRequest{
			Model: s.model,
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: systemPrompt},
				{Role: llm.RoleUser, Content: userPrompt},
			},
			Temperature: s.temperature,
		})
		if err != nil {
			s.logger.Warn("summarize attempt failed", "author", author, "error", err)
			return err
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(response.Content), nil
}

// retryable treats 503 and other server-side statuses as transient.
// Client errors (4xx) are permanent and fail immediately; retrying a
// malformed request only burns latency and quota.
func retryable(err error) bool {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 503 || apiErr.StatusCode >= 500
	}
	return true
}
