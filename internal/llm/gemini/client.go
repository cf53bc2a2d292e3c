package gemini

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/zflorman/Hillpulse-v3/internal/config"
	"github.com/zflorman/Hillpulse-v3/internal/llm"
)

// Gemini exposes an OpenAI-compatible chat completions surface, which lets us
// drive it through the OpenAI SDK with a swapped base URL.
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

type Client struct {
	client openai.Client
}

func NewClient(cfg config.GeminiEnvConfig, opts ...option.RequestOption) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	options := []option.RequestOption{option.WithBaseURL(baseURL)}
	if cfg.APIKey != "" {
		options = append(options, option.WithAPIKey(cfg.APIKey))
	}
	options = append(options, opts...)
	return &Client{client: openai.NewClient(options...)}
}

func (c *Client) ChatCompletion(ctx context.Context, request llm.ChatRequest) (llm.ChatResponse, error) {
	tracer := otel.Tracer("hillpulse/llm/gemini")
	ctx, span := tracer.Start(ctx, "llm.gemini.chat.completions")
	span.SetAttributes(
		attribute.String("llm.provider", "gemini"),
		attribute.String("llm.model", request.Model),
		attribute.Int("llm.input_messages", len(request.Messages)),
	)
	defer span.End()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(request.Messages))
	for _, msg := range request.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(request.Model),
		Messages: messages,
	}
	if request.Temperature != nil {
		params.Temperature = openai.Float(*request.Temperature)
	}
	if request.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(request.MaxTokens))
	}

	response, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		err = normalizeError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return llm.ChatResponse{}, err
	}
	if len(response.Choices) == 0 {
		// A malformed or empty candidate list degrades to an empty summary.
		span.SetStatus(codes.Ok, "")
		return llm.ChatResponse{}, nil
	}

	span.SetStatus(codes.Ok, "")
	return llm.ChatResponse{Content: response.Choices[0].Message.Content}, nil
}

// normalizeError converts SDK errors into llm.APIError so the retry policy
// can key off the HTTP status without importing the SDK.
func normalizeError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &llm.APIError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}
	return err
}
